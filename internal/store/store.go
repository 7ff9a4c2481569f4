// Package store provides a small key-value/document store with named tables,
// single-attribute primary keys and equality lookups on secondary attributes.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("item not found")
	ErrNoSuchTable  = errors.New("table does not exist")
	ErrTableExists  = errors.New("table already exists")
	ErrNoSuchIndex  = errors.New("attribute is not indexed")
	ErrMissingKey   = errors.New("item is missing its key attribute")
	ErrKeyImmutable = errors.New("key attribute cannot be updated")
)

// Item is one record: a mapping of attribute names to JSON-compatible values.
type Item map[string]any

// TableSpec describes a table: its key attribute and the attributes that may be queried.
type TableSpec struct {
	Name    string   `json:"name"`
	Key     string   `json:"key"`
	Indexes []string `json:"indexes,omitempty"`
}

// HasIndex reports whether attr can be used with Query.
func (t TableSpec) HasIndex(attr string) bool {
	for _, idx := range t.Indexes {
		if idx == attr {
			return true
		}
	}
	return false
}

// Store is the document store used by services, the backup job and provisioning.
type Store interface {
	CreateTable(ctx context.Context, spec TableSpec) error
	ListTables(ctx context.Context) ([]string, error)
	Get(ctx context.Context, table, key string) (Item, error)
	Put(ctx context.Context, table string, item Item) error
	Update(ctx context.Context, table, key string, set Item) (Item, error)
	Delete(ctx context.Context, table, key string) error
	Scan(ctx context.Context, table string) ([]Item, error)
	Query(ctx context.Context, table, attr string, value any) ([]Item, error)
}

// ToItem converts a tagged struct into an Item.
func ToItem(v any) (Item, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeItem(data)
}

// FromItem fills out (a pointer to a tagged struct) from item.
func FromItem(item Item, out any) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// decodeItem keeps numbers as json.Number so they round-trip without loss.
func decodeItem(data []byte) (Item, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var item Item
	if err := dec.Decode(&item); err != nil {
		return nil, fmt.Errorf("decoding item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("decoding item: not a JSON object")
	}
	return item, nil
}

func keyOf(item Item, attr string) (string, error) {
	v, ok := item[attr]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingKey, attr)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string", ErrMissingKey, attr)
	}
	return s, nil
}
