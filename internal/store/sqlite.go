package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SQLiteStore implements Store on the doc_tables/doc_items schema created by database.Migrate.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// CreateTable registers a new table.
func (s *SQLiteStore) CreateTable(ctx context.Context, spec TableSpec) error {
	if spec.Name == "" || spec.Key == "" {
		return fmt.Errorf("table name and key attribute are required")
	}
	indexes := spec.Indexes
	if indexes == nil {
		indexes = []string{}
	}
	indexesJSON, err := json.Marshal(indexes)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO doc_tables (name, key_attr, indexes_json) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING",
		spec.Name, spec.Key, string(indexesJSON))
	if err != nil {
		return fmt.Errorf("creating table %s: %w", spec.Name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrTableExists, spec.Name)
	}
	return nil
}

// ListTables returns the table names in alphabetical order.
func (s *SQLiteStore) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM doc_tables ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Describe returns the spec of an existing table.
func (s *SQLiteStore) Describe(ctx context.Context, table string) (TableSpec, error) {
	return describe(ctx, s.db, table)
}

// Get retrieves a single item by key.
func (s *SQLiteStore) Get(ctx context.Context, table, key string) (Item, error) {
	if _, err := describe(ctx, s.db, table); err != nil {
		return nil, err
	}
	return getItem(ctx, s.db, table, key)
}

// Put creates or replaces an item.
func (s *SQLiteStore) Put(ctx context.Context, table string, item Item) error {
	spec, err := describe(ctx, s.db, table)
	if err != nil {
		return err
	}
	key, err := keyOf(item, spec.Key)
	if err != nil {
		return err
	}
	return putItem(ctx, s.db, table, key, item)
}

// Update merges set into an existing item and returns the result.
func (s *SQLiteStore) Update(ctx context.Context, table, key string, set Item) (Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	spec, err := describe(ctx, tx, table)
	if err != nil {
		return nil, err
	}
	item, err := getItem(ctx, tx, table, key)
	if err != nil {
		return nil, err
	}
	for attr, v := range set {
		if attr == spec.Key {
			if kv, ok := v.(string); !ok || kv != key {
				return nil, fmt.Errorf("%w: %s", ErrKeyImmutable, attr)
			}
		}
		item[attr] = v
	}
	if err := putItem(ctx, tx, table, key, item); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an item. Deleting a missing item returns ErrNotFound.
func (s *SQLiteStore) Delete(ctx context.Context, table, key string) error {
	if _, err := describe(ctx, s.db, table); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM doc_items WHERE table_name = ? AND item_key = ?", table, key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, table, key)
	}
	return nil
}

// Scan returns every item in the table in insertion order.
func (s *SQLiteStore) Scan(ctx context.Context, table string) ([]Item, error) {
	if _, err := describe(ctx, s.db, table); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT body FROM doc_items WHERE table_name = ? ORDER BY rowid", table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

// Query returns items whose indexed attribute equals value, in insertion order.
func (s *SQLiteStore) Query(ctx context.Context, table, attr string, value any) ([]Item, error) {
	spec, err := describe(ctx, s.db, table)
	if err != nil {
		return nil, err
	}
	if !spec.HasIndex(attr) {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchIndex, table, attr)
	}
	if n, ok := value.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			value = f
		} else {
			value = n.String()
		}
	}

	path := `$."` + strings.ReplaceAll(attr, `"`, ``) + `"`
	rows, err := s.db.QueryContext(ctx,
		"SELECT body FROM doc_items WHERE table_name = ? AND json_extract(body, ?) = ? ORDER BY rowid",
		table, path, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func describe(ctx context.Context, q queryer, table string) (TableSpec, error) {
	var spec TableSpec
	var indexesJSON string
	err := q.QueryRowContext(ctx, "SELECT name, key_attr, indexes_json FROM doc_tables WHERE name = ?", table).
		Scan(&spec.Name, &spec.Key, &indexesJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TableSpec{}, fmt.Errorf("%w: %s", ErrNoSuchTable, table)
		}
		return TableSpec{}, err
	}
	if err := json.Unmarshal([]byte(indexesJSON), &spec.Indexes); err != nil {
		return TableSpec{}, fmt.Errorf("decoding indexes of %s: %w", table, err)
	}
	return spec, nil
}

func getItem(ctx context.Context, q queryer, table, key string) (Item, error) {
	var body string
	err := q.QueryRowContext(ctx, "SELECT body FROM doc_items WHERE table_name = ? AND item_key = ?", table, key).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, table, key)
		}
		return nil, err
	}
	return decodeItem([]byte(body))
}

func putItem(ctx context.Context, q queryer, table, key string, item Item) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding item: %w", err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO doc_items (table_name, item_key, body) VALUES (?, ?, ?)
		ON CONFLICT(table_name, item_key) DO UPDATE SET body = excluded.body`,
		table, key, string(body))
	return err
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		item, err := decodeItem([]byte(body))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
