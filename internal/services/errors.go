package services

import (
	"errors"

	"github.com/isdelr/cms-be/internal/store"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrNotFound     = store.ErrNotFound
)

// EventPublisher receives notifications about content changes.
type EventPublisher interface {
	Publish(action string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// decodeAll converts store items into typed models.
func decodeAll[T any](items []store.Item) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := store.FromItem(item, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeOne[T any](item store.Item) (T, error) {
	var v T
	err := store.FromItem(item, &v)
	return v, err
}
