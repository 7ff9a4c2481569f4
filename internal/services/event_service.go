package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/cms-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Broadcaster delivers encoded messages to connected clients.
type Broadcaster interface {
	BroadcastMessage(message []byte)
}

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	EventPublisher
	GetRecentEvents(limit int) []models.Event
}

// EventService records content events in a bounded in-memory feed and
// forwards them to live clients.
type EventService struct {
	mu       sync.Mutex
	events   []models.Event
	capacity int
	hub      Broadcaster
}

// NewEventService creates a new EventService keeping at most capacity events.
func NewEventService(hub Broadcaster, capacity int) *EventService {
	if capacity <= 0 {
		capacity = 100
	}
	return &EventService{hub: hub, capacity: capacity}
}

// Publish records an event and broadcasts it.
func (s *EventService) Publish(action string, payload interface{}) {
	event := models.Event{
		ID:        uuid.New().String(),
		Action:    action,
		Payload:   payload,
		CreatedAt: time.Now().UnixMilli(),
	}

	s.mu.Lock()
	s.events = append(s.events, event)
	if len(s.events) > s.capacity {
		s.events = s.events[len(s.events)-s.capacity:]
	}
	s.mu.Unlock()

	log.Info().Str("action", action).Str("event_id", event.ID).Msg("Event published")

	if s.hub == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode event")
		return
	}
	s.hub.BroadcastMessage(data)
}

// GetRecentEvents returns up to limit events, newest first.
func (s *EventService) GetRecentEvents(limit int) []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]models.Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out
}
