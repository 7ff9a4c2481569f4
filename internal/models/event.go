package models

// Event represents a content change pushed to live clients.
type Event struct {
	ID        string      `json:"id"`
	Action    string      `json:"action"` // e.g., "post.created", "backup.completed"
	Payload   interface{} `json:"payload"`
	CreatedAt int64       `json:"createdAt"`
}
