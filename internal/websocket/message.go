package websocket

import "encoding/json"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewErrorMessage encodes an error reply for a client.
func NewErrorMessage(msg string) []byte {
	data, _ := json.Marshal(Message{Action: "error", Payload: map[string]string{"message": msg}})
	return data
}
