package websocket

import "github.com/rs/zerolog/log"

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound messages for every client.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Replies addressed to a single client.
	direct chan directMessage

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		direct:     make(chan directMessage, 64),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case d := <-h.direct:
			if _, ok := h.clients[d.client]; !ok {
				continue
			}
			select {
			case d.client.Send <- d.message:
			default:
				log.Warn().Int("bytes", len(d.message)).Msg("Client send buffer full, dropping reply")
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// BroadcastMessage queues message for every client, dropping it if the hub is saturated.
func (h *Hub) BroadcastMessage(message []byte) {
	select {
	case h.Broadcast <- message:
	default:
		log.Warn().Int("bytes", len(message)).Msg("Broadcast queue full, dropping message")
	}
}

// Join registers client with the hub. It returns false once the hub has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

type directMessage struct {
	client  *Client
	message []byte
}

// SendTo queues message for one client. Only the hub goroutine writes to or
// closes a client's Send channel, so replies to a departed client are dropped.
// It returns false once the hub has stopped.
func (h *Hub) SendTo(client *Client, message []byte) bool {
	select {
	case h.direct <- directMessage{client: client, message: message}:
		return true
	case <-h.done:
		return false
	}
}
