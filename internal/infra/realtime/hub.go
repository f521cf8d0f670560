// Package realtime empurra eventos de lead para os painéis conectados por WebSocket.
package realtime

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub é fire-and-forget: sem cliente conectado o evento é descartado.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Broadcast nunca bloqueia o chamador. Com o buffer cheio o evento é perdido.
func (h *Hub) Broadcast(eventType string, data any) {
	select {
	case h.broadcast <- Message{Type: eventType, Data: data}:
	default:
		log.Warn().Str("type", eventType).Msg("⚠️ Buffer do hub cheio, evento descartado")
	}
}

// Serve roda o loop do hub até o ctx ser cancelado (suture.Service).
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Debug().Int("total_clients", total).Msg("🔌 Painel conectado")

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

func (h *Hub) String() string { return "realtime-hub" }

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS faz o upgrade. A autenticação é responsabilidade de quem chama.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("falha no upgrade do websocket")
		return
	}

	c := newClient(h, conn)
	select {
	case h.register <- c:
	case <-r.Context().Done():
		conn.Close()
		return
	}
	c.start()
}

func (h *Hub) fanOut(msg Message) {
	h.mu.RLock()
	var slow []*Client
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	log.Debug().Int("total_clients", total).Msg("🔌 Painel desconectado")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
