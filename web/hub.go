package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/inercaso/memory-scramble/board"
	"github.com/inercaso/memory-scramble/config"
	"github.com/inercaso/memory-scramble/transform"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub maintains the set of connected WebSocket clients sharing one board.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Board      *board.Board
	Transforms *transform.Registry
	Config     *config.Config
}

// NewHub creates a new Hub over the given board.
func NewHub(cfg *config.Config, b *board.Board, tr *transform.Registry) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Board:      b,
		Transforms: tr,
		Config:     cfg,
	}
}

// Run starts the hub's main loop. Should be run as a goroutine. When ctx is
// cancelled (e.g. on server shutdown), Run returns and no longer accepts new
// registrations.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received, stopping", "tag", "web")
			return
		case client := <-h.Register:
			h.Clients[client] = true
			slog.Info("client connected", "tag", "web", "id", client.ID, "player", client.Player, "total", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				client.cancel() // unhooks any suspended flip from its waiter queue
				close(client.Send)
				slog.Info("client disconnected", "tag", "web", "id", client.ID, "total", len(h.Clients))
			}
		}
	}
}

// ServeWS handles a WebSocket upgrade request for /ws/{player} and creates a
// new Client bound to that player id.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	player := r.PathValue("player")
	if err := validPlayerID(player, h.Config.MaxPlayerIDLength); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade error", "tag", "web", "err", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		Hub:    h,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		ID:     uuid.NewString(),
		Player: player,
		ctx:    ctx,
		cancel: cancel,
	}

	h.Register <- client

	go client.WritePump()
	go client.ReadPump()
	go client.WatchPump()
}
