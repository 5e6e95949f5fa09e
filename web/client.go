package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/inercaso/memory-scramble/boarderrors"
	"github.com/inercaso/memory-scramble/wsutil"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a middleman between one websocket connection and the shared
// board. Each client acts as a single player and receives a board frame on
// every change signal in addition to direct replies.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	ID     string // connection id, for logs
	Player string

	// ctx is cancelled when the client unregisters, so flips suspended in a
	// waiter queue are unhooked rather than left as phantom FIFO slots.
	ctx    context.Context
	cancel context.CancelFunc
}

// ReadPump pumps messages from the websocket connection to the board.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "tag", "web", "id", c.ID, "err", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WatchPump pushes one board frame immediately and then one per change
// signal until the client goes away. It runs in its own goroutine per
// connection.
func (c *Client) WatchPump() {
	c.sendBoard(c.Hub.Board.Look(c.Player))
	for {
		state, err := c.Hub.Board.Watch(c.ctx, c.Player)
		if err != nil {
			return // client gone
		}
		c.sendBoard(state)
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	switch envelope.Type {
	case "look":
		c.sendBoard(c.Hub.Board.Look(c.Player))
	case "flip":
		c.handleFlip(envelope.Raw)
	case "map":
		c.handleMap(envelope.Raw)
	default:
		c.sendError("Unknown message type: " + envelope.Type)
	}
}

// handleFlip runs the flip in its own goroutine: a flip on a controlled card
// suspends until the card is released, and the read pump must keep serving
// the connection in the meantime.
func (c *Client) handleFlip(raw json.RawMessage) {
	var msg FlipMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid flip message.")
		return
	}

	go func() {
		state, err := c.Hub.Board.Flip(c.ctx, c.Player, msg.Row, msg.Col)
		switch {
		case errors.Is(err, context.Canceled):
			return
		case err != nil:
			c.sendError(flipErrorMessage(err))
		default:
			c.sendBoard(state)
		}
	}()
}

func (c *Client) handleMap(raw json.RawMessage) {
	var msg MapMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid map message.")
		return
	}
	f, ok := c.Hub.Transforms.Get(msg.Transform)
	if !ok {
		c.sendError("Unknown transform: " + msg.Transform)
		return
	}

	// Transforms may block; keep the read pump free.
	go func() {
		state, err := c.Hub.Board.Map(c.ctx, c.Player, f)
		switch {
		case errors.Is(err, context.Canceled):
			return
		case err != nil:
			c.sendError(err.Error())
		default:
			c.sendBoard(state)
		}
	}()
}

// flipErrorMessage maps board failures to client-facing text.
func flipErrorMessage(err error) string {
	switch {
	case errors.Is(err, boarderrors.ErrNoCard):
		return "There is no card there."
	case errors.Is(err, boarderrors.ErrControlled):
		return "That card is held by a player."
	case errors.Is(err, boarderrors.ErrOutOfRange):
		return "That position is off the board."
	default:
		return err.Error()
	}
}

func (c *Client) sendBoard(state string) {
	msg := BoardMsg{Type: "board", State: state}
	data, _ := json.Marshal(msg)
	wsutil.SafeSend(c.Send, data)
}

func (c *Client) sendError(message string) {
	msg := ErrorMsg{Type: "error", Message: message}
	data, _ := json.Marshal(msg)
	wsutil.SafeSend(c.Send, data)
}
