package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/inercaso/memory-scramble/board"
	"github.com/inercaso/memory-scramble/boarderrors"
	"github.com/inercaso/memory-scramble/config"
	"github.com/inercaso/memory-scramble/transform"
)

// Handler serves the four board operations over plain HTTP. Flip and watch
// long-poll: the response is held open while the underlying operation is
// suspended, and a dropped connection cancels it through the request
// context.
type Handler struct {
	Config     *config.Config
	Board      *board.Board
	Transforms *transform.Registry
}

// NewHandler creates an HTTP handler over the given board.
func NewHandler(cfg *config.Config, b *board.Board, tr *transform.Registry) *Handler {
	return &Handler{Config: cfg, Board: b, Transforms: tr}
}

// Routes registers all HTTP routes on mux, including the WebSocket endpoint
// served by hub.
func (h *Handler) Routes(mux *http.ServeMux, hub *Hub) {
	mux.HandleFunc("GET /look/{player}", h.Look)
	mux.HandleFunc("GET /flip/{player}/{pos}", h.Flip)
	mux.HandleFunc("GET /watch/{player}", h.Watch)
	mux.HandleFunc("GET /map/{player}/{transform}", h.Map)
	mux.HandleFunc("GET /ws/{player}", hub.ServeWS)
}

// validPlayerID checks the opaque player id convention: non-empty,
// whitespace-free, bounded length.
func validPlayerID(player string, maxLen int) error {
	if player == "" {
		return fmt.Errorf("player id must not be empty")
	}
	if strings.ContainsFunc(player, unicode.IsSpace) {
		return fmt.Errorf("player id must not contain whitespace")
	}
	if maxLen > 0 && len(player) > maxLen {
		return fmt.Errorf("player id must be at most %d characters", maxLen)
	}
	return nil
}

// player extracts and validates the {player} path segment, writing a 400 on
// failure.
func (h *Handler) player(w http.ResponseWriter, r *http.Request) (string, bool) {
	player := r.PathValue("player")
	if err := validPlayerID(player, h.Config.MaxPlayerIDLength); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return player, true
}

// parsePos parses a "row,col" path segment.
func parsePos(s string) (row, col int, err error) {
	rs, cs, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("malformed position %q", s)
	}
	row, err = strconv.Atoi(rs)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed position %q", s)
	}
	col, err = strconv.Atoi(cs)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed position %q", s)
	}
	return row, col, nil
}

func writeBoard(w http.ResponseWriter, state string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(state))
}

// Look handles GET /look/{player}.
func (h *Handler) Look(w http.ResponseWriter, r *http.Request) {
	player, ok := h.player(w, r)
	if !ok {
		return
	}
	writeBoard(w, h.Board.Look(player))
}

// Flip handles GET /flip/{player}/{row},{col}. The response blocks while the
// flip waits for a controlled card.
func (h *Handler) Flip(w http.ResponseWriter, r *http.Request) {
	player, ok := h.player(w, r)
	if !ok {
		return
	}
	row, col, err := parsePos(r.PathValue("pos"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, err := h.Board.Flip(r.Context(), player, row, col)
	switch {
	case errors.Is(err, boarderrors.ErrNoCard):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, boarderrors.ErrControlled):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, boarderrors.ErrOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		// Request context cancelled; the client is gone and the waiter has
		// been unhooked. Nothing useful to write.
		slog.Debug("flip abandoned", "tag", "web", "player", player, "err", err)
	default:
		writeBoard(w, state)
	}
}

// Watch handles GET /watch/{player}: long-poll for the next board change.
func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	player, ok := h.player(w, r)
	if !ok {
		return
	}
	state, err := h.Board.Watch(r.Context(), player)
	if err != nil {
		slog.Debug("watch abandoned", "tag", "web", "player", player, "err", err)
		return
	}
	writeBoard(w, state)
}

// Map handles GET /map/{player}/{transform}.
func (h *Handler) Map(w http.ResponseWriter, r *http.Request) {
	player, ok := h.player(w, r)
	if !ok {
		return
	}
	name := r.PathValue("transform")
	f, found := h.Transforms.Get(name)
	if !found {
		http.Error(w, fmt.Sprintf("unknown transform %q", name), http.StatusBadRequest)
		return
	}
	state, err := h.Board.Map(r.Context(), player, f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeBoard(w, state)
}
