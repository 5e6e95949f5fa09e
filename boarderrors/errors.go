package boarderrors

import "errors"

// Flip failure sentinels. Used by both the board engine and the web package
// so HTTP status mapping can errors.Is against them.
var (
	// ErrNoCard means the target cell holds no card (removed, or removed
	// while the caller was waiting for it).
	ErrNoCard = errors.New("no card at that position")

	// ErrControlled means the second-flip target is controlled by some
	// player, including the flipper's own first card.
	ErrControlled = errors.New("card is controlled by a player")

	// ErrOutOfRange means the requested position is outside the board.
	ErrOutOfRange = errors.New("position out of range")
)
