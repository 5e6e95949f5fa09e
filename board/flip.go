package board

import (
	"context"
	"fmt"

	"github.com/inercaso/memory-scramble/boarderrors"
)

// Flip plays the given position for player. Depending on the player's turn
// phase this acquires a first card (possibly blocking until a controlling
// player releases it), resolves the second card of a pair, or starts a fresh
// turn by cleaning up the previous pair first. On success it returns the
// player's snapshot after the move.
//
// Failures (boarderrors.ErrNoCard, ErrControlled, ErrOutOfRange) always
// leave the board consistent: any held first card has been released with a
// waiter wakeup and the player's slots are cleared, so the call may simply
// be retried.
func (b *Board) Flip(ctx context.Context, player string, row, col int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ps := b.player(player)
	if !b.InRange(row, col) {
		if ps.first != nil && ps.second == nil {
			b.relinquishFirst(ps, *ps.first, b.cellAt(*ps.first))
		}
		ps.first, ps.second = nil, nil
		return "", fmt.Errorf("flip (%d,%d): %w", row, col, boarderrors.ErrOutOfRange)
	}
	target := pos{row, col}

	var err error
	switch {
	case ps.first == nil:
		// Starting a turn.
		b.cleanupPrevious(ps)
		err = b.acquireFirst(ctx, ps, player, target)
	case ps.second == nil:
		// Completing the pair. Never suspends.
		err = b.resolveSecond(ps, player, target)
	default:
		// Pair complete; this flip starts the next turn.
		b.cleanupPrevious(ps)
		ps.first, ps.second = nil, nil
		err = b.acquireFirst(ctx, ps, player, target)
	}
	if err != nil {
		return "", err
	}
	return b.render(player), nil
}

// acquireFirst takes control of the player's first card, waiting in the
// cell's FIFO queue while another player controls it. Caller must hold mu;
// the lock is dropped across each wait. The cell is re-read after every
// wakeup since it may have been removed or re-controlled in the meantime.
func (b *Board) acquireFirst(ctx context.Context, ps *playerState, player string, target pos) error {
	for {
		c := b.cellAt(target)
		if c.removed {
			return fmt.Errorf("flip first (%d,%d): %w", target.row, target.col, boarderrors.ErrNoCard)
		}
		if c.controller == "" || c.controller == player {
			c.controller = player
			if !c.faceUp {
				c.faceUp = true
				b.signalChange()
			}
			p := target
			ps.first = &p
			return nil
		}
		if err := b.awaitRelease(ctx, target); err != nil {
			return err
		}
	}
}

// resolveSecond applies the second-card rules against the player's held
// first card. Caller must hold mu.
func (b *Board) resolveSecond(ps *playerState, player string, target pos) error {
	first := *ps.first
	fc := b.cellAt(first)
	tc := b.cellAt(target)

	if tc.removed {
		b.relinquishFirst(ps, first, fc)
		return fmt.Errorf("flip second (%d,%d): %w", target.row, target.col, boarderrors.ErrNoCard)
	}
	if tc.controller != "" {
		// Controlled by anyone, the flipper included: the pair fails and
		// the first card goes back up for grabs. The target's controller
		// keeps it.
		b.relinquishFirst(ps, first, fc)
		return fmt.Errorf("flip second (%d,%d): %w", target.row, target.col, boarderrors.ErrControlled)
	}

	if !tc.faceUp {
		tc.faceUp = true
		b.signalChange()
	}
	p := target
	ps.second = &p

	if tc.value == fc.value {
		// Match: hold both cards until the next turn's cleanup removes them.
		tc.controller = player
		ps.previous = []pos{first, target}
		ps.previousMatched = true
	} else {
		// No match: the first card is released now, the target stays
		// face-up and uncontrolled; cleanup turns both down next turn.
		fc.controller = ""
		b.wakeOne(first)
		ps.previous = []pos{first, target}
		ps.previousMatched = false
	}
	return nil
}

// relinquishFirst abandons the player's held first card after a failed
// second flip: control is released, one waiter is woken, and the card joins
// the no-match lineage so next turn's cleanup can turn it face-down. Caller
// must hold mu.
func (b *Board) relinquishFirst(ps *playerState, first pos, fc *cell) {
	fc.controller = ""
	b.wakeOne(first)
	ps.previous = []pos{first}
	ps.previousMatched = false
	ps.first, ps.second = nil, nil
}

// cleanupPrevious applies the end-of-turn rules for the player's previous
// pair at the start of their next turn. A matched pair is removed from the
// board (waking one waiter per cell, who will then fail with ErrNoCard); an
// unmatched lineage is turned face-down where still present, face-up and
// uncontrolled. Caller must hold mu.
func (b *Board) cleanupPrevious(ps *playerState) {
	if len(ps.previous) == 0 {
		ps.previousMatched = false
		return
	}
	if ps.previousMatched && len(ps.previous) == 2 {
		for _, p := range ps.previous {
			*b.cellAt(p) = cell{removed: true}
			b.wakeOne(p)
		}
		b.signalChange()
	} else {
		changed := false
		for _, p := range ps.previous {
			c := b.cellAt(p)
			if !c.removed && c.faceUp && c.controller == "" {
				c.faceUp = false
				changed = true
			}
		}
		if changed {
			b.signalChange()
		}
	}
	ps.previous = nil
	ps.previousMatched = false
}
