package board

import "context"

// TransformFunc rewrites one card value. It is called without the board lock
// held and may block (network calls, deliberate delays); the board keeps
// serving other operations in the meantime.
type TransformFunc func(ctx context.Context, value string) (string, error)

// Map applies f to every distinct value on the board, one group of
// equal-valued cells at a time. Because a whole group is rewritten under one
// lock acquisition, cells that were equal before Map stay equal at every
// observable moment, so pending matches keep working mid-transform. Face-up
// flags and controllers are untouched; mapping controlled cells is fine.
//
// Errors from f propagate unchanged; groups already rewritten stay
// rewritten. On success Map returns the player's snapshot.
func (b *Board) Map(ctx context.Context, player string, f TransformFunc) (string, error) {
	// Group positions by value under the lock so the grouping is one
	// consistent snapshot.
	b.mu.Lock()
	groups := make(map[string][]pos)
	var order []string
	for i := range b.cells {
		c := &b.cells[i]
		if c.removed {
			continue
		}
		if _, seen := groups[c.value]; !seen {
			order = append(order, c.value)
		}
		groups[c.value] = append(groups[c.value], pos{i / b.cols, i % b.cols})
	}
	b.mu.Unlock()

	for _, v := range order {
		next, err := f(ctx, v)
		if err != nil {
			return "", err
		}
		b.mu.Lock()
		changed := false
		for _, p := range groups[v] {
			c := b.cellAt(p)
			// Skip cells removed since the snapshot, or re-valued by a
			// concurrent Map.
			if c.removed || c.value != v {
				continue
			}
			if next != v {
				c.value = next
				changed = true
			}
		}
		if changed {
			b.signalChange()
		}
		b.mu.Unlock()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.render(player), nil
}
