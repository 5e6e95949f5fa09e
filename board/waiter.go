package board

import "context"

// Each suspended flip owns a one-shot channel queued FIFO on the cell it
// wants. Releasing a cell's controller (or removing the cell) closes exactly
// the head channel, so the longest-queued flipper resumes first.

// awaitRelease suspends the calling flip until the cell at p is released or
// removed. Caller must hold mu; the lock is dropped for the duration of the
// wait and re-acquired before returning. On context cancellation the waiter
// unhooks itself from the queue; if its wakeup already fired, the wakeup is
// handed to the next queued waiter so the release is not lost.
func (b *Board) awaitRelease(ctx context.Context, p pos) error {
	ch := make(chan struct{})
	b.waiters[p] = append(b.waiters[p], ch)
	b.mu.Unlock()

	select {
	case <-ch:
		b.mu.Lock()
		return nil
	case <-ctx.Done():
		b.mu.Lock()
		if !b.removeWaiter(p, ch) {
			// Already dequeued: the wakeup raced the cancellation.
			b.wakeOne(p)
		}
		return ctx.Err()
	}
}

// wakeOne releases the longest-queued waiter at p, if any. Caller must hold
// mu. Called whenever a cell transitions from controlled to uncontrolled or
// removed.
func (b *Board) wakeOne(p pos) {
	q := b.waiters[p]
	if len(q) == 0 {
		return
	}
	head := q[0]
	if len(q) == 1 {
		delete(b.waiters, p)
	} else {
		b.waiters[p] = q[1:]
	}
	close(head)
}

// removeWaiter unhooks ch from p's queue and reports whether it was still
// queued. Caller must hold mu.
func (b *Board) removeWaiter(p pos, ch chan struct{}) bool {
	q := b.waiters[p]
	for i, w := range q {
		if w == ch {
			q = append(q[:i], q[i+1:]...)
			if len(q) == 0 {
				delete(b.waiters, p)
			} else {
				b.waiters[p] = q
			}
			return true
		}
	}
	return false
}
