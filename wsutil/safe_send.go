package wsutil

import "log/slog"

// SafeSend sends a frame to a client channel without panicking if the
// channel is closed. If the channel is full or closed, the frame is dropped:
// a watcher that misses a frame catches up on the next change, so dropping
// beats blocking the broadcast fan-out. Panics are recovered and logged for
// debugging.
func SafeSend(ch chan []byte, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("SafeSend recovered panic", "tag", "wsutil", "panic", r)
		}
	}()
	select {
	case ch <- data:
	default:
	}
}
