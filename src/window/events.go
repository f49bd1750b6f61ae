package window

import (
	"log/slog"

	"vktri/src/render"
)

// eventQueue buffers window notifications between pumps. At most one paint
// is queued per pump, whether it comes from a refresh callback or from the
// continuous redraw, and a close is queued once.
type eventQueue struct {
	ch  chan render.Event
	log *slog.Logger

	painted   bool
	closeSent bool
}

func newEventQueue(size int, log *slog.Logger) *eventQueue {
	return &eventQueue{ch: make(chan render.Event, size), log: log}
}

// begin starts a pump.
func (q *eventQueue) begin() {
	q.painted = false
}

func (q *eventQueue) paint() {
	if q.painted || q.closeSent {
		return
	}
	q.painted = q.push(render.Event{Kind: render.EventPaint})
}

func (q *eventQueue) resize(width, height int) {
	q.push(render.Event{Kind: render.EventResize, Width: width, Height: height})
}

// finish ends a pump. A pending close replaces the redraw.
func (q *eventQueue) finish(closeRequested bool) {
	if q.closeSent {
		return
	}
	if closeRequested {
		q.closeSent = q.push(render.Event{Kind: render.EventClose})
		return
	}
	q.paint()
}

// push never blocks. The loop drains the channel after every pump, so a
// full buffer only drops redundant paints; a dropped close is retried by
// the next pump.
func (q *eventQueue) push(ev render.Event) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		q.log.Debug("window event dropped", "kind", ev.Kind)
		return false
	}
}
