package render

import (
	"errors"
	"log/slog"
)

type EventKind int

const (
	EventPaint EventKind = iota
	EventResize
	EventClose
)

func (k EventKind) String() string {
	switch k {
	case EventPaint:
		return "paint"
	case EventResize:
		return "resize"
	case EventClose:
		return "close"
	}
	return "unknown"
}

// Event is a window notification forwarded by the platform. Width and
// Height are set for EventResize.
type Event struct {
	Kind   EventKind
	Width  int
	Height int
}

// Platform delivers window events. Pump blocks until the window system has
// dispatched its pending messages; the resulting events are then readable
// from Events without blocking.
type Platform interface {
	Pump()
	Events() <-chan Event
}

// App consumes platform events and draws a frame for every paint.
type App struct {
	ctx      Context
	log      *slog.Logger
	closed   bool
	exitCode int
	dropped  uint64
}

func NewApp(ctx Context, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{ctx: ctx, log: log}
}

// Handle processes one event and reports whether the application is done.
func (a *App) Handle(ev Event) bool {
	if a.closed {
		return true
	}
	switch ev.Kind {
	case EventPaint:
		err := a.ctx.DrawFrame()
		switch {
		case err == nil:
		case errors.Is(err, ErrSurfaceOutOfDate):
			a.dropped++
			a.log.Warn("frame dropped", "err", err, "dropped", a.dropped)
		default:
			a.log.Error("draw frame", "err", err)
			a.exitCode = 1
			a.closed = true
		}
	case EventResize:
		// the swapchain keeps its size; out-of-date frames are dropped
		a.log.Info("window resized", "width", ev.Width, "height", ev.Height)
	case EventClose:
		a.closed = true
	}
	return a.closed
}

// Run handles events until the window closes or a frame fails, and returns
// the process exit code.
func (a *App) Run(p Platform) int {
	events := p.Events()
	for !a.closed {
		p.Pump()
	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					a.closed = true
					break drain
				}
				if a.Handle(ev) {
					break drain
				}
			default:
				break drain
			}
		}
	}
	return a.exitCode
}

// Dropped is the number of frames skipped because the surface was out of date.
func (a *App) Dropped() uint64 { return a.dropped }
