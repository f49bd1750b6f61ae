package render

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform delivers one batch of events per Pump and closes its
// channel once the batches run out.
type fakePlatform struct {
	batches [][]Event
	pumps   int
	ch      chan Event
}

func newFakePlatform(batches ...[]Event) *fakePlatform {
	size := 1
	for _, b := range batches {
		if len(b) > size {
			size = len(b)
		}
	}
	return &fakePlatform{batches: batches, ch: make(chan Event, size)}
}

func (p *fakePlatform) Pump() {
	if p.pumps < len(p.batches) {
		for _, ev := range p.batches[p.pumps] {
			p.ch <- ev
		}
	} else if p.pumps == len(p.batches) {
		close(p.ch)
	}
	p.pumps++
}

func (p *fakePlatform) Events() <-chan Event { return p.ch }

// fakeContext returns errs in order from DrawFrame.
type fakeContext struct {
	errs  []error
	draws int
}

func (c *fakeContext) Device() *DeviceContext                   { return nil }
func (c *fakeContext) SwapchainDimensions() *SwapchainDimensions { return nil }
func (c *fakeContext) FrameIndex() int                          { return c.draws % MaxFramesInFlight }
func (c *fakeContext) Destroy()                                 {}

func (c *fakeContext) DrawFrame() error {
	n := c.draws
	c.draws++
	if n < len(c.errs) {
		return c.errs[n]
	}
	return nil
}

var (
	paint = Event{Kind: EventPaint}
	quit  = Event{Kind: EventClose}
)

func TestAppDrawsUntilClosed(t *testing.T) {
	ctx := &fakeContext{}
	app := NewApp(ctx, discardLogger())
	p := newFakePlatform(
		[]Event{paint},
		[]Event{paint, {Kind: EventResize, Width: 800, Height: 600}},
		[]Event{paint, quit, paint},
	)

	assert.Equal(t, 0, app.Run(p))
	assert.Equal(t, 3, ctx.draws, "events after close are not handled")
	assert.Equal(t, 3, p.pumps)
}

func TestAppDropsOutOfDateFrames(t *testing.T) {
	outOfDate := fmt.Errorf("present image 0: %w", ErrSurfaceOutOfDate)
	ctx := &fakeContext{errs: []error{nil, outOfDate, outOfDate, nil}}
	app := NewApp(ctx, discardLogger())

	code := app.Run(newFakePlatform([]Event{paint, paint, paint, paint, quit}))
	assert.Equal(t, 0, code)
	assert.Equal(t, 4, ctx.draws)
	assert.Equal(t, uint64(2), app.Dropped())
}

func TestAppStopsOnFrameError(t *testing.T) {
	ctx := &fakeContext{errs: []error{nil, errors.New("device lost")}}
	app := NewApp(ctx, discardLogger())

	code := app.Run(newFakePlatform([]Event{paint, paint, paint}, []Event{paint}))
	assert.Equal(t, 1, code)
	assert.Equal(t, 2, ctx.draws)
}

func TestAppExitsWhenEventsClose(t *testing.T) {
	app := NewApp(&fakeContext{}, discardLogger())
	p := newFakePlatform()
	assert.Equal(t, 0, app.Run(p))
	assert.Equal(t, 1, p.pumps)
}

func TestAppHandle(t *testing.T) {
	ctx := &fakeContext{}
	app := NewApp(ctx, nil)

	assert.False(t, app.Handle(paint))
	assert.False(t, app.Handle(Event{Kind: EventResize, Width: 1, Height: 1}))
	assert.True(t, app.Handle(quit))
	assert.True(t, app.Handle(paint), "a closed app ignores further events")
	assert.Equal(t, 1, ctx.draws)
}

func TestAppRunsRenderer(t *testing.T) {
	m := newMockDriver()
	ctx := newTestContext(t, m)

	app := NewApp(ctx, discardLogger())
	code := app.Run(newFakePlatform([]Event{paint}, []Event{paint}, []Event{paint, quit}))
	ctx.Destroy()

	require.Equal(t, 0, code)
	assert.Equal(t, 3, m.presents)
	assert.Equal(t, reversed(m.created), m.destroyed)
	assert.Empty(t, m.violations)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "paint", EventPaint.String())
	assert.Equal(t, "resize", EventResize.String())
	assert.Equal(t, "close", EventClose.String())
	assert.Equal(t, "unknown", EventKind(42).String())
}
