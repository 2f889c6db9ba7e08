package computer

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/motion"
	"github.com/v0xg/deskpilot/internal/resolver"
)

// DefaultClickInterval separates the clicks of a multi-click.
const DefaultClickInterval = 100 * time.Millisecond

// ClickOptions tunes a click. Zero values click once with the left button.
type ClickOptions struct {
	Button   string
	Clicks   int
	Interval time.Duration
}

// Mouse moves the pointer to resolved targets and clicks there.
type Mouse struct {
	input    desktop.Input
	resolver *resolver.Resolver
	motion   *motion.Synthesizer
	interval time.Duration
	logger   *slog.Logger
}

// Move resolves q and glides the pointer to it. Ambiguous and not-found
// targets are returned as errors before the pointer moves.
func (m *Mouse) Move(ctx context.Context, q resolver.Query) (resolver.Target, error) {
	target, err := m.resolver.Resolve(ctx, q, nil)
	if err != nil {
		return resolver.Target{}, err
	}
	if err := m.motion.MoveTo(target.Point); err != nil {
		return resolver.Target{}, err
	}
	m.logger.Debug("pointer moved", "x", target.Point.X, "y", target.Point.Y)
	return target, nil
}

// Click moves to q, unless q is zero, and clicks. A zero q clicks at the
// current pointer position.
func (m *Mouse) Click(ctx context.Context, q resolver.Query, opts ClickOptions) (resolver.Target, error) {
	if opts.Button == "" {
		opts.Button = desktop.ButtonLeft
	}
	if opts.Clicks < 1 {
		opts.Clicks = 1
	}
	if opts.Interval == 0 {
		opts.Interval = m.interval
	}

	var target resolver.Target
	var err error
	if q.IsZero() {
		target.Point, err = m.Position()
	} else {
		target, err = m.Move(ctx, q)
	}
	if err != nil {
		return resolver.Target{}, err
	}

	if err := desktop.Injection("click", m.input.Click(opts.Button, opts.Clicks, opts.Interval)); err != nil {
		return resolver.Target{}, err
	}
	return target, nil
}

// DoubleClick clicks twice.
func (m *Mouse) DoubleClick(ctx context.Context, q resolver.Query, button string) (resolver.Target, error) {
	return m.Click(ctx, q, ClickOptions{Button: button, Clicks: 2})
}

// TripleClick clicks three times.
func (m *Mouse) TripleClick(ctx context.Context, q resolver.Query, button string) (resolver.Target, error) {
	return m.Click(ctx, q, ClickOptions{Button: button, Clicks: 3})
}

// RightClick clicks once with the right button.
func (m *Mouse) RightClick(ctx context.Context, q resolver.Query) (resolver.Target, error) {
	return m.Click(ctx, q, ClickOptions{Button: desktop.ButtonRight, Clicks: 1})
}

// Scroll turns the wheel; positive clicks scroll up.
func (m *Mouse) Scroll(clicks int) error {
	return desktop.Injection("scroll", m.input.Scroll(clicks))
}

// Position reports the pointer position in absolute pixels.
func (m *Mouse) Position() (desktop.Point, error) {
	x, y, err := m.input.Position()
	if err != nil {
		return desktop.Point{}, desktop.Injection("pointer position", err)
	}
	return desktop.Point{X: int(math.Round(x)), Y: int(math.Round(y))}, nil
}

// Down presses button without releasing it.
func (m *Mouse) Down(button string) error {
	if button == "" {
		button = desktop.ButtonLeft
	}
	return desktop.Injection("mouse down", m.input.MouseDown(button))
}

// Up releases button.
func (m *Mouse) Up(button string) error {
	if button == "" {
		button = desktop.ButtonLeft
	}
	return desktop.Injection("mouse up", m.input.MouseUp(button))
}
