// Package executor runs batches of keyboard and mouse actions against a
// Computer and reports a structured outcome for every step.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/v0xg/deskpilot/internal/computer"
	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/keyboard"
	"github.com/v0xg/deskpilot/internal/keys"
	"github.com/v0xg/deskpilot/internal/resolver"
)

// Options configures execution behavior
type Options struct {
	// Out receives per-step progress lines when Verbose is set.
	Out     io.Writer
	Verbose bool
	Sleep   func(time.Duration)
}

// Execute runs actions in order and stops at the first failure. The failed
// step's error is returned alongside the result; ambiguous and not-found
// targets carry their details in the step result.
func Execute(ctx context.Context, c *computer.Computer, actions []Action, opts Options) (*Result, error) {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}

	result := &Result{Failed: -1}
	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if opts.Verbose {
			fmt.Fprintf(opts.Out, "  [%d/%d] %s", i+1, len(actions), describe(action))
		}

		step, err := run(ctx, c, action)
		step.Index = i
		step.Action = action.Type
		if err != nil {
			step.Kind = desktop.Kind(err)
			step.Error = err.Error()
			var amb *desktop.AmbiguousError
			if errors.As(err, &amb) {
				step.Candidates = amb.Candidates
				step.Annotated = amb.Annotated
			}
		}
		result.Steps = append(result.Steps, step)

		if err != nil {
			if opts.Verbose {
				fmt.Fprintf(opts.Out, " ✗ (%s)\n", step.Kind)
			}
			result.Failed = i
			return result, fmt.Errorf("step %d (%s): %w", i+1, action.Type, err)
		}
		if opts.Verbose {
			fmt.Fprintln(opts.Out, " ✓")
		}

		if wait := action.wait(); wait > 0 {
			opts.Sleep(wait)
		}
	}
	return result, nil
}

func run(ctx context.Context, c *computer.Computer, a Action) (StepResult, error) {
	var step StepResult

	switch a.Type {
	case ActionType:
		return step, c.Keyboard.Write(a.Text, keyboard.WriteOptions{Interval: a.interval()})
	case ActionPress:
		interval := a.interval()
		if interval == 0 {
			interval = keys.DefaultInterval
		}
		return step, c.Keyboard.Press(a.Keys, a.Presses, interval)
	case ActionHotkey:
		return step, c.Keyboard.Hotkey(a.Keys...)
	case ActionKeyDown, ActionKeyUp:
		if len(a.Keys) != 1 {
			return step, fmt.Errorf("%w: %s takes exactly one key", desktop.ErrInvalidQuery, a.Type)
		}
		if a.Type == ActionKeyDown {
			return step, c.Keyboard.Down(a.Keys[0])
		}
		return step, c.Keyboard.Up(a.Keys[0])
	case ActionMove:
		q, err := resolver.Require(nil, a.Selector)
		if err != nil {
			return step, err
		}
		target, err := c.Mouse.Move(ctx, q)
		return withTarget(step, target, err)
	case ActionClick, ActionDoubleClick, ActionTripleClick, ActionRightClick:
		q, err := resolver.FromArgs(nil, a.Selector)
		if err != nil {
			return step, err
		}
		click := computer.ClickOptions{Button: a.Button, Clicks: a.Clicks, Interval: a.interval()}
		switch a.Type {
		case ActionDoubleClick:
			click.Clicks = 2
		case ActionTripleClick:
			click.Clicks = 3
		case ActionRightClick:
			click.Button, click.Clicks = desktop.ButtonRight, 1
		}
		target, err := c.Mouse.Click(ctx, q, click)
		return withTarget(step, target, err)
	case ActionScroll:
		return step, c.Mouse.Scroll(a.Amount)
	case ActionMouseDown:
		return step, c.Mouse.Down(a.Button)
	case ActionMouseUp:
		return step, c.Mouse.Up(a.Button)
	case ActionPosition:
		p, err := c.Mouse.Position()
		if err != nil {
			return step, err
		}
		step.Point = &p
		return step, nil
	case ActionWait:
		return step, nil
	default:
		return step, fmt.Errorf("%w: unknown action type: %s", desktop.ErrInvalidQuery, a.Type)
	}
}

func withTarget(step StepResult, target resolver.Target, err error) (StepResult, error) {
	if err != nil {
		return step, err
	}
	p := target.Point
	step.Point = &p
	step.Annotated = target.Annotated
	return step, nil
}

func describe(a Action) string {
	switch {
	case a.Type == ActionType:
		return fmt.Sprintf("%s %q", a.Type, a.Text)
	case len(a.Keys) > 0:
		return fmt.Sprintf("%s %v", a.Type, a.Keys)
	case a.Type == ActionScroll:
		return fmt.Sprintf("%s %d", a.Type, a.Amount)
	}
	if q, err := a.Selector.Query(); err == nil && !q.IsZero() {
		return a.Type + " " + q.String()
	}
	return a.Type
}
