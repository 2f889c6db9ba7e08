// Package motion moves the pointer along an eased straight line instead of
// jumping to the target.
package motion

import (
	"errors"
	"math"
	"time"

	"github.com/v0xg/deskpilot/internal/desktop"
)

// DefaultDuration is the wall-clock length of a move.
const DefaultDuration = 2 * time.Second

// Vec is a fractional pixel position.
type Vec struct {
	X, Y float64
}

// Plan describes the path between two points. It is a pure function of its
// fields and holds no state between calls.
type Plan struct {
	Start, End Vec
	Duration   time.Duration
}

// EaseInOutSine remaps elapsed fraction t so motion starts and ends slowly.
func EaseInOutSine(t float64) float64 {
	return (1 - math.Cos(t*math.Pi)) / 2
}

// At returns the position for elapsed fraction t in [0,1].
func (p Plan) At(t float64) Vec {
	e := EaseInOutSine(t)
	return Vec{
		X: p.Start.X + (p.End.X-p.Start.X)*e,
		Y: p.Start.Y + (p.End.Y-p.Start.Y)*e,
	}
}

// Options configures a Synthesizer.
type Options struct {
	Duration time.Duration
	// Sample pauses between moves. Zero samples as fast as moves complete.
	Sample time.Duration
	Now    func() time.Time
	Sleep  func(time.Duration)
}

// Synthesizer executes plans against the input primitive. Execute blocks for
// roughly the plan duration and cannot be interrupted.
type Synthesizer struct {
	input    desktop.Input
	duration time.Duration
	sample   time.Duration
	now      func() time.Time
	sleep    func(time.Duration)
}

// NewSynthesizer creates a synthesizer over input.
func NewSynthesizer(input desktop.Input, opts Options) (*Synthesizer, error) {
	if input == nil {
		return nil, errors.New("motion: input primitive is required")
	}
	if opts.Duration < 0 || opts.Sample < 0 {
		return nil, errors.New("motion: duration and sample must not be negative")
	}
	s := &Synthesizer{
		input:    input,
		duration: opts.Duration,
		sample:   opts.Sample,
		now:      opts.Now,
		sleep:    opts.Sleep,
	}
	if s.duration == 0 {
		s.duration = DefaultDuration
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.sleep == nil {
		s.sleep = time.Sleep
	}
	return s, nil
}

// Duration is the default move length.
func (s *Synthesizer) Duration() time.Duration { return s.duration }

// MoveTo moves the pointer from its current position to target using the
// default duration.
func (s *Synthesizer) MoveTo(target desktop.Point) error {
	x, y, err := s.input.Position()
	if err != nil {
		return desktop.Injection("pointer position", err)
	}
	return s.Execute(Plan{
		Start:    Vec{X: x, Y: y},
		End:      Vec{X: float64(target.X), Y: float64(target.Y)},
		Duration: s.duration,
	})
}

// Execute samples the plan until its duration has elapsed, issuing a move
// at each sample, then lands exactly on the end point.
func (s *Synthesizer) Execute(p Plan) error {
	if p.Duration > 0 {
		start := s.now()
		for {
			elapsed := s.now().Sub(start)
			if elapsed > p.Duration {
				break
			}
			pos := p.At(float64(elapsed) / float64(p.Duration))
			if err := s.input.MoveTo(pos.X, pos.Y); err != nil {
				return desktop.Injection("move pointer", err)
			}
			if s.sample > 0 {
				s.sleep(s.sample)
			}
		}
	}
	return desktop.Injection("move pointer", s.input.MoveTo(p.End.X, p.End.Y))
}
