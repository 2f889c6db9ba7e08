// Package resolver turns a target query into exactly one absolute screen
// point. Text and icon queries are located by the display's visual search;
// zero matches and multiple matches are returned to the caller as
// structured errors rather than guessed at.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/overlay"
)

const coordinateAdvisory = "Unless these EXACT coordinates came from a previous move or click, " +
	"take a screenshot and target TEXT or an ICON instead. Finding text or icons is significantly " +
	"more accurate than specifying x and y."

// Options configures a Resolver.
type Options struct {
	// Verbose attaches an annotated screenshot to every resolution.
	Verbose bool
	Logger  *slog.Logger
}

// Resolver resolves queries against a display.
type Resolver struct {
	display desktop.Display
	verbose bool
	logger  *slog.Logger
}

// New creates a resolver.
func New(display desktop.Display, opts Options) (*Resolver, error) {
	if display == nil {
		return nil, errors.New("resolver: display is required")
	}
	r := &Resolver{display: display, verbose: opts.Verbose, logger: opts.Logger}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r, nil
}

// Target is a resolved point.
type Target struct {
	Point desktop.Point
	// Candidate is the accepted match; nil for coordinate queries.
	Candidate *desktop.MatchCandidate
	// Annotated is set in verbose mode. Ownership passes to the caller.
	Annotated image.Image
}

// Resolve converts q to a single absolute point. shot may be nil, in which
// case a screenshot is captured when one is needed.
func (r *Resolver) Resolve(ctx context.Context, q Query, shot image.Image) (Target, error) {
	switch q.kind {
	case kindCoordinates:
		r.logger.Info(coordinateAdvisory, "x", q.point.X, "y", q.point.Y)
		target := Target{Point: q.point}
		if r.verbose {
			annotated, err := r.annotatePoint(ctx, q.point, shot)
			if err != nil {
				return Target{}, err
			}
			target.Annotated = annotated
		}
		return target, nil
	case kindText, kindIcon:
		return r.search(ctx, q, shot)
	}
	return Target{}, fmt.Errorf("%w: either text, icon, or both x and y must be provided", desktop.ErrInvalidQuery)
}

func (r *Resolver) search(ctx context.Context, q Query, shot image.Image) (Target, error) {
	shot, err := r.ensureShot(ctx, shot)
	if err != nil {
		return Target{}, err
	}

	mode := ModeIcon
	if q.kind == kindText {
		mode = ModeText
	}

	var candidates []desktop.MatchCandidate
	if q.kind == kindText {
		candidates, err = r.find(ctx, `"`+q.value+`"`, shot)
		if err != nil {
			return Target{}, err
		}
		if len(candidates) == 0 {
			r.logger.Debug("text not found, retrying as icon", "query", q.value)
		}
	}
	if q.kind == kindIcon || len(candidates) == 0 {
		candidates, err = r.find(ctx, strings.Trim(q.value, `"`), shot)
		if err != nil {
			return Target{}, err
		}
	}

	if len(candidates) == 0 {
		return Target{}, &desktop.NotFoundError{Query: q.value, Mode: mode}
	}

	// Geometry is read per resolution; the display may change between calls.
	width, height, err := r.display.Size(ctx)
	if err != nil {
		return Target{}, desktop.Unavailable("display size", err)
	}

	if len(candidates) > 1 {
		return Target{}, r.ambiguous(q.value, mode, candidates, width, height, shot)
	}

	// A single match is accepted even when fuzzy.
	chosen := candidates[0]
	target := Target{Point: chosen.Point.Abs(width, height), Candidate: &chosen}
	if r.verbose {
		x, y := overlay.ScaleToShot(target.Point.X, target.Point.Y, width, height, shot.Bounds())
		target.Annotated = overlay.Annotate(shot, []overlay.Mark{{X: x, Y: y, Pointer: true}})
	}
	r.logger.Debug("target resolved", "query", q.String(), "x", target.Point.X, "y", target.Point.Y,
		"similarity", chosen.Similarity)
	return target, nil
}

func (r *Resolver) find(ctx context.Context, query string, shot image.Image) ([]desktop.MatchCandidate, error) {
	candidates, err := r.display.Find(ctx, query, shot)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", query, err)
	}
	return candidates, nil
}

func (r *Resolver) ambiguous(query, mode string, candidates []desktop.MatchCandidate, width, height int, shot image.Image) error {
	listed := make([]desktop.IndexedCandidate, len(candidates))
	for i, c := range candidates {
		listed[i] = desktop.IndexedCandidate{
			Index:      i,
			Normalized: c.Point,
			Point:      c.Point.Abs(width, height),
			Similarity: c.Similarity,
			Text:       c.Text,
		}
	}
	err := &desktop.AmbiguousError{Query: query, Mode: mode, Candidates: listed}
	if r.verbose {
		bounds := shot.Bounds()
		marks := make([]overlay.Mark, len(candidates))
		for i, c := range candidates {
			p := c.Point.Abs(bounds.Dx(), bounds.Dy())
			marks[i] = overlay.Mark{X: bounds.Min.X + p.X, Y: bounds.Min.Y + p.Y, Label: strconv.Itoa(i)}
		}
		err.Annotated = overlay.Annotate(shot, marks)
	}
	return err
}

func (r *Resolver) annotatePoint(ctx context.Context, p desktop.Point, shot image.Image) (image.Image, error) {
	shot, err := r.ensureShot(ctx, shot)
	if err != nil {
		return nil, err
	}
	width, height, err := r.display.Size(ctx)
	if err != nil {
		return nil, desktop.Unavailable("display size", err)
	}
	x, y := overlay.ScaleToShot(p.X, p.Y, width, height, shot.Bounds())
	return overlay.Annotate(shot, []overlay.Mark{{X: x, Y: y, Pointer: true}}), nil
}

func (r *Resolver) ensureShot(ctx context.Context, shot image.Image) (image.Image, error) {
	if shot != nil {
		return shot, nil
	}
	shot, err := r.display.Screenshot(ctx)
	if err != nil {
		return nil, desktop.Unavailable("screenshot", err)
	}
	return shot, nil
}
