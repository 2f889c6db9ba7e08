package desktop

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// Error kinds surfaced by the automation core.
var (
	ErrInvalidQuery = errors.New("invalid target query")
	ErrNotFound     = errors.New("target not found")
	ErrAmbiguous    = errors.New("target is ambiguous")
	ErrInjection    = errors.New("input injection failed")
	ErrUnavailable  = errors.New("resource unavailable")
)

// InjectionError reports a rejected input primitive.
type InjectionError struct {
	Op  string
	Err error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InjectionError) Unwrap() error { return e.Err }

func (e *InjectionError) Is(target error) bool { return target == ErrInjection }

// Injection wraps err as an InjectionError for op. A nil err stays nil.
func Injection(op string, err error) error {
	if err == nil {
		return nil
	}
	return &InjectionError{Op: op, Err: err}
}

// Unavailable marks err as a collaborator that could not be reached.
func Unavailable(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", what, ErrUnavailable, err)
}

// NotFoundError is returned when a visual search yields nothing, including
// after the text-to-icon fallback.
type NotFoundError struct {
	Query string
	Mode  string // "text" or "icon"
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("your %s (%q) was not found on the screen. Please try again. "+
		"If you're sure it should be there, scroll (e.g. scroll -10) and search again",
		e.Mode, e.Query)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IndexedCandidate is a candidate listed for caller-driven disambiguation.
// Index matches its position in the finder's result.
type IndexedCandidate struct {
	Index      int         `json:"index"`
	Normalized ScreenPoint `json:"normalized"`
	Point      Point       `json:"point"`
	Similarity float64     `json:"similarity"`
	Text       string      `json:"text,omitempty"`
}

// AmbiguousError is returned when a visual search matches more than one
// location. The caller picks one and retries with explicit coordinates.
type AmbiguousError struct {
	Query      string
	Mode       string
	Candidates []IndexedCandidate
	// Annotated is set when verbose diagnostics are enabled. Ownership passes
	// to the caller.
	Annotated image.Image
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "your %s (%q) was found multiple times on the screen. "+
		"Move or click one of the following coordinates with explicit x and y:", e.Mode, e.Query)
	for _, c := range e.Candidates {
		fmt.Fprintf(&b, "\n%d: (%d, %d)", c.Index, c.Point.X, c.Point.Y)
		if c.Text != "" {
			fmt.Fprintf(&b, " %q", c.Text)
		}
	}
	return b.String()
}

func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguous }

// Kind names the error kind of err for structured reporting: "invalid_query",
// "not_found", "ambiguous", "injection", "unavailable", or "error" for
// anything else. A nil err has no kind.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAmbiguous):
		return "ambiguous"
	case errors.Is(err, ErrInjection):
		return "injection"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
