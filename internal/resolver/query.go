package resolver

import (
	"fmt"
	"strings"

	"github.com/v0xg/deskpilot/internal/desktop"
)

// Search modes reported in NotFound and Ambiguous errors.
const (
	ModeText = "text"
	ModeIcon = "icon"
)

type kind int

const (
	kindNone kind = iota
	kindCoordinates
	kindText
	kindIcon
)

// Query selects exactly one kind of target: literal coordinates, on-screen
// text, or an icon description. The zero Query selects nothing.
type Query struct {
	kind  kind
	point desktop.Point
	value string
}

// At targets absolute screen coordinates. This is the least reliable mode;
// prefer Text or Icon.
func At(x, y int) Query {
	return Query{kind: kindCoordinates, point: desktop.Point{X: x, Y: y}}
}

// Text targets visible text.
func Text(s string) Query { return Query{kind: kindText, value: s} }

// Icon targets an icon matching a description.
func Icon(s string) Query { return Query{kind: kindIcon, value: s} }

// IsZero reports whether the query selects nothing.
func (q Query) IsZero() bool { return q.kind == kindNone }

func (q Query) String() string {
	switch q.kind {
	case kindCoordinates:
		return fmt.Sprintf("(%d, %d)", q.point.X, q.point.Y)
	case kindText:
		return fmt.Sprintf("text %q", q.value)
	case kindIcon:
		return fmt.Sprintf("icon %q", q.value)
	}
	return "<none>"
}

// Selector is the keyword form of a target, as supplied by CLI flags, batch
// steps and tool calls. At most one of the coordinate pair, Text and Icon may
// be set.
type Selector struct {
	X    *int   `json:"x,omitempty" yaml:"x,omitempty"`
	Y    *int   `json:"y,omitempty" yaml:"y,omitempty"`
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Empty reports whether no field is set.
func (s Selector) Empty() bool {
	return s.X == nil && s.Y == nil && s.Text == "" && s.Icon == ""
}

// Query validates the selector and converts it. An empty selector yields
// the zero Query.
func (s Selector) Query() (Query, error) {
	set := 0
	if s.X != nil || s.Y != nil {
		if s.X == nil || s.Y == nil {
			return Query{}, fmt.Errorf("%w: both x and y must be provided", desktop.ErrInvalidQuery)
		}
		set++
	}
	if s.Text != "" {
		set++
	}
	if s.Icon != "" {
		set++
	}

	switch {
	case set == 0:
		return Query{}, nil
	case set > 1:
		return Query{}, fmt.Errorf("%w: provide only one of text, icon, or x and y", desktop.ErrInvalidQuery)
	case s.X != nil:
		return At(*s.X, *s.Y), nil
	case s.Text != "":
		return Text(s.Text), nil
	default:
		return Icon(s.Icon), nil
	}
}

// FromArgs builds a query from positional arguments and keyword fields. A
// single positional argument is text to find; coordinates must be given as
// keywords.
func FromArgs(args []string, sel Selector) (Query, error) {
	if len(args) > 1 {
		return Query{}, fmt.Errorf("%w: too many positional arguments; to target coordinates use x and y, "+
			"but finding text or icons is significantly more accurate", desktop.ErrInvalidQuery)
	}
	if len(args) == 1 {
		if !sel.Empty() {
			return Query{}, fmt.Errorf("%w: positional text %q conflicts with keyword target", desktop.ErrInvalidQuery, args[0])
		}
		if strings.TrimSpace(args[0]) == "" {
			return Query{}, fmt.Errorf("%w: empty text", desktop.ErrInvalidQuery)
		}
		return Text(args[0]), nil
	}
	return sel.Query()
}

// Require is FromArgs for operations that cannot run without a target.
func Require(args []string, sel Selector) (Query, error) {
	q, err := FromArgs(args, sel)
	if err != nil {
		return Query{}, err
	}
	if q.IsZero() {
		return Query{}, fmt.Errorf("%w: either text, icon, or both x and y must be provided", desktop.ErrInvalidQuery)
	}
	return q, nil
}
