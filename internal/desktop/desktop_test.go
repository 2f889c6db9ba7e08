package desktop

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestScreenPointAbs(t *testing.T) {
	tests := []struct {
		p      ScreenPoint
		w, h   int
		expect Point
	}{
		{ScreenPoint{0.5, 0.5}, 1920, 1080, Point{960, 540}},
		{ScreenPoint{0, 0}, 1920, 1080, Point{0, 0}},
		{ScreenPoint{1, 1}, 800, 600, Point{800, 600}},
		{ScreenPoint{0.25, 0.75}, 1280, 720, Point{320, 540}},
	}
	for _, tt := range tests {
		if got := tt.p.Abs(tt.w, tt.h); got != tt.expect {
			t.Errorf("%v.Abs(%d, %d) = %v, want %v", tt.p, tt.w, tt.h, got, tt.expect)
		}
	}
}

func TestScreenPointInBounds(t *testing.T) {
	tests := []struct {
		p      ScreenPoint
		expect bool
	}{
		{ScreenPoint{0, 0}, true},
		{ScreenPoint{1, 1}, true},
		{ScreenPoint{0.5, 0.2}, true},
		{ScreenPoint{-0.01, 0.5}, false},
		{ScreenPoint{0.5, 1.5}, false},
		{ScreenPoint{math.NaN(), 0.5}, false},
	}
	for _, tt := range tests {
		if got := tt.p.InBounds(); got != tt.expect {
			t.Errorf("%v.InBounds() = %v, want %v", tt.p, got, tt.expect)
		}
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("boom")
	inj := Injection("key down", cause)
	if !errors.Is(inj, ErrInjection) {
		t.Error("expected injection error to match ErrInjection")
	}
	if !errors.Is(inj, cause) {
		t.Error("expected injection error to unwrap to its cause")
	}
	if Injection("noop", nil) != nil {
		t.Error("expected nil error to stay nil")
	}

	if !errors.Is(Unavailable("clipboard", cause), ErrUnavailable) {
		t.Error("expected ErrUnavailable")
	}

	var nf error = &NotFoundError{Query: "Save", Mode: "icon"}
	if !errors.Is(nf, ErrNotFound) {
		t.Error("expected ErrNotFound")
	}
	if !strings.Contains(nf.Error(), "scroll") {
		t.Errorf("expected not-found message to suggest scrolling, got %q", nf.Error())
	}
}

func TestAmbiguousErrorListing(t *testing.T) {
	err := &AmbiguousError{
		Query: "OK",
		Mode:  "text",
		Candidates: []IndexedCandidate{
			{Index: 0, Point: Point{10, 20}, Similarity: 1, Text: "OK"},
			{Index: 1, Point: Point{30, 40}, Similarity: 0.8, Text: "OK!"},
		},
	}
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatal("expected ErrAmbiguous")
	}
	msg := err.Error()
	for _, want := range []string{`0: (10, 20) "OK"`, `1: (30, 40) "OK!"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in message:\n%s", want, msg)
		}
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("move: %w: both x and y must be provided", ErrInvalidQuery), "invalid_query"},
		{&NotFoundError{Query: "Save", Mode: "text"}, "not_found"},
		{fmt.Errorf("click: %w", &AmbiguousError{Query: "OK", Mode: "text"}), "ambiguous"},
		{Injection("paste", errors.New("denied")), "injection"},
		{Unavailable("screenshot", errors.New("closed")), "unavailable"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
