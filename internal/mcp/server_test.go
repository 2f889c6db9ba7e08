package mcp

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/v0xg/deskpilot/internal/computer"
	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/desktop/desktoptest"
)

type harness struct {
	input   *desktoptest.Input
	clip    *desktoptest.Clipboard
	display *desktoptest.Display
	server  *Server
}

func newHarness(t *testing.T, verbose bool) *harness {
	t.Helper()
	h := &harness{
		input:   &desktoptest.Input{},
		clip:    &desktoptest.Clipboard{Content: "keep me"},
		display: &desktoptest.Display{Width: 800, Height: 600, Results: map[string][]desktop.MatchCandidate{}},
	}
	sleep := &desktoptest.NoSleep{}
	now := time.Unix(0, 0)
	c, err := computer.New(computer.Config{
		Input:        h.input,
		Clipboard:    h.clip,
		Display:      h.display,
		Platform:     "linux",
		MoveDuration: time.Second,
		Verbose:      verbose,
		Sleep:        sleep.Sleep,
		Now: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewServer(c, Options{})
	if err != nil {
		t.Fatal(err)
	}
	h.server = s
	return h
}

func intPtr(v int) *int { return &v }

func TestNewServerRequiresComputer(t *testing.T) {
	if _, err := NewServer(nil, Options{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestHandleTypeText(t *testing.T) {
	h := newHarness(t, false)
	_, out, err := h.server.handleTypeText(context.Background(), nil, TypeTextInput{Text: "grüße"})
	if err != nil {
		t.Fatal(err)
	}
	if !out.OK {
		t.Error("expected ok")
	}
	if !reflect.DeepEqual(h.clip.Pasted, []string{"grüße"}) || h.clip.Content != "keep me" {
		t.Errorf("pasted %q, clipboard %q", h.clip.Pasted, h.clip.Content)
	}
}

func TestHandleKeys(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	if _, _, err := h.server.handlePressKeys(ctx, nil, PressKeysInput{Keys: []string{"tab"}, Presses: 3}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := h.server.handleHotkey(ctx, nil, HotkeyInput{Keys: []string{"alt", "f4"}}); err != nil {
		t.Fatal(err)
	}
	want := []string{"press tab x3", "down alt", "down f4", "up f4", "up alt"}
	if !reflect.DeepEqual(h.input.Calls, want) {
		t.Errorf("calls = %v, want %v", h.input.Calls, want)
	}

	_, _, err := h.server.handleHotkey(ctx, nil, HotkeyInput{})
	if !errors.Is(err, desktop.ErrInvalidQuery) {
		t.Errorf("expected invalid query for empty hotkey, got %v", err)
	}
}

func TestHandleClickFound(t *testing.T) {
	h := newHarness(t, false)
	h.display.Results[`"Send"`] = []desktop.MatchCandidate{
		{Point: desktop.ScreenPoint{X: 0.25, Y: 0.5}, Similarity: 0.8, Text: "Sned"},
	}

	res, out, err := h.server.handleClick(context.Background(), nil, ClickInput{Text: "Send", Clicks: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res)
	}
	if out.X != 200 || out.Y != 300 || out.Kind != "" {
		t.Errorf("out = %+v", out)
	}
	if got := h.input.Calls[len(h.input.Calls)-1]; got != "click left x2" {
		t.Errorf("last call = %q", got)
	}
	text := res.Content[0].(*mcpsdk.TextContent).Text
	if text != "Clicked at (200, 300)" {
		t.Errorf("text = %q", text)
	}
}

func TestHandleClickAmbiguous(t *testing.T) {
	h := newHarness(t, true)
	h.display.Results[`"Next"`] = []desktop.MatchCandidate{
		{Point: desktop.ScreenPoint{X: 0.5, Y: 0.25}, Similarity: 1, Text: "Next"},
		{Point: desktop.ScreenPoint{X: 0.5, Y: 0.75}, Similarity: 1, Text: "Next"},
	}

	res, out, err := h.server.handleClick(context.Background(), nil, ClickInput{Text: "Next"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || out.Kind != "ambiguous" {
		t.Fatalf("expected ambiguous tool error, got %+v / %+v", res, out)
	}
	want := []desktop.IndexedCandidate{
		{Index: 0, Normalized: desktop.ScreenPoint{X: 0.5, Y: 0.25}, Point: desktop.Point{X: 400, Y: 150}, Similarity: 1, Text: "Next"},
		{Index: 1, Normalized: desktop.ScreenPoint{X: 0.5, Y: 0.75}, Point: desktop.Point{X: 400, Y: 450}, Similarity: 1, Text: "Next"},
	}
	if !reflect.DeepEqual(out.Candidates, want) {
		t.Errorf("candidates = %+v", out.Candidates)
	}
	if len(res.Content) != 2 {
		t.Fatalf("expected text and annotated image, got %d parts", len(res.Content))
	}
	if img, ok := res.Content[1].(*mcpsdk.ImageContent); !ok || img.MIMEType != "image/png" || len(img.Data) == 0 {
		t.Errorf("second part = %#v", res.Content[1])
	}
	if len(h.input.Calls) != 0 {
		t.Errorf("expected no input, got %v", h.input.Calls)
	}
}

func TestHandleMoveNotFound(t *testing.T) {
	h := newHarness(t, false)
	res, out, err := h.server.handleMove(context.Background(), nil, MoveInput{Icon: "trash can"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || out.Kind != "not_found" {
		t.Fatalf("expected not found tool error, got %+v / %+v", res, out)
	}
	text := res.Content[0].(*mcpsdk.TextContent).Text
	if !strings.Contains(text, "scroll") {
		t.Errorf("expected scrolling advice, got %q", text)
	}
}

func TestHandleMoveInvalid(t *testing.T) {
	h := newHarness(t, false)
	_, _, err := h.server.handleMove(context.Background(), nil, MoveInput{Text: "OK", X: intPtr(1), Y: intPtr(2)})
	if !errors.Is(err, desktop.ErrInvalidQuery) {
		t.Fatalf("expected invalid query, got %v", err)
	}
	_, _, err = h.server.handleMove(context.Background(), nil, MoveInput{})
	if !errors.Is(err, desktop.ErrInvalidQuery) {
		t.Fatalf("expected invalid query for empty target, got %v", err)
	}
}

func TestHandleScrollAndPosition(t *testing.T) {
	h := newHarness(t, false)
	h.input.X, h.input.Y = 12, 34
	if _, _, err := h.server.handleScroll(context.Background(), nil, ScrollInput{Clicks: -10}); err != nil {
		t.Fatal(err)
	}
	_, out, err := h.server.handlePosition(context.Background(), nil, PositionInput{})
	if err != nil {
		t.Fatal(err)
	}
	if out.X != 12 || out.Y != 34 {
		t.Errorf("position = %+v", out)
	}
	if !reflect.DeepEqual(h.input.Calls, []string{"scroll -10"}) {
		t.Errorf("calls = %v", h.input.Calls)
	}
}
