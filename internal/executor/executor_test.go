package executor

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/v0xg/deskpilot/internal/computer"
	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/desktop/desktoptest"
	"github.com/v0xg/deskpilot/internal/resolver"
)

type rig struct {
	input   *desktoptest.Input
	clip    *desktoptest.Clipboard
	display *desktoptest.Display
	sleep   *desktoptest.NoSleep
	c       *computer.Computer
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		input:   &desktoptest.Input{},
		clip:    &desktoptest.Clipboard{},
		display: &desktoptest.Display{Width: 1000, Height: 500, Results: map[string][]desktop.MatchCandidate{}},
		sleep:   &desktoptest.NoSleep{},
	}
	now := time.Unix(0, 0)
	c, err := computer.New(computer.Config{
		Input:        r.input,
		Clipboard:    r.clip,
		Display:      r.display,
		Platform:     "linux",
		MoveDuration: time.Second,
		Sleep:        r.sleep.Sleep,
		Now: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	r.c = c
	return r
}

func intPtr(v int) *int { return &v }

func TestParseActions(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"json list", `[{"action":"click","text":"Save"},{"action":"scroll","amount":-3,"wait":200}]`},
		{"json steps", `{"steps":[{"action":"click","text":"Save"},{"action":"scroll","amount":-3,"wait":200}]}`},
		{"yaml list", "- action: click\n  text: Save\n- action: scroll\n  amount: -3\n  wait: 200\n"},
		{"yaml steps", "steps:\n  - action: click\n    text: Save\n  - action: scroll\n    amount: -3\n    wait: 200\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions, err := ParseActions([]byte(tt.data))
			if err != nil {
				t.Fatal(err)
			}
			if len(actions) != 2 {
				t.Fatalf("got %d actions", len(actions))
			}
			if actions[0].Type != ActionClick || actions[0].Text != "Save" {
				t.Errorf("first action = %+v", actions[0])
			}
			if actions[1].Amount != -3 || actions[1].wait() != 200*time.Millisecond {
				t.Errorf("second action = %+v", actions[1])
			}
		})
	}
}

func TestParseActionsCoordinates(t *testing.T) {
	actions, err := ParseActions([]byte("- action: move\n  x: 10\n  y: 20\n"))
	if err != nil {
		t.Fatal(err)
	}
	sel := actions[0].Selector
	if sel.X == nil || sel.Y == nil || *sel.X != 10 || *sel.Y != 20 {
		t.Errorf("selector = %+v", sel)
	}
}

func TestParseActionsErrors(t *testing.T) {
	for _, data := range []string{
		"",
		"[]",
		`[{"text":"Save"}]`,
		`[{"action":"click","colour":"red"}]`,
		"- action: [",
	} {
		if _, err := ParseActions([]byte(data)); err == nil {
			t.Errorf("ParseActions(%q) expected error", data)
		}
	}
}

func TestExecuteRunsInOrder(t *testing.T) {
	r := newRig(t)
	r.display.Results[`"Save"`] = []desktop.MatchCandidate{
		{Point: desktop.ScreenPoint{X: 0.5, Y: 0.5}, Similarity: 1, Text: "Save"},
	}
	actions := []Action{
		{Type: ActionHotkey, Keys: []string{"ctrl", "a"}},
		{Type: ActionClick, Selector: selector("Save")},
		{Type: ActionScroll, Amount: -5, Duration: 250},
		{Type: ActionRightClick},
		{Type: ActionPosition},
	}

	var out bytes.Buffer
	result, err := Execute(context.Background(), r.c, actions, Options{Out: &out, Verbose: true, Sleep: r.sleep.Sleep})
	if err != nil {
		t.Fatal(err)
	}
	if result.Failed != -1 || len(result.Steps) != len(actions) {
		t.Fatalf("result = %+v", result)
	}
	if p := result.Steps[1].Point; p == nil || *p != (desktop.Point{X: 500, Y: 250}) {
		t.Errorf("click point = %v", p)
	}
	if p := result.Steps[4].Point; p == nil || *p != (desktop.Point{X: 500, Y: 250}) {
		t.Errorf("position = %v", p)
	}

	want := []string{
		"down ctrl", "down a", "up a", "up ctrl",
		"move 500,250", "move 500,250", "click left x1",
		"scroll -5",
		"click right x1",
	}
	if !reflect.DeepEqual(r.input.Calls, want) {
		t.Errorf("calls = %v\nwant    %v", r.input.Calls, want)
	}
	if !contains(r.sleep.Slept, 250*time.Millisecond) {
		t.Errorf("expected post-action wait, slept %v", r.sleep.Slept)
	}
	if !strings.Contains(out.String(), "[2/5] click text \"Save\" ✓") {
		t.Errorf("progress = %q", out.String())
	}
}

func TestExecuteStopsOnAmbiguous(t *testing.T) {
	r := newRig(t)
	r.display.Results[`"OK"`] = []desktop.MatchCandidate{
		{Point: desktop.ScreenPoint{X: 0.1, Y: 0.2}, Similarity: 1, Text: "OK"},
		{Point: desktop.ScreenPoint{X: 0.5, Y: 0.6}, Similarity: 0.9, Text: "Ok"},
	}
	actions := []Action{
		{Type: ActionClick, Selector: selector("OK")},
		{Type: ActionType, Selector: selector("never typed")},
	}

	result, err := Execute(context.Background(), r.c, actions, Options{Sleep: r.sleep.Sleep})
	if !errors.Is(err, desktop.ErrAmbiguous) {
		t.Fatalf("expected ambiguous error, got %v", err)
	}
	if result.Failed != 0 || len(result.Steps) != 1 {
		t.Fatalf("result = %+v", result)
	}
	step := result.Steps[0]
	if step.Kind != "ambiguous" || step.OK() {
		t.Errorf("kind = %q", step.Kind)
	}
	want := []desktop.IndexedCandidate{
		{Index: 0, Normalized: desktop.ScreenPoint{X: 0.1, Y: 0.2}, Point: desktop.Point{X: 100, Y: 100}, Similarity: 1, Text: "OK"},
		{Index: 1, Normalized: desktop.ScreenPoint{X: 0.5, Y: 0.6}, Point: desktop.Point{X: 500, Y: 300}, Similarity: 0.9, Text: "Ok"},
	}
	if !reflect.DeepEqual(step.Candidates, want) {
		t.Errorf("candidates = %+v", step.Candidates)
	}
	if len(r.input.Calls) != 0 || len(r.clip.Pasted) != 0 {
		t.Errorf("expected nothing injected, got %v / %v", r.input.Calls, r.clip.Pasted)
	}
}

func TestExecuteInvalidSteps(t *testing.T) {
	tests := []struct {
		name   string
		action Action
	}{
		{"unknown", Action{Type: "hover"}},
		{"move without target", Action{Type: ActionMove}},
		{"move with half coordinate", Action{Type: ActionMove, Selector: selectorX(3)}},
		{"key_down two keys", Action{Type: ActionKeyDown, Keys: []string{"a", "b"}}},
		{"press no keys", Action{Type: ActionPress}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			result, err := Execute(context.Background(), r.c, []Action{tt.action}, Options{Sleep: r.sleep.Sleep})
			if !errors.Is(err, desktop.ErrInvalidQuery) {
				t.Fatalf("expected invalid query, got %v", err)
			}
			if result.Steps[0].Kind != "invalid_query" {
				t.Errorf("kind = %q", result.Steps[0].Kind)
			}
		})
	}
}

func TestExecuteTypeUsesClipboard(t *testing.T) {
	r := newRig(t)
	_, err := Execute(context.Background(), r.c, []Action{{Type: ActionType, Selector: selector("naïve\n")}}, Options{Sleep: r.sleep.Sleep})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.clip.Pasted, []string{"naïve"}) {
		t.Errorf("pasted = %q", r.clip.Pasted)
	}
	if !reflect.DeepEqual(r.input.Calls, []string{"press enter"}) {
		t.Errorf("calls = %v", r.input.Calls)
	}
}

func TestExecuteCancelled(t *testing.T) {
	r := newRig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := Execute(ctx, r.c, []Action{{Type: ActionScroll, Amount: 1}}, Options{Sleep: r.sleep.Sleep})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(result.Steps) != 0 || len(r.input.Calls) != 0 {
		t.Errorf("expected no steps, got %+v", result)
	}
}

func selector(text string) resolver.Selector {
	return resolver.Selector{Text: text}
}

func selectorX(x int) resolver.Selector {
	return resolver.Selector{X: intPtr(x)}
}

func contains(ds []time.Duration, d time.Duration) bool {
	for _, v := range ds {
		if v == d {
			return true
		}
	}
	return false
}
