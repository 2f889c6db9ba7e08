package keyboard

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/desktop/desktoptest"
	"github.com/v0xg/deskpilot/internal/keys"
)

type fixture struct {
	kb    *Keyboard
	input *desktoptest.Input
	clip  *desktoptest.Clipboard
	sleep *desktoptest.NoSleep
	logs  *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		input: &desktoptest.Input{},
		clip:  &desktoptest.Clipboard{Content: "previous"},
		sleep: &desktoptest.NoSleep{},
		logs:  &bytes.Buffer{},
	}
	logger := slog.New(slog.NewTextHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mapper, err := keys.NewMapper(f.input, keys.Options{Platform: "linux", Sleep: f.sleep.Sleep})
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	f.kb, err = New(f.input, mapper, f.clip, Options{Sleep: f.sleep.Sleep, Logger: logger})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func TestWritePastesLineByLine(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		pasted []string
		enter  bool
	}{
		{"single line", "héllo wörld", []string{"héllo wörld"}, false},
		{"two lines", "a\nb", []string{"a\n", "b"}, false},
		{"four lines", "1\n2\n3\n4", []string{"1\n", "2\n", "3\n", "4"}, false},
		{"trailing newline", "ok\n", []string{"ok"}, true},
		{"double trailing newline strips one", "a\n\n", []string{"a\n", ""}, true},
		{"five lines in one paste", "1\n2\n3\n4\n5", []string{"1\n2\n3\n4\n5"}, false},
		{"five lines plus enter", "1\n2\n3\n4\n5\n", []string{"1\n2\n3\n4\n5"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if err := f.kb.Write(tt.text, WriteOptions{}); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if !reflect.DeepEqual(f.clip.Pasted, tt.pasted) {
				t.Errorf("pasted %q, want %q", f.clip.Pasted, tt.pasted)
			}
			var enters int
			for _, c := range f.input.Calls {
				if c == "press enter" {
					enters++
				}
			}
			if tt.enter && enters != 1 {
				t.Errorf("expected one enter press, calls %v", f.input.Calls)
			}
			if !tt.enter && enters != 0 {
				t.Errorf("expected no enter press, calls %v", f.input.Calls)
			}
			if f.clip.Content != "previous" {
				t.Errorf("clipboard = %q, want restored %q", f.clip.Content, "previous")
			}
		})
	}
}

func TestWritePasteCountMatchesLineCount(t *testing.T) {
	for n := 1; n < pasteLineLimit; n++ {
		f := newFixture(t)
		text := strings.Repeat("x\n", n-1) + "x"
		if err := f.kb.Write(text, WriteOptions{}); err != nil {
			t.Fatal(err)
		}
		if len(f.clip.Pasted) != n {
			t.Errorf("%d lines: %d pastes", n, len(f.clip.Pasted))
		}
	}
	f := newFixture(t)
	if err := f.kb.Write(strings.Repeat("x\n", 9)+"x", WriteOptions{}); err != nil {
		t.Fatal(err)
	}
	if len(f.clip.Pasted) != 1 {
		t.Errorf("10 lines: expected a single paste, got %d", len(f.clip.Pasted))
	}
}

func TestWriteRestoresClipboardWhenPasteFails(t *testing.T) {
	f := newFixture(t)
	f.clip.PasteErrAt = 2

	err := f.kb.Write("a\nb\nc", WriteOptions{})
	if !errors.Is(err, desktop.ErrInjection) {
		t.Fatalf("expected injection failure, got %v", err)
	}
	if f.clip.Content != "previous" {
		t.Errorf("clipboard = %q, want %q", f.clip.Content, "previous")
	}
	if len(f.clip.Pasted) != 1 {
		t.Errorf("expected to stop after first paste, got %q", f.clip.Pasted)
	}
}

func TestWriteSnapshotFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	f.clip.ViewErr = errors.New("no access")

	if err := f.kb.Write("hi", WriteOptions{}); err != nil {
		t.Fatalf("expected snapshot failure to be swallowed, got %v", err)
	}
	if !reflect.DeepEqual(f.clip.Pasted, []string{"hi"}) {
		t.Errorf("pasted %q", f.clip.Pasted)
	}
	if !strings.Contains(f.logs.String(), "clipboard snapshot failed") {
		t.Errorf("expected snapshot failure to be logged, got %q", f.logs.String())
	}
}

func TestWriteRestoreFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	f.clip.CopyErrAfter = 1

	if err := f.kb.Write("hi", WriteOptions{}); err != nil {
		t.Fatalf("expected restore failure to be swallowed, got %v", err)
	}
	if !strings.Contains(f.logs.String(), "clipboard restore failed") {
		t.Errorf("expected restore failure to be logged, got %q", f.logs.String())
	}
}

func TestWriteCopyFailureIsUnavailable(t *testing.T) {
	f := newFixture(t)
	f.kb.clip = lockedClipboard{}
	err := f.kb.Write("hi", WriteOptions{})
	if !errors.Is(err, desktop.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

type lockedClipboard struct{}

func (lockedClipboard) View() (string, error) { return "x", nil }
func (lockedClipboard) Copy(string) error     { return errors.New("locked") }
func (lockedClipboard) Paste() error          { return nil }

func TestWriteWithIntervalTypesDirectly(t *testing.T) {
	f := newFixture(t)
	interval := 40 * time.Millisecond

	if err := f.kb.Write("né\n", WriteOptions{Interval: interval}); err != nil {
		t.Fatal(err)
	}
	expect := []string{"press n", "press é", "press \n"}
	if !reflect.DeepEqual(f.input.Calls, expect) {
		t.Errorf("calls = %q, want %q", f.input.Calls, expect)
	}
	if f.clip.Copies != 0 || len(f.clip.Pasted) != 0 {
		t.Error("expected clipboard to be bypassed")
	}

	var intervals int
	for _, d := range f.sleep.Slept {
		if d == interval {
			intervals++
		}
	}
	if intervals != 3 {
		t.Errorf("expected 3 interval sleeps, got %v", f.sleep.Slept)
	}
}

func TestWriteSettleDelay(t *testing.T) {
	f := newFixture(t)
	if err := f.kb.Write("x", WriteOptions{Delay: time.Second}); err != nil {
		t.Fatal(err)
	}
	slept := f.sleep.Slept
	if len(slept) != 2 || slept[0] != 500*time.Millisecond || slept[1] != 500*time.Millisecond {
		t.Errorf("expected half delay before and after, got %v", slept)
	}
}

func TestWriteWithoutClipboard(t *testing.T) {
	f := newFixture(t)
	f.kb.clip = nil
	if err := f.kb.Write("x", WriteOptions{}); !errors.Is(err, desktop.ErrUnavailable) {
		t.Errorf("expected unavailable, got %v", err)
	}
	if err := f.kb.Write("x", WriteOptions{Interval: time.Millisecond}); err != nil {
		t.Errorf("direct typing should not need a clipboard: %v", err)
	}
}
