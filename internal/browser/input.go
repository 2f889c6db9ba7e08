package browser

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// scrollStep is the wheel distance of one scroll click in CSS pixels.
const scrollStep = 100

var namedKeys = map[string]input.Key{
	"enter":     input.Enter,
	"return":    input.Enter,
	"tab":       input.Tab,
	"space":     input.Space,
	"backspace": input.Backspace,
	"delete":    input.Delete,
	"del":       input.Delete,
	"esc":       input.Escape,
	"escape":    input.Escape,
	"up":        input.ArrowUp,
	"down":      input.ArrowDown,
	"left":      input.ArrowLeft,
	"right":     input.ArrowRight,
	"home":      input.Home,
	"end":       input.End,
	"pageup":    input.PageUp,
	"pagedown":  input.PageDown,
	"shift":     input.ShiftLeft,
	"ctrl":      input.ControlLeft,
	"control":   input.ControlLeft,
	"alt":       input.AltLeft,
	"option":    input.AltLeft,
	"command":   input.MetaLeft,
	"cmd":       input.MetaLeft,
	"win":       input.MetaLeft,
	"f1":        input.F1,
	"f2":        input.F2,
	"f3":        input.F3,
	"f4":        input.F4,
	"f5":        input.F5,
	"f6":        input.F6,
	"f7":        input.F7,
	"f8":        input.F8,
	"f9":        input.F9,
	"f10":       input.F10,
	"f11":       input.F11,
	"f12":       input.F12,
}

// lookupKey maps a key name or a single printable ASCII character to a
// keyboard key. Anything else has no physical key and must be inserted.
func lookupKey(name string) (input.Key, bool) {
	if k, ok := namedKeys[strings.ToLower(name)]; ok {
		return k, true
	}
	if name == "\n" {
		return input.Enter, true
	}
	if name == "\t" {
		return input.Tab, true
	}
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		if r >= ' ' && r <= '~' {
			return input.Key(r), true
		}
	}
	return 0, false
}

var buttons = map[string]proto.InputMouseButton{
	"left":   proto.InputMouseButtonLeft,
	"right":  proto.InputMouseButtonRight,
	"middle": proto.InputMouseButtonMiddle,
}

func lookupButton(name string) (proto.InputMouseButton, error) {
	if name == "" {
		return proto.InputMouseButtonLeft, nil
	}
	b, ok := buttons[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("unknown mouse button %q", name)
	}
	return b, nil
}

func (b *Browser) KeyDown(key string) error {
	k, ok := lookupKey(key)
	if !ok {
		return fmt.Errorf("unknown key %q", key)
	}
	return b.page.Keyboard.Press(k)
}

func (b *Browser) KeyUp(key string) error {
	k, ok := lookupKey(key)
	if !ok {
		return fmt.Errorf("unknown key %q", key)
	}
	return b.page.Keyboard.Release(k)
}

func (b *Browser) Press(keys []string, presses int, interval time.Duration) error {
	for i := 0; i < presses; i++ {
		for j, key := range keys {
			if i > 0 || j > 0 {
				b.sleep(interval)
			}
			if err := b.tap(key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Browser) tap(key string) error {
	if k, ok := lookupKey(key); ok {
		return b.page.Keyboard.Type(k)
	}
	return b.page.InsertText(key)
}

func (b *Browser) MoveTo(x, y float64) error {
	return b.page.Mouse.MoveTo(proto.Point{X: x, Y: y})
}

func (b *Browser) Click(button string, count int, interval time.Duration) error {
	btn, err := lookupButton(button)
	if err != nil {
		return err
	}
	for i := 1; i <= count; i++ {
		if i > 1 {
			b.sleep(interval)
		}
		if err := b.page.Mouse.Click(btn, i); err != nil {
			return err
		}
	}
	return nil
}

func (b *Browser) MouseDown(button string) error {
	btn, err := lookupButton(button)
	if err != nil {
		return err
	}
	return b.page.Mouse.Down(btn, 1)
}

func (b *Browser) MouseUp(button string) error {
	btn, err := lookupButton(button)
	if err != nil {
		return err
	}
	return b.page.Mouse.Up(btn, 1)
}

// Scroll moves the wheel; positive amounts scroll up.
func (b *Browser) Scroll(amount int) error {
	steps := amount
	if steps < 0 {
		steps = -steps
	}
	if steps == 0 {
		return nil
	}
	return b.page.Mouse.Scroll(0, float64(-amount*scrollStep), steps)
}

func (b *Browser) Position() (float64, float64, error) {
	p := b.page.Mouse.Position()
	return p.X, p.Y, nil
}
