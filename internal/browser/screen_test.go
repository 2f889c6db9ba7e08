package browser

import (
	"reflect"
	"testing"

	"github.com/v0xg/deskpilot/internal/desktop"
)

func TestOnScreenDropsOffViewportPoints(t *testing.T) {
	in := []desktop.MatchCandidate{
		{Point: desktop.ScreenPoint{X: 0.5, Y: 0.5}, Text: "visible"},
		{Point: desktop.ScreenPoint{X: -0.1, Y: 0.5}, Text: "left"},
		{Point: desktop.ScreenPoint{X: 0.5, Y: 1.2}, Text: "below"},
		{Point: desktop.ScreenPoint{X: 1, Y: 0}, Text: "corner"},
	}
	want := []desktop.MatchCandidate{
		{Point: desktop.ScreenPoint{X: 0.5, Y: 0.5}, Text: "visible"},
		{Point: desktop.ScreenPoint{X: 1, Y: 0}, Text: "corner"},
	}
	if got := onScreen(in); !reflect.DeepEqual(got, want) {
		t.Errorf("onScreen = %+v, want %+v", got, want)
	}
	if got := onScreen(nil); len(got) != 0 {
		t.Errorf("onScreen(nil) = %+v", got)
	}
}
