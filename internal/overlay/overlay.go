// Package overlay draws diagnostic marks on screenshots: a filled circle at
// each resolved or candidate point, numbered when the caller must choose.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// MarkRadius is the radius of the circle drawn at each point.
const MarkRadius = 20

var (
	markColor   = color.RGBA{0, 0, 255, 255}
	labelColor  = color.RGBA{255, 255, 255, 255}
	cursorColor = color.RGBA{0, 0, 0, 255}
	cursorFill  = color.RGBA{255, 255, 255, 255}
)

// Mark is a point in screenshot pixel space.
type Mark struct {
	X, Y int
	// Label is drawn inside the circle. Only digits are rendered.
	Label string
	// Pointer draws an arrow cursor on the mark.
	Pointer bool
}

// Annotate returns a grayscale copy of shot with marks drawn on it. The
// screenshot itself is never modified.
func Annotate(shot image.Image, marks []Mark) *image.RGBA {
	bounds := shot.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, shot, bounds.Min, draw.Src)

	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, gray, bounds.Min, draw.Src)

	for _, m := range marks {
		drawDisc(result, m.X, m.Y, MarkRadius, markColor)
		if m.Label != "" {
			drawLabel(result, m.X, m.Y, m.Label, labelColor)
		}
		if m.Pointer {
			drawPointer(result, m.X, m.Y)
		}
	}
	return result
}

// ScaleToShot converts an absolute display point to screenshot pixels. The
// screenshot may have been captured at a different resolution.
func ScaleToShot(x, y, displayW, displayH int, shot image.Rectangle) (int, int) {
	if displayW <= 0 || displayH <= 0 {
		return x, y
	}
	sx := shot.Min.X + x*shot.Dx()/displayW
	sy := shot.Min.Y + y*shot.Dy()/displayH
	return sx, sy
}

func drawDisc(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				plot(img, cx+dx, cy+dy, c)
			}
		}
	}
}

// digitGlyphs is a 3x5 bitmap font, one row per string.
var digitGlyphs = map[rune][5]string{
	'0': {"###", "#.#", "#.#", "#.#", "###"},
	'1': {".#.", "##.", ".#.", ".#.", "###"},
	'2': {"###", "..#", "###", "#..", "###"},
	'3': {"###", "..#", "###", "..#", "###"},
	'4': {"#.#", "#.#", "###", "..#", "..#"},
	'5': {"###", "#..", "###", "..#", "###"},
	'6': {"###", "#..", "###", "#.#", "###"},
	'7': {"###", "..#", "..#", "..#", "..#"},
	'8': {"###", "#.#", "###", "#.#", "###"},
	'9': {"###", "#.#", "###", "..#", "###"},
}

const glyphScale = 3

// drawLabel renders label centered on (cx, cy).
func drawLabel(img *image.RGBA, cx, cy int, label string, c color.RGBA) {
	var runes []rune
	for _, r := range label {
		if _, ok := digitGlyphs[r]; ok {
			runes = append(runes, r)
		}
	}
	if len(runes) == 0 {
		return
	}

	glyphW := 3 * glyphScale
	gap := glyphScale
	totalW := len(runes)*glyphW + (len(runes)-1)*gap
	x0 := cx - totalW/2
	y0 := cy - 5*glyphScale/2

	for i, r := range runes {
		glyph := digitGlyphs[r]
		gx := x0 + i*(glyphW+gap)
		for row, line := range glyph {
			for col, cell := range line {
				if cell != '#' {
					continue
				}
				for py := 0; py < glyphScale; py++ {
					for px := 0; px < glyphScale; px++ {
						plot(img, gx+col*glyphScale+px, y0+row*glyphScale+py, c)
					}
				}
			}
		}
	}
}

// pointerShape is the outline of an arrow pointer with its tip at the origin.
var pointerShape = []image.Point{
	{0, 0}, {0, 16}, {4, 12}, {7, 18}, {10, 17}, {7, 11}, {12, 11},
}

// drawPointer fills the arrow outline and strokes its edges, tip at (x, y).
func drawPointer(img *image.RGBA, x, y int) {
	tip := image.Pt(x, y)
	box := image.Rectangle{}
	for _, p := range pointerShape {
		box = box.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	for py := box.Min.Y; py < box.Max.Y; py++ {
		for px := box.Min.X; px < box.Max.X; px++ {
			if insidePolygon(pointerShape, float64(px)+0.5, float64(py)+0.5) {
				plot(img, tip.X+px, tip.Y+py, cursorFill)
			}
		}
	}
	for i, a := range pointerShape {
		b := pointerShape[(i+1)%len(pointerShape)]
		stroke(img, a.Add(tip), b.Add(tip), cursorColor)
	}
}

// insidePolygon applies the even-odd rule to (x, y).
func insidePolygon(poly []image.Point, x, y float64) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		ay, by := float64(a.Y), float64(b.Y)
		if (ay > y) == (by > y) {
			continue
		}
		cross := float64(a.X) + (y-ay)*float64(b.X-a.X)/(by-ay)
		if x < cross {
			in = !in
		}
	}
	return in
}

// stroke plots a one-pixel segment from a to b.
func stroke(img *image.RGBA, a, b image.Point, c color.RGBA) {
	d := b.Sub(a)
	steps := max(absInt(d.X), absInt(d.Y))
	if steps == 0 {
		plot(img, a.X, a.Y, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		plot(img, a.X+int(math.Round(t*float64(d.X))), a.Y+int(math.Round(t*float64(d.Y))), c)
	}
}

func plot(img *image.RGBA, x, y int, c color.RGBA) {
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
