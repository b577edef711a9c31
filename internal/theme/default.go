package theme

import (
	"fmt"
	"image/color"
	"math"

	"git.lost.host/meutraa/khel/internal/game"
)

type DefaultTheme struct {
}

var (
	Red     = color.RGBA{236, 30, 0, 255}
	Green   = color.RGBA{0, 236, 128, 255}
	Yellow  = color.RGBA{236, 195, 0, 255}
	Blue    = color.RGBA{0, 118, 236, 255}
	Magenta = color.RGBA{236, 0, 106, 255}
	Cyan    = color.RGBA{173, 236, 236, 255}
	White   = color.RGBA{255, 255, 255, 255}
	Grey    = color.RGBA{106, 106, 106, 255}
)

var (
	// Indexed by the row sum of a key combo.
	rowColors = [...]color.RGBA{
		1: Red,
		2: Green,
		3: Yellow,
		4: Blue,
		5: Magenta,
		6: Cyan,
		7: White,
	}
	judgementColors = map[game.Judgement]color.RGBA{
		game.Marvelous: Cyan,
		game.Perfect:   Yellow,
		game.Great:     Green,
		game.Good:      Blue,
		game.Miss:      Red,
	}
	syms = map[game.Kind]string{
		game.KindHit:          "⬤",
		game.KindHoldStart:    "◉",
		game.KindHoldTick:     "•",
		game.KindTimingMarker: "─",
	}
)

// Beat fractions within this distance count as the same snap.
const snap = 1.0 / 2147483648.0

func near(f, to float64) bool {
	return math.Abs(f-to) < snap
}

// MarkerColor colours a timing marker by where its beat falls in the bar.
func MarkerColor(b game.Beat) color.RGBA {
	_, f := math.Modf(float64(b))
	if f < 0 {
		f++
	}
	switch {
	case near(f, 0) || near(f, 1):
		return Red
	case near(f, 0.5):
		return Blue
	case near(f, 0.25) || near(f, 0.75):
		return Yellow
	case near(f, 0.125) || near(f, 0.375) || near(f, 0.625) || near(f, 0.875):
		return Green
	case near(f, 1.0/3) || near(f, 2.0/3):
		return Magenta
	case near(f, 1.0/6) || near(f, 5.0/6):
		return Cyan
	}
	return White
}

func (t *DefaultTheme) Color(kind game.Kind, beat game.Beat, keys game.Keys) color.RGBA {
	if kind == game.KindTimingMarker {
		return MarkerColor(beat)
	}
	rows := keys.Rows()
	if rows <= 0 || rows >= len(rowColors) {
		return Grey
	}
	return rowColors[rows]
}

func (t *DefaultTheme) Symbol(kind game.Kind) string {
	s, ok := syms[kind]
	if !ok {
		panic(fmt.Sprintf("unknown event kind %v", kind))
	}
	return s
}

func (t *DefaultTheme) Judgement(j game.Judgement) color.RGBA {
	c, ok := judgementColors[j]
	if !ok {
		return Grey
	}
	return c
}

func (t *DefaultTheme) HitField(lane int) string {
	return "─"
}
