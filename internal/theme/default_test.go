package theme

import (
	"image/color"
	"testing"

	"git.lost.host/meutraa/khel/internal/game"
	"github.com/stretchr/testify/assert"
)

func TestMarkerColor(t *testing.T) {
	tests := map[game.Beat]color.RGBA{
		0:          Red,
		4:          Red,
		2.5:        Blue,
		1.25:       Yellow,
		1.75:       Yellow,
		0.125:      Green,
		3.875:      Green,
		1.0 / 3:    Magenta,
		2 + 2.0/3:  Magenta,
		1.0 / 6:    Cyan,
		5.0 / 6:    Cyan,
		0.1:        White,
		-0.5:       Blue,
		-0.25:      Yellow,
		7 + 1.0/12: White,
	}
	for beat, want := range tests {
		assert.Equal(t, want, MarkerColor(beat), "beat %v", beat)
	}
}

func TestColor(t *testing.T) {
	th := &DefaultTheme{}
	assert.Equal(t, Red, th.Color(game.KindHit, 0.5, "q"))
	assert.Equal(t, Green, th.Color(game.KindHit, 0, "a"))
	assert.Equal(t, Yellow, th.Color(game.KindHoldStart, 0, game.NewKeys("qa")))
	assert.Equal(t, Blue, th.Color(game.KindHoldTick, 0, "z"))
	assert.Equal(t, Magenta, th.Color(game.KindHit, 0, game.NewKeys("qz")))
	assert.Equal(t, Cyan, th.Color(game.KindHit, 0, game.NewKeys("az")))
	assert.Equal(t, White, th.Color(game.KindHit, 0, game.NewKeys("qaz")))
	assert.Equal(t, Grey, th.Color(game.KindHit, 0, ""))
	assert.Equal(t, Grey, th.Color(game.KindHit, 0, game.NewKeys("zx")), "row sum past the palette")

	assert.Equal(t, Blue, th.Color(game.KindTimingMarker, 0.5, ""))
}

func TestSymbols(t *testing.T) {
	th := &DefaultTheme{}
	seen := map[string]bool{}
	for _, k := range []game.Kind{game.KindHit, game.KindHoldStart, game.KindHoldTick, game.KindTimingMarker} {
		s := th.Symbol(k)
		assert.NotEmpty(t, s)
		assert.False(t, seen[s], "%v shares its symbol", k)
		seen[s] = true
	}
	assert.Panics(t, func() { th.Symbol(game.Kind(200)) })
}

func TestJudgementColors(t *testing.T) {
	th := &DefaultTheme{}
	for _, j := range game.Judgements {
		assert.NotEqual(t, Grey, th.Judgement(j), j.String())
	}
	assert.Equal(t, Grey, th.Judgement(game.None))
}
