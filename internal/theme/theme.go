package theme

import (
	"image/color"

	"git.lost.host/meutraa/khel/internal/game"
)

type Theme interface {
	// Color is the colour of an event on screen.
	Color(kind game.Kind, beat game.Beat, keys game.Keys) color.RGBA
	// Symbol is what an event is drawn as.
	Symbol(kind game.Kind) string
	Judgement(j game.Judgement) color.RGBA
	// HitField is drawn on the hit bar of a lane.
	HitField(lane int) string
}
