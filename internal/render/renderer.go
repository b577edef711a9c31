package render

import (
	"image/color"
	"time"

	"git.lost.host/meutraa/khel/internal/score"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

func SetLogger(l *zap.Logger) {
	logger = l.Named("render")
}

type Renderer interface {
	Init() error
	Deinit() error
	AddDecoration(col, row uint16, content string, frames int)
	RenderLoop(update, frame time.Duration, tick func() bool, render func(renderDuration time.Duration))
	Fill(row, column uint16, message string)
	FillColor(row, column uint16, color color.RGBA, message string)

	// Create starts drawing a record of the play in progress.
	Create(r *score.Record)
	// Destroy stops drawing the record with the given ID.
	Destroy(id int)
	// Frame draws every record at chartTime. It is written out by the
	// next Flush.
	Frame(chartTime float64)
	Flush()
}
