package parser

import (
	"io"

	"git.lost.host/meutraa/khel/internal/game"
	"go.uber.org/zap"
)

type Parser interface {
	Parse(file string) (*game.Chart, error)
	Decode(r io.Reader) (*game.Chart, error)
}

var logger = zap.NewNop()

func SetLogger(l *zap.Logger) {
	logger = l.Named("parser")
}
