package main

import (
	"fmt"
	"log"
	"os"

	"git.lost.host/meutraa/khel/internal/audio"
	"git.lost.host/meutraa/khel/internal/config"
	"git.lost.host/meutraa/khel/internal/input"
	"git.lost.host/meutraa/khel/internal/library"
	"git.lost.host/meutraa/khel/internal/parser"
	"git.lost.host/meutraa/khel/internal/render"
	"git.lost.host/meutraa/khel/internal/score"
	"git.lost.host/meutraa/khel/internal/session"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:]); nil != err {
		log.Fatalln(err)
	}
}

// newLogger writes to the log file so the terminal stays free for the game.
func newLogger(c *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Debug {
		zc = zap.NewDevelopmentConfig()
	}
	zc.OutputPaths = []string{c.LogFile}
	zc.ErrorOutputPaths = []string{c.LogFile}
	return zc.Build()
}

func setLoggers(l *zap.Logger) {
	audio.SetLogger(l)
	input.SetLogger(l)
	library.SetLogger(l)
	parser.SetLogger(l)
	render.SetLogger(l)
	score.SetLogger(l)
	session.SetLogger(l)
}

func run(args []string) error {
	c, err := config.Parse(args)
	if nil != err {
		return err
	}

	logger, err := newLogger(c)
	if nil != err {
		return fmt.Errorf("unable to open log: %w", err)
	}
	defer logger.Sync()
	setLoggers(logger)
	logger.Info("starting", zap.String("version", config.Version), zap.String("directory", c.Directory))

	p, err := NewProgram(c, logger)
	if nil != err {
		return err
	}
	defer p.Close()
	return p.Run()
}
