package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"git.lost.host/meutraa/khel/internal/config"
	"git.lost.host/meutraa/khel/internal/game"
	"git.lost.host/meutraa/khel/internal/input"
	"git.lost.host/meutraa/khel/internal/library"
	"git.lost.host/meutraa/khel/internal/parser"
	"git.lost.host/meutraa/khel/internal/session"
	"git.lost.host/meutraa/khel/internal/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type counter struct {
	now time.Duration
}

func (c *counter) Now() time.Duration {
	return c.now
}

func chart(t *testing.T) *game.Chart {
	c, err := (&parser.DefaultParser{}).Decode(testdata.GetChart())
	require.NoError(t, err)
	return c
}

func TestChoose(t *testing.T) {
	tests := []struct {
		in   string
		want int
		err  error
	}{
		{"2\n", 2, nil},
		{" 0 \n", 0, nil},
		{"9\nx\n1\n", 1, nil},
		{"q\n", 0, errBack},
		{"", 0, errBack},
		{"7\n", 0, errBack},
	}
	for _, test := range tests {
		out := &bytes.Buffer{}
		i, err := choose(bufio.NewReader(strings.NewReader(test.in)), out, "chart", 3)
		if test.err != nil {
			assert.ErrorIs(t, err, test.err, test.in)
			continue
		}
		require.NoError(t, err, test.in)
		assert.Equal(t, test.want, i, test.in)
		assert.Contains(t, out.String(), "chart [0-2, q]: ")
	}
}

func TestChartTable(t *testing.T) {
	c := chart(t)
	out := &bytes.Buffer{}
	charts := chartTable(out, []library.Folder{
		{Name: "pack", Charts: []*game.Chart{c, c}},
	})
	assert.Len(t, charts, 2)
	s := out.String()
	assert.Contains(t, s, "Plus Plus")
	assert.Contains(t, s, "Cardboard Box")
	assert.Contains(t, s, "72-144")
	assert.Contains(t, s, "easy, hard")
}

func TestUpdate(t *testing.T) {
	clk := &counter{}
	p := &Program{
		Config: &config.Config{},
		logger: zap.NewNop(),
	}
	p.Session = session.New(clk, session.DefaultConfig())
	require.NoError(t, p.Session.Load(chart(t), nil))
	require.NoError(t, p.Session.Play("easy"))

	events := make(chan input.Event, 8)
	assert.True(t, p.Update(events), "nothing pending")

	events <- input.Event{Key: input.KeySpace, Pressed: true}
	assert.True(t, p.Update(events))
	assert.Equal(t, session.Paused, p.Session.Status)

	events <- input.Event{Key: input.KeySpace, Released: true}
	events <- input.Event{Key: input.KeySpace, Pressed: true}
	assert.True(t, p.Update(events))
	assert.Equal(t, session.Playing, p.Session.Status)

	events <- input.Event{Key: 'q', Pressed: true}
	assert.True(t, p.Update(events))
	assert.True(t, p.Session.Keys.Held('q'))

	events <- input.Event{Key: input.KeyEscape, Pressed: true}
	assert.False(t, p.Update(events))
	assert.Equal(t, session.Previewing, p.Session.Status)

	require.NoError(t, p.Session.Play("easy"))
	close(events)
	assert.False(t, p.Update(events), "keyboard gone")
	assert.Equal(t, session.Previewing, p.Session.Status)
}
