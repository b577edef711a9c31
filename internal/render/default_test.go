package render

import (
	"bytes"
	"image/color"
	"os"
	"testing"
	"time"

	"git.lost.host/meutraa/khel/internal/game"
	"git.lost.host/meutraa/khel/internal/score"
	"git.lost.host/meutraa/khel/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) (*DefaultRenderer, *bytes.Buffer) {
	tempo, err := game.NewTempoMap(game.Bpm{Start: 0, Value: 120})
	require.NoError(t, err)
	out := &bytes.Buffer{}
	r := NewWriter(out, &theme.DefaultTheme{}, game.AutoVelocity{Speed: 300})
	r.Tempo = tempo
	return r, out
}

func TestFill(t *testing.T) {
	r, out := newRenderer(t)
	r.Fill(3, 12, "x")
	r.FillColor(4, 2, color.RGBA{1, 2, 3, 255}, "y")
	assert.Empty(t, out.String(), "nothing is written before a flush")
	r.Flush()
	assert.Equal(t, "\033[3;12Hx\033[4;2H\033[38;2;1;2;3my\033[0m", out.String())
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "Marvelous", Strip(Colorize(theme.Cyan, "Marvelous")))
	assert.Equal(t, "plain", Strip("plain"))
}

func TestDecorations(t *testing.T) {
	r, out := newRenderer(t)
	r.AddDecoration(5, 6, Colorize(theme.Red, "miss"), 1)
	r.tickDecorations()
	r.Flush()
	assert.Contains(t, out.String(), "\033[6;5H\033[38;2;")
	assert.Len(t, r.decorations, 1)

	out.Reset()
	r.tickDecorations()
	r.Flush()
	assert.Equal(t, "\033[6;5H    ", out.String(), "cleared once expired")
	assert.Empty(t, r.decorations)
}

func TestDecorationReplaced(t *testing.T) {
	r, out := newRenderer(t)
	r.AddDecoration(5, 6, "good", 0)
	r.AddDecoration(5, 6, "miss", 3)
	r.Flush()
	out.Reset()
	r.tickDecorations()
	r.Flush()
	assert.Empty(t, out.String(), "the newer decoration is left alone")
	assert.Len(t, r.decorations, 1)
}

func TestLayout(t *testing.T) {
	r, _ := newRenderer(t)
	assert.Equal(t, uint16(16), r.Hit())
	assert.Equal(t, uint16(22), r.Column(0))
	assert.Equal(t, uint16(58), r.Column(9))

	r.Width = 10
	assert.Equal(t, uint16(1), r.Column(0))
	r.BarRow = 30
	assert.Equal(t, uint16(1), r.Hit())
}

func TestRow(t *testing.T) {
	r, _ := newRenderer(t)
	rec := &score.Record{ID: 0, Kind: game.KindHit, Seconds: 1, Keys: "q"}
	// 300 units a second over 30 units a row.
	assert.Equal(t, 16-10, r.Row(rec, 0))
	assert.Equal(t, 16, r.Row(rec, 1))
	assert.Equal(t, 16+5, r.Row(rec, 1.5))
}

func TestFrame(t *testing.T) {
	r, out := newRenderer(t)
	records := []*score.Record{
		{ID: 0, Kind: game.KindHit, Seconds: 0.5, Keys: "w"},
		{ID: 1, Kind: game.KindTimingMarker, Beat: 2, Seconds: 1},
		{ID: 2, Kind: game.KindHit, Seconds: 1.5, Keys: "p"},
		{ID: 3, Kind: game.KindHit, Seconds: 100, Keys: "q"},
	}
	for _, rec := range records {
		r.Create(rec)
	}
	assert.Equal(t, 4, r.Len())

	r.Frame(0)
	r.Flush()
	s := out.String()
	assert.Contains(t, s, "\033[11;26H")
	assert.Contains(t, s, "\033[6;18H")
	assert.Contains(t, s, "\033[1;58H")
	assert.Len(t, r.drawn, 3, "the far record is off screen")

	out.Reset()
	r.Destroy(0)
	r.Destroy(0)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 1, r.first)
	r.Frame(0)
	r.Flush()
	s = out.String()
	assert.Contains(t, s, "\033[11;26H ", "erased")
	assert.NotContains(t, s, "\033[11;26H\033[38;2;")
	assert.Len(t, r.drawn, 2)

	for _, rec := range records[1:] {
		r.Destroy(rec.ID)
	}
	assert.Zero(t, r.Len())
	r.Create(&score.Record{ID: 0, Kind: game.KindHit, Seconds: 1, Keys: "q"})
	assert.Len(t, r.objects, 1, "a new play starts over")
	assert.Zero(t, r.first)
}

func TestInitNeedsTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	r := New(f, &theme.DefaultTheme{}, game.AutoVelocity{Speed: 300})
	assert.ErrorIs(t, r.Init(), ErrNotTerminal)
	assert.NoError(t, r.Deinit())
}

func TestRenderLoop(t *testing.T) {
	r, out := newRenderer(t)
	ticks, frames := 0, 0
	r.RenderLoop(time.Millisecond, 5*time.Millisecond, func() bool {
		ticks++
		return ticks < 50
	}, func(time.Duration) {
		frames++
		r.Fill(1, 1, "f")
	})
	assert.Equal(t, 50, ticks)
	assert.GreaterOrEqual(t, frames, 1)
	assert.LessOrEqual(t, frames, ticks)
	assert.Contains(t, out.String(), "\033[1;1Hf")
}
