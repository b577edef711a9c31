package parser

import (
	"path/filepath"
	"strings"
	"testing"

	"git.lost.host/meutraa/khel/internal/game"
	"git.lost.host/meutraa/khel/internal/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	p := &DefaultParser{}
	chart, err := p.Decode(testdata.GetChart())
	require.NoError(t, err)

	assert.Equal(t, game.Metadata{
		Version: 1,
		Title:   "Plus Plus",
		Artist:  "Cardboard Box",
		Credit:  "khel",
		Preview: 16,
	}, chart.Metadata)
	assert.Equal(t, "Cardboard Box - Plus Plus", chart.AudioName())
	assert.Equal(t, []game.Bpm{
		{Value: 144, Start: 0},
		{Value: 72, Start: 32},
		{Value: 144, Start: 48},
	}, chart.Tempo.Segments())
	assert.Equal(t, []string{"easy", "hard"}, chart.Names())

	easy := chart.Difficulty("easy")
	require.NotNil(t, easy)
	assert.Equal(t, []game.Event{
		game.TimingMarker{At: 0},
		game.Hit{At: 0, Lane: "q"},
		game.TimingMarker{At: 1},
		game.Hit{At: 1, Lane: "w"},
		game.TimingMarker{At: 2},
		game.Hit{At: 2, Lane: "e"},
		game.Hit{At: 2, Lane: "i"},
		game.TimingMarker{At: 4},
		game.HoldStart{At: 4, Lane: "r", Length: 2, Ticks: 4},
		game.HoldTick{At: 4.5, Lane: "r"},
		game.HoldTick{At: 5, Lane: "r"},
		game.HoldTick{At: 5.5, Lane: "r"},
		game.TimingMarker{At: 8},
		game.Hit{At: 8, Lane: "aq"},
	}, easy.Events)
	assert.Equal(t, 9, easy.Judgeable())
	assert.Equal(t, hash("q@0,w@1,e-i@2,+r:2=4@4,qa@8"), easy.Sum)

	hard := chart.Difficulty("hard")
	require.NotNil(t, hard)
	hits, holds, ticks := hard.Counts()
	assert.Equal(t, 5, hits)
	assert.Equal(t, 1, holds)
	assert.Equal(t, 1, ticks)
	assert.Equal(t, game.HoldTick{At: 1.5, Lane: "o"}, hard.Events[6])
	assert.Equal(t, game.TimingMarker{At: 1.5}, hard.Events[7])
	assert.NotEqual(t, easy.Sum, hard.Sum)
}

func TestDecodeSortsByBeat(t *testing.T) {
	chart, err := (&DefaultParser{}).Decode(strings.NewReader(
		"title=t;\nartist=a;\nbpm=120;\n[x]\nhit_objects=q@4,+w:4=4@0,e@1;\n",
	))
	require.NoError(t, err)

	events := chart.Difficulties[0].Events
	for i := 1; i < len(events); i++ {
		assert.LessOrEqual(t, events[i-1].Beat(), events[i].Beat(), "event %d", i)
	}
	assert.Equal(t, game.HoldStart{At: 0, Lane: "w", Length: 4, Ticks: 4}, events[1])
}

func TestDecodeLegacy(t *testing.T) {
	chart, err := (&DefaultParser{}).Decode(strings.NewReader(
		"title=t;\nartist=a;\nbpm=120;\nhit_objects=q@0;\n",
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, chart.Names())
	assert.Equal(t, 120.0, chart.Tempo.At(0).Value)
}

func TestDecodeErrors(t *testing.T) {
	const meta = "[metadata]\ntitle=t;\nartist=a;\nbpms=120@0;\n"
	var tests = map[string]struct {
		text string
		err  error
	}{
		"missing title":       {"artist=a;\nbpm=1;\n[x]\nhit_objects=q@0;", ErrMissingKey},
		"missing bpm":         {"title=t;\nartist=a;\n[x]\nhit_objects=q@0;", ErrMissingBpm},
		"conflicting bpm":     {"title=t;\nartist=a;\nbpm=1;\nbpms=1@0;\n[x]\nhit_objects=q@0;", ErrConflictingBpm},
		"unordered bpms":      {"title=t;\nartist=a;\nbpms=120@0,140@8,100@4;\n[x]\nhit_objects=q@0;", game.ErrTempoOrder},
		"zero bpm":            {"title=t;\nartist=a;\nbpm=0;\n[x]\nhit_objects=q@0;", game.ErrInvalidBpm},
		"no semicolon":        {meta + "[x]\nhit_objects=q@0", ErrSyntax},
		"no difficulties":     {meta, ErrNoDifficulties},
		"no hit objects":      {meta + "[x]\nnotes=q@0;", ErrMissingKey},
		"duplicate group":     {meta + "[x]\nhit_objects=q@0;\n[x]\nhit_objects=q@0;", ErrDuplicateGroup},
		"no beat":             {meta + "[x]\nhit_objects=q;", ErrSyntax},
		"two beats":           {meta + "[x]\nhit_objects=q@0@1;", ErrSyntax},
		"bad beat":            {meta + "[x]\nhit_objects=q@one;", ErrSyntax},
		"unknown key":         {meta + "[x]\nhit_objects=1@0;", ErrUnknownKey},
		"repeated key":        {meta + "[x]\nhit_objects=qq@0;", ErrDuplicateKey},
		"multiple lanes":      {meta + "[x]\nhit_objects=qw@0;", ErrMultipleLanes},
		"hold without info":   {meta + "[x]\nhit_objects=+q@0;", ErrInvalidHoldInfo},
		"hold without length": {meta + "[x]\nhit_objects=+q:0=2@0;", ErrInvalidHoldInfo},
		"hold without ticks":  {meta + "[x]\nhit_objects=+q:1=0@0;", ErrInvalidHoldInfo},
		"multi lane hold":     {meta + "[x]\nhit_objects=+qp:1=2@0;", ErrMultipleLanes},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := (&DefaultParser{}).Decode(strings.NewReader(test.text))
			assert.ErrorIs(t, err, test.err)
		})
	}
}

func TestParse(t *testing.T) {
	dir := t.TempDir()
	path, err := testdata.WriteChart(dir, "plus.khel")
	require.NoError(t, err)

	var p Parser = &DefaultParser{}
	chart, err := p.Parse(path)
	require.NoError(t, err)
	assert.Equal(t, path, chart.Path)
	assert.Equal(t, dir, chart.Dir)

	_, err = p.Parse(filepath.Join(dir, "missing.khel"))
	assert.Error(t, err)
}
