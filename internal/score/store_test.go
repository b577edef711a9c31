package score

import (
	"path/filepath"
	"testing"
	"time"

	"git.lost.host/meutraa/khel/internal/game"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "khel.db"))
	require.NoError(t, err)
	defer s.Close()

	d := &game.Difficulty{
		Name: "hard",
		Sum:  "abc",
		Events: []game.Event{
			game.Hit{At: 4, Lane: "q"},
			game.Hit{At: 5, Lane: "w"},
		},
	}

	played := time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)
	scores := [][]float64{{0, 10000}, {0, 0}, {100, 10000}}
	ids := []uuid.UUID{}
	for _, deltas := range scores {
		p := NewPlay(d, tempo120(t), DefaultRules(), 0)
		for i, delta := range deltas {
			p.Tally.Judge(delta, p.Active.Record(i))
		}
		r := NewResult(uuid.New(), d, p, played)
		ids = append(ids, r.ID)
		require.NoError(t, s.Save(r))
	}

	results, err := s.Load("abc")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, ids[1], results[0].ID)
	assert.Equal(t, ids[0], results[1].ID)
	assert.Equal(t, ids[2], results[2].ID)

	best := results[0]
	assert.Equal(t, 1000000.0, best.Score)
	assert.Equal(t, 2, best.MaxCombo)
	assert.Equal(t, "hard", best.Difficulty)
	assert.Equal(t, 2, best.Counts["marvelous"])
	assert.Equal(t, 0, best.Counts["miss"])
	assert.True(t, played.Equal(best.PlayedAt))

	assert.Equal(t, 1, results[2].Counts["miss"])
	assert.Equal(t, 125000.0, results[2].Score)

	empty, err := s.Load("nothing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStoreDuplicateID(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "khel.db"))
	require.NoError(t, err)
	defer s.Close()

	r := Result{ID: uuid.New(), Sum: "abc", Counts: map[string]int{}}
	require.NoError(t, s.Save(r))
	assert.Error(t, s.Save(r))
}
