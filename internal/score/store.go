package score

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"git.lost.host/meutraa/khel/internal/game"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Result is the outcome of a finished play. Inputs are never kept.
type Result struct {
	ID         uuid.UUID
	Sum        string
	Difficulty string
	Score      float64
	MaxCombo   int
	Counts     map[string]int
	Accuracy   float64
	PlayedAt   time.Time
}

// NewResult summarises a play.
func NewResult(id uuid.UUID, d *game.Difficulty, p *Play, at time.Time) Result {
	counts := make(map[string]int, len(game.Judgements))
	for _, j := range game.Judgements {
		counts[j.String()] = p.Tally.Count(j)
	}
	return Result{
		ID:         id,
		Sum:        d.Sum,
		Difficulty: d.Name,
		Score:      p.Tally.Score,
		MaxCombo:   p.Tally.MaxCombo,
		Counts:     counts,
		Accuracy:   Accuracy(p.Active),
		PlayedAt:   at,
	}
}

// Store keeps results in sqlite, keyed by the difficulty's content sum.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	initStatement := `
	create table if not exists results
	  (
		  id text not null primary key,
		  sum text not null,
		  difficulty text not null,
		  score real,
		  max_combo integer,
		  accuracy real,
		  counts text,
		  played_at integer
	  );
	`
	if _, err := db.Exec(initStatement); nil != err {
		db.Close()
		return nil, fmt.Errorf("unable to create results table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(r Result) error {
	counts, err := json.Marshal(r.Counts)
	if nil != err {
		return fmt.Errorf("unable to marshal counts: %w", err)
	}
	_, err = s.db.Exec(
		"insert into results(id, sum, difficulty, score, max_combo, accuracy, counts, played_at) values(?, ?, ?, ?, ?, ?, ?, ?)",
		r.ID.String(), r.Sum, r.Difficulty, r.Score, r.MaxCombo, r.Accuracy, string(counts), r.PlayedAt.UnixNano(),
	)
	if nil != err {
		return fmt.Errorf("unable to save result: %w", err)
	}
	logger.Info("saved result", zap.String("id", r.ID.String()), zap.String("difficulty", r.Difficulty), zap.Float64("score", r.Score))
	return nil
}

// Load returns every result for a difficulty, best score first.
func (s *Store) Load(sum string) ([]Result, error) {
	rows, err := s.db.Query("select id, sum, difficulty, score, max_combo, accuracy, counts, played_at from results where sum = ?", sum)
	if nil != err {
		return nil, fmt.Errorf("unable to load results: %w", err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var (
			r        Result
			id       string
			counts   string
			playedAt int64
		)
		if err := rows.Scan(&id, &r.Sum, &r.Difficulty, &r.Score, &r.MaxCombo, &r.Accuracy, &counts, &playedAt); nil != err {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); nil != err {
			logger.Warn("unable to parse result id", zap.String("id", id), zap.Error(err))
			continue
		}
		if err := json.Unmarshal([]byte(counts), &r.Counts); nil != err {
			logger.Warn("unable to unmarshal counts", zap.String("id", id), zap.Error(err))
			continue
		}
		r.PlayedAt = time.Unix(0, playedAt)
		results = append(results, r)
	}
	if err := rows.Err(); nil != err {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b Result) bool {
		return a.Score > b.Score
	})
	return results, nil
}
