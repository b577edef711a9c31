package session

import (
	"errors"
	"fmt"
	"time"

	"git.lost.host/meutraa/khel/internal/clock"
	"git.lost.host/meutraa/khel/internal/game"
	"git.lost.host/meutraa/khel/internal/input"
	"git.lost.host/meutraa/khel/internal/score"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

func SetLogger(l *zap.Logger) {
	logger = l.Named("session")
}

var (
	ErrNoChart           = errors.New("no chart loaded")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrNotPreviewing     = errors.New("session is not previewing")
	ErrPlaying           = errors.New("session is playing")
)

type Status uint8

const (
	None Status = iota
	Previewing
	Playing
	Paused
	Done
)

func (s Status) String() string {
	switch s {
	case None:
		return "none"
	case Previewing:
		return "previewing"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Done:
		return "done"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Audio is the music of the loaded chart.
type Audio interface {
	// Play starts the music from the beginning.
	Play()
	// FadeIn starts the music at position seconds, fading in.
	FadeIn(position float64)
	FadeOut()
	Stop()
	SetPaused(paused bool)
	Playing() bool
	// Position is the playback position in seconds.
	Position() float64
}

// Renderer projects the records of a play on screen.
type Renderer interface {
	Create(r *score.Record)
	Destroy(id int)
}

// Results keeps the outcome of finished plays.
type Results interface {
	Save(r score.Result) error
}

// The preview stops this long before its last beat so the fade completes.
const previewFade = 0.5

type Config struct {
	Rules  score.Rules
	Offset time.Duration
	LeadIn float64
}

func DefaultConfig() Config {
	return Config{Rules: score.DefaultRules(), LeadIn: clock.DefaultLeadIn}
}

// Session is the one play in progress. It is owned by the tick loop and is
// not safe for concurrent use.
type Session struct {
	ID     uuid.UUID
	Config Config
	Status Status

	Chart      *game.Chart
	Difficulty *game.Difficulty
	// Current is the scoring state of the difficulty being played.
	Current *score.Play
	// Result is set once a play is done.
	Result *score.Result

	Keys     *input.State
	Clock    *clock.Clock
	Scorer   score.Scorer
	Renderer Renderer
	Results  Results

	audio        Audio
	fadingOut    bool
	musicStarted bool
}

func New(counter clock.Counter, cfg Config) *Session {
	c := clock.New(counter, cfg.Offset)
	c.LeadIn = cfg.LeadIn
	return &Session{
		ID:       uuid.New(),
		Config:   cfg,
		Status:   None,
		Keys:     input.NewState(),
		Clock:    c,
		Scorer:   &score.DefaultScorer{},
		Renderer: nopRenderer{},
		audio:    nopAudio{},
	}
}

// Load makes c the previewed chart. The music of the previous chart fades
// out.
func (s *Session) Load(c *game.Chart, music Audio) error {
	if s.Status == Playing || s.Status == Paused {
		return ErrPlaying
	}
	if s.Chart != nil {
		s.audio.FadeOut()
	}
	if music == nil {
		music = nopAudio{}
	}
	s.Chart = c
	s.Difficulty = nil
	s.Current = nil
	s.Result = nil
	s.audio = music
	s.fadingOut = false
	s.Status = Previewing
	logger.Info("loaded chart", zap.Stringer("chart", c.Metadata), zap.Strings("difficulties", c.Names()))
	return nil
}

// Audio returns the music of the loaded chart.
func (s *Session) Audio() Audio {
	return s.audio
}

// Play starts the named difficulty of the loaded chart.
func (s *Session) Play(name string) error {
	if s.Chart == nil {
		return ErrNoChart
	}
	if s.Status != Previewing {
		return fmt.Errorf("%w: %v", ErrNotPreviewing, s.Status)
	}
	d := s.Chart.Difficulty(name)
	if d == nil {
		return fmt.Errorf("%w: %q", ErrUnknownDifficulty, name)
	}

	s.audio.Stop()
	s.Difficulty = d
	s.Current = score.NewPlay(d, s.Chart.Tempo, s.Config.Rules, s.Config.Offset)
	s.Current.Active.OnRemove = func(r *score.Record) {
		s.Renderer.Destroy(r.ID)
	}
	s.Result = nil
	s.Keys.Reset()
	s.musicStarted = false
	s.ID = uuid.New()

	for i := range s.Current.Active.Records() {
		s.Renderer.Create(s.Current.Active.Record(i))
	}

	s.Clock.Start()
	s.Status = Playing
	logger.Info("playing",
		zap.String("session", s.ID.String()),
		zap.String("difficulty", d.Name),
		zap.Int("events", len(d.Events)),
		zap.Float64("max_score_per_event", s.Current.Tally.MaxScorePerEvent),
	)
	return nil
}

// KeyDown records a key press and tries to strike events with it.
func (s *Session) KeyDown(key rune) {
	if s.Status != Playing {
		return
	}
	now := s.Clock.Now()
	s.Keys.Press(key, now)
	s.Scorer.TryHit(s.Current, s.Keys, now, s.Clock.ChartTime(s.Chart.Tempo))
}

func (s *Session) KeyUp(key rune) {
	s.Keys.Release(key)
}

// Handle applies a key event from an input source.
func (s *Session) Handle(ev input.Event) {
	if ev.Pressed {
		s.KeyDown(ev.Key)
	}
	if ev.Released {
		s.KeyUp(ev.Key)
	}
}

// ChartTime is the current chart time of the play in progress.
func (s *Session) ChartTime() float64 {
	if s.Chart == nil {
		return 0
	}
	return s.Clock.ChartTime(s.Chart.Tempo)
}

// Tick advances the session by one fixed update.
func (s *Session) Tick() {
	switch s.Status {
	case Previewing:
		s.preview()
		return
	case Playing:
	default:
		return
	}

	p := s.Current
	now := s.Clock.Now()
	chartTime := s.Clock.ChartTime(s.Chart.Tempo)

	if !s.musicStarted && s.Clock.MusicTime(s.Chart.Tempo) > 0 {
		s.audio.Play()
		s.musicStarted = true
	}

	s.Scorer.TryHit(p, s.Keys, now, chartTime)
	s.Scorer.TryHold(p, s.Keys, chartTime)
	s.Scorer.Sweep(p, chartTime)
	p.Active.Compact()

	if p.Done() {
		s.finish()
	}
}

func (s *Session) preview() {
	start, end := s.Chart.PreviewSeconds()
	if !s.audio.Playing() {
		s.audio.FadeIn(start)
		s.fadingOut = false
	}
	if !s.fadingOut && s.audio.Position() >= end-previewFade {
		s.audio.FadeOut()
		s.fadingOut = true
	}
}

func (s *Session) finish() {
	s.Status = Done
	s.audio.FadeOut()

	r := score.NewResult(s.ID, s.Difficulty, s.Current, time.Now())
	s.Result = &r
	logger.Info("done",
		zap.String("session", s.ID.String()),
		zap.Float64("score", r.Score),
		zap.Int("max_combo", r.MaxCombo),
		zap.Float64("accuracy_ms", r.Accuracy),
	)
	if s.Results == nil {
		return
	}
	if err := s.Results.Save(r); nil != err {
		logger.Error("unable to save result", zap.Error(err))
	}
}

// Pause stops the clock. Ticks do nothing until Resume.
func (s *Session) Pause() {
	if s.Status != Playing {
		return
	}
	s.Clock.Pause()
	s.audio.SetPaused(true)
	s.Status = Paused
}

func (s *Session) Resume() {
	if s.Status != Paused {
		return
	}
	span := s.Clock.Resume()
	s.Keys.Shift(span)
	s.audio.SetPaused(false)
	s.Status = Playing
}

// Abort throws away the play in progress, or the result of a finished one,
// and goes back to previewing the chart.
func (s *Session) Abort() {
	switch s.Status {
	case Playing, Paused, Done:
	default:
		return
	}
	if s.Current != nil {
		s.Current.Active.Clear()
	}
	if s.Status != Done {
		s.audio.FadeOut()
		logger.Info("aborted", zap.String("session", s.ID.String()))
	}
	s.Current = nil
	s.Difficulty = nil
	s.Keys.Reset()
	s.Clock.Resume()
	s.fadingOut = true
	s.Status = Previewing
}

type nopAudio struct{}

func (nopAudio) Play()             {}
func (nopAudio) FadeIn(float64)    {}
func (nopAudio) FadeOut()          {}
func (nopAudio) Stop()             {}
func (nopAudio) SetPaused(bool)    {}
func (nopAudio) Playing() bool     { return false }
func (nopAudio) Position() float64 { return 0 }

type nopRenderer struct{}

func (nopRenderer) Create(*score.Record) {}
func (nopRenderer) Destroy(int)          {}
