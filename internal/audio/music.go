package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"go.uber.org/zap"
)

// FadeDuration is how long fades in and out take.
const FadeDuration = 500 * time.Millisecond

// Extensions are tried in order when looking for a chart's music.
var Extensions = []string{".wav", ".ogg", ".mp3"}

var ErrNotFound = errors.New("no music found")

var logger = zap.NewNop()

func SetLogger(l *zap.Logger) {
	logger = l.Named("audio")
}

// SampleRate is the rate the speaker runs at. Music is resampled to it.
var SampleRate beep.SampleRate = 44100

// Init opens the speaker. Music only sounds once it has been added with
// Attach.
func Init(rate beep.SampleRate) error {
	SampleRate = rate
	if err := speaker.Init(rate, rate.N(time.Second/60)); nil != err {
		return fmt.Errorf("unable to open speaker: %w", err)
	}
	return nil
}

// Find returns the music file in dir named stem, trying each extension.
func Find(dir, stem string) (string, error) {
	for _, ext := range Extensions {
		path := filepath.Join(dir, stem+ext)
		if _, err := os.Stat(path); nil == err {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %v in %v", ErrNotFound, stem, dir)
}

func decode(path string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wav.Decode(f)
	case ".mp3":
		return mp3.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	}
	return nil, beep.Format{}, fmt.Errorf("unsupported audio file %v", path)
}

// Music is a song that streams silence while it is not playing, so it can
// stay on the speaker for its whole life.
type Music struct {
	mu sync.Mutex

	source  beep.StreamSeeker
	format  beep.Format
	closer  io.Closer
	out     beep.Streamer
	playing bool
	paused  bool
	closed  bool

	// gain ramps towards target by step every sample.
	gain, target, step float64
}

// Open decodes the music at path. volume is in powers of two, 0 leaves it
// as it is.
func Open(path string, volume float64) (*Music, error) {
	f, err := os.Open(path)
	if nil != err {
		return nil, err
	}
	streamer, format, err := decode(path, f)
	if nil != err {
		f.Close()
		return nil, fmt.Errorf("unable to decode %v: %w", path, err)
	}
	logger.Debug("opened music",
		zap.String("path", path),
		zap.Int("sample_rate", int(format.SampleRate)),
		zap.Duration("length", format.SampleRate.D(streamer.Len())),
	)
	m := newMusic(streamer, format, volume)
	m.closer = streamer
	return m, nil
}

func newMusic(source beep.StreamSeeker, format beep.Format, volume float64) *Music {
	var out beep.Streamer = source
	if format.SampleRate != SampleRate {
		out = beep.Resample(4, format.SampleRate, SampleRate, out)
	}
	return &Music{
		source: source,
		format: format,
		out: &effects.Volume{
			Streamer: out,
			Base:     2,
			Volume:   volume,
		},
		gain: 1,
		step: 1 / float64(SampleRate.N(FadeDuration)),
	}
}

// Attach adds the music to the speaker.
func (m *Music) Attach() {
	speaker.Play(m)
}

// Close takes the music off the speaker and releases its file.
func (m *Music) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.playing = false
	if m.closer == nil {
		return nil
	}
	return m.closer.Close()
}

func (m *Music) seek(seconds float64) {
	p := m.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if p < 0 {
		p = 0
	}
	if p > m.source.Len() {
		p = m.source.Len()
	}
	if err := m.source.Seek(p); nil != err {
		logger.Warn("unable to seek", zap.Float64("seconds", seconds), zap.Error(err))
	}
}

func (m *Music) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seek(0)
	m.gain, m.target = 1, 1
	m.playing, m.paused = true, false
}

func (m *Music) FadeIn(position float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seek(position)
	m.gain, m.target = 0, 1
	m.playing, m.paused = true, false
}

func (m *Music) FadeOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.target = 0
}

func (m *Music) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
}

func (m *Music) SetPaused(paused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = paused
}

// Playing reports whether the music is audible or fading. Paused music is
// still playing.
func (m *Music) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Position is how far into the song playback is, in seconds.
func (m *Music) Position() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.format.SampleRate.D(m.source.Position()).Seconds()
}

func silence(samples [][2]float64) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
}

func (m *Music) Stream(samples [][2]float64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, false
	}
	if !m.playing || m.paused {
		silence(samples)
		return len(samples), true
	}

	n, ok := m.out.Stream(samples)
	silence(samples[n:])
	for i := range samples[:n] {
		switch {
		case m.gain < m.target:
			m.gain = min(m.gain+m.step, m.target)
		case m.gain > m.target:
			m.gain = max(m.gain-m.step, m.target)
		}
		samples[i][0] *= m.gain
		samples[i][1] *= m.gain
	}
	if !ok || n < len(samples) || (m.target == 0 && m.gain == 0) {
		m.playing = false
	}
	return len(samples), true
}

func (m *Music) Err() error {
	return m.source.Err()
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Silent stands in for music that could not be loaded.
type Silent struct{}

func (Silent) Play()             {}
func (Silent) FadeIn(float64)    {}
func (Silent) FadeOut()          {}
func (Silent) Stop()             {}
func (Silent) SetPaused(bool)    {}
func (Silent) Playing() bool     { return false }
func (Silent) Position() float64 { return 0 }
