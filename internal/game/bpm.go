package game

import (
	"errors"
	"fmt"
	"math"
)

const oneMinute = 60.0

var (
	ErrEmptyTempoMap = errors.New("tempo map has no segments")
	ErrInvalidBpm    = errors.New("bpm must be a positive finite number")
	ErrTempoOrder    = errors.New("tempo segments must start at ascending positive beats")
)

// Beat is a position in the chart's musical time, fractions allowed.
type Beat float64

// Seconds converts the beat to an exact time in seconds.
func (b Beat) Seconds(m *TempoMap) float64 {
	return m.Seconds(b)
}

// Bpm is a tempo segment: Value beats per minute from Start onwards.
type Bpm struct {
	Value float64
	Start Beat
}

// Length returns how long this segment lasts in seconds before next takes
// over. The last segment (next == nil) never ends.
func (b Bpm) Length(next *Bpm) float64 {
	if next == nil {
		return math.MaxFloat64
	}
	return float64(next.Start-b.Start) * oneMinute / b.Value
}

func (b Bpm) secondsPerBeat() float64 {
	return oneMinute / b.Value
}

// TempoMap is the piecewise constant tempo of a chart. Beat 0 is second 0,
// and the first segment also governs every beat before the second segment.
type TempoMap struct {
	bpms []Bpm
	// offsets[i] is the exact time at which bpms[i] starts, offsets[0] is
	// unused since the first segment is anchored at beat 0.
	offsets []float64
	min, max int
}

func NewTempoMap(bpms ...Bpm) (*TempoMap, error) {
	if len(bpms) == 0 {
		return nil, ErrEmptyTempoMap
	}
	m := &TempoMap{
		bpms:    make([]Bpm, len(bpms)),
		offsets: make([]float64, len(bpms)),
	}
	copy(m.bpms, bpms)

	for i, bpm := range m.bpms {
		if bpm.Value <= 0 || math.IsInf(bpm.Value, 0) || math.IsNaN(bpm.Value) {
			return nil, fmt.Errorf("segment %d (%v@%v): %w", i, bpm.Value, bpm.Start, ErrInvalidBpm)
		}
		if math.IsInf(float64(bpm.Start), 0) || math.IsNaN(float64(bpm.Start)) {
			return nil, fmt.Errorf("segment %d (%v@%v): %w", i, bpm.Value, bpm.Start, ErrTempoOrder)
		}
		if bpm.Value < m.bpms[m.min].Value {
			m.min = i
		}
		if bpm.Value > m.bpms[m.max].Value {
			m.max = i
		}
		if i == 0 {
			continue
		}
		prev := m.bpms[i-1]
		if bpm.Start <= 0 || bpm.Start <= prev.Start {
			return nil, fmt.Errorf("segment %d (%v@%v): %w", i, bpm.Value, bpm.Start, ErrTempoOrder)
		}
		from := prev.Start
		if i == 1 {
			from = 0
		}
		m.offsets[i] = m.offsets[i-1] + float64(bpm.Start-from)*prev.secondsPerBeat()
	}

	return m, nil
}

// Segments returns a copy of the tempo segments.
func (m *TempoMap) Segments() []Bpm {
	out := make([]Bpm, len(m.bpms))
	copy(out, m.bpms)
	return out
}

func (m *TempoMap) index(b Beat) int {
	i := 0
	for i+1 < len(m.bpms) && b >= m.bpms[i+1].Start {
		i++
	}
	return i
}

func (m *TempoMap) anchor(i int) Beat {
	if i == 0 {
		return 0
	}
	return m.bpms[i].Start
}

// At returns the segment that governs the given beat.
func (m *TempoMap) At(b Beat) Bpm {
	return m.bpms[m.index(b)]
}

// Seconds converts a beat to seconds from beat 0. Negative beats are lead-in
// and come out negative.
func (m *TempoMap) Seconds(b Beat) float64 {
	i := m.index(b)
	return m.offsets[i] + float64(b-m.anchor(i))*m.bpms[i].secondsPerBeat()
}

// Between returns the seconds it takes to get from beat a to beat b.
func (m *TempoMap) Between(a, b Beat) float64 {
	return m.Seconds(b) - m.Seconds(a)
}

func (m *TempoMap) indexAtSeconds(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	// Walk segment durations; offsets hold their running sum so a segment
	// boundary maps back onto exactly the segment it starts.
	i := 0
	for i+1 < len(m.bpms) && seconds >= m.offsets[i+1] {
		i++
	}
	return i
}

// AtSeconds returns the segment that governs the given exact time.
func (m *TempoMap) AtSeconds(seconds float64) Bpm {
	return m.bpms[m.indexAtSeconds(seconds)]
}

func (m *TempoMap) Min() Bpm {
	return m.bpms[m.min]
}

func (m *TempoMap) Max() Bpm {
	return m.bpms[m.max]
}
