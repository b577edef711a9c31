package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAutoVelocityAt(t *testing.T) {
	m := threeSegments(t)
	av := AutoVelocity{Speed: 300}

	assert.Equal(t, 300.0, av.At(0, m))
	assert.Equal(t, 150.0, av.At(15, m))
	assert.Equal(t, 300.0, av.At(30, m))
}

func TestAutoVelocityOver(t *testing.T) {
	m := threeSegments(t)
	av := AutoVelocity{Speed: 300}
	first := 40.0 / 3.0

	assert.Equal(t, 0.0, av.Over(0, m))
	assert.InDelta(t, 300*5, av.Over(5, m), 1e-9)
	assert.InDelta(t, -300*2, av.Over(-2, m), 1e-9)
	assert.InDelta(t, 300*first+150*(15-first), av.Over(15, m), 1e-9)
	assert.InDelta(t, 300*first+150*first+300*3.0, av.Over(2*first+3, m), 1e-9)
}

func TestAutoVelocityOverMonotonic(t *testing.T) {
	m := mustTempo(t,
		Bpm{Value: 200, Start: 0},
		Bpm{Value: 50, Start: 3.5},
		Bpm{Value: 175.5, Start: 9},
	)
	av := AutoVelocity{Speed: 100}
	prev := av.Over(-1, m)
	for s := -1.0; s < 20; s += 0.001 {
		d := av.Over(s, m)
		assert.GreaterOrEqual(t, d, prev-1e-9, "at %v seconds", s)
		prev = d
	}

	// continuous across segment boundaries
	for _, segment := range m.Segments()[1:] {
		boundary := m.Seconds(segment.Start)
		assert.InDelta(t, av.Over(boundary-1e-9, m), av.Over(boundary, m), 1e-6)
	}
}

func TestAutoVelocityDistance(t *testing.T) {
	m := mustTempo(t, Bpm{Value: 120, Start: 0})
	av := AutoVelocity{Speed: 250}

	assert.InDelta(t, 500.0, av.Distance(1, 3, m), 1e-9)
	assert.InDelta(t, -500.0, av.Distance(3, 1, m), 1e-9)
}

func BenchmarkDistance(b *testing.B) {
	m := threeSegments(b)
	av := AutoVelocity{Speed: 300}
	total := 0.0
	b.ResetTimer()

	for n := 0; n < b.N; n++ {
		from := float64(n%40) - 2
		total += av.Distance(from, from+1.5, m)
	}

	result = total
}
