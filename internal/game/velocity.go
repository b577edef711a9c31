package game

// AutoVelocity scales scroll speed with tempo so that the fastest section of
// a chart always scrolls at exactly Speed.
type AutoVelocity struct {
	Speed float64
}

// At returns the velocity at the given exact time.
func (av AutoVelocity) At(seconds float64, m *TempoMap) float64 {
	return av.Speed * (m.AtSeconds(seconds).Value / m.Max().Value)
}

// Over returns the distance travelled between exact time zero and duration.
// The tempo is piecewise constant, so this walks the segments and is exact.
func (av AutoVelocity) Over(duration float64, m *TempoMap) float64 {
	if duration <= 0 {
		return av.velocity(0, m) * duration
	}
	cumulative := 0.0
	elapsed := 0.0
	for i := range m.bpms {
		v := av.velocity(i, m)
		if i+1 == len(m.bpms) || duration < m.offsets[i+1] {
			return cumulative + v*(duration-elapsed)
		}
		cumulative += v * (m.offsets[i+1] - elapsed)
		elapsed = m.offsets[i+1]
	}
	return cumulative
}

// Distance returns how far an object travels between two exact times.
func (av AutoVelocity) Distance(from, to float64, m *TempoMap) float64 {
	return av.Over(to, m) - av.Over(from, m)
}

func (av AutoVelocity) velocity(i int, m *TempoMap) float64 {
	return av.Speed * (m.bpms[i].Value / m.Max().Value)
}
