package game

import "fmt"

type Metadata struct {
	Version  int
	Title    string
	Subtitle string
	Artist   string
	Credit   string
	Preview  Beat
}

// AudioName is the file stem of the chart's music, without extension.
func (m Metadata) AudioName() string {
	if m.Subtitle == "" {
		return fmt.Sprintf("%s - %s", m.Artist, m.Title)
	}
	return fmt.Sprintf("%s - %s (%s)", m.Artist, m.Title, m.Subtitle)
}

func (m Metadata) String() string {
	return m.AudioName()
}

// Chart is immutable once loaded. Playing it works on a copy of one of its
// difficulties.
type Chart struct {
	Metadata
	Tempo        *TempoMap
	Difficulties []*Difficulty
	// Dir is the directory the chart was loaded from, where its audio lives.
	Dir  string
	Path string
}

// Difficulty returns the named difficulty, nil if there is none.
func (c *Chart) Difficulty(name string) *Difficulty {
	for _, d := range c.Difficulties {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Names returns the difficulty names in chart order.
func (c *Chart) Names() []string {
	names := make([]string, len(c.Difficulties))
	for i, d := range c.Difficulties {
		names[i] = d.Name
	}
	return names
}

// PreviewSeconds returns where in the music the preview starts and ends.
// The preview lasts 32 beats.
func (c *Chart) PreviewSeconds() (start, end float64) {
	return c.Tempo.Seconds(c.Preview), c.Tempo.Seconds(c.Preview + 32)
}
