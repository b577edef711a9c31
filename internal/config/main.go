package config

import (
	"time"

	"golang.org/x/exp/constraints"
	"gopkg.in/alecthomas/kingpin.v2"
)

const Version = "0.3.0"

// Limits of the auto velocity speed.
const (
	MinSpeed = 100
	MaxSpeed = 500
)

type Config struct {
	Directory string
	Offset    time.Duration
	// Speed is the auto velocity speed, how fast the fastest section of a
	// chart scrolls.
	Speed  float64
	LeadIn float64
	Volume float64

	Database string
	LogFile  string
	Debug    bool

	// Keyboard is an evdev device. The terminal is read when it is empty.
	Keyboard string
	Release  time.Duration

	UpdateRate  float64
	RefreshRate float64
	Spacing     uint
	BarRow      uint
	Scale       float64
}

// UpdatePeriod is the time between two ticks of the session.
func (c *Config) UpdatePeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.UpdateRate)
}

// FramePeriod is the time between two rendered frames.
func (c *Config) FramePeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.RefreshRate)
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func app(c *Config) *kingpin.Application {
	a := kingpin.New("khel", "Keyboard rhythm game in the terminal")
	a.Version(Version)
	a.Arg("directory", "Chart library directory").Required().ExistingDirVar(&c.Directory)
	a.Flag("offset", "Global offset, positive when input is late").Default("0ms").Short('o').DurationVar(&c.Offset)
	a.Flag("speed", "Auto velocity scroll speed").Default("300").Short('s').Float64Var(&c.Speed)
	a.Flag("lead-in", "Beats before the first beat of a chart").Default("8").Short('l').Float64Var(&c.LeadIn)
	a.Flag("volume", "Music volume in powers of two").Default("0").Float64Var(&c.Volume)
	a.Flag("db", "Results database").Default("khel.db").StringVar(&c.Database)
	a.Flag("log", "Log file").Default("khel.log").StringVar(&c.LogFile)
	a.Flag("debug", "Log at debug level").Short('v').BoolVar(&c.Debug)
	a.Flag("keyboard", "evdev keyboard device, e.g. /dev/input/event3").Short('k').StringVar(&c.Keyboard)
	a.Flag("release", "Terminal key release timeout").Default("120ms").DurationVar(&c.Release)
	a.Flag("update-rate", "Session updates per second").Default("1000").Float64Var(&c.UpdateRate)
	a.Flag("refresh-rate", "Rendered frames per second").Default("240").Short('R').Float64Var(&c.RefreshRate)
	a.Flag("spacing", "Columns between lanes").Default("4").Short('S').UintVar(&c.Spacing)
	a.Flag("bar-row", "Console row of the hit bar, counted from the bottom").Default("8").UintVar(&c.BarRow)
	a.Flag("scale", "Scroll distance per console row").Default("30").Float64Var(&c.Scale)
	return a
}

// Parse reads the command line, without the program name.
func Parse(args []string) (*Config, error) {
	c := &Config{}
	if _, err := app(c).Parse(args); nil != err {
		return nil, err
	}

	c.Speed = clamp(c.Speed, MinSpeed, MaxSpeed)
	c.LeadIn = clamp(c.LeadIn, 0, 64)
	c.UpdateRate = clamp(c.UpdateRate, 60, 8000)
	c.RefreshRate = clamp(c.RefreshRate, 1, 1000)
	c.Spacing = clamp(c.Spacing, 1, 16)
	c.Scale = clamp(c.Scale, 1, 1000)
	return c, nil
}
