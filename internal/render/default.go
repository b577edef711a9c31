package render

import (
	"errors"
	"image/color"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/khel/internal/game"
	"git.lost.host/meutraa/khel/internal/score"
	"git.lost.host/meutraa/khel/internal/theme"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("output is not a terminal")

// Frames falling further behind than this are dropped instead of caught up.
const maxCatchUp = 250

type DefaultRenderer struct {
	Out   io.Writer
	Theme theme.Theme

	Tempo    *game.TempoMap
	Velocity game.AutoVelocity
	// Scale is the distance travelled per terminal row.
	Scale float64
	// Spacing is the number of columns between lanes.
	Spacing uint16
	// BarRow is the row of the hit bar counted from the bottom.
	BarRow uint16

	Width, Height uint16

	fd           int
	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration

	// objects is ordered by record ID, which is also chart order.
	objects []*score.Record
	index   map[int]int
	first   int
	drawn   []cell
}

type decoration struct {
	X, Y    uint16
	Content string
	Frames  int // remaining frames until removed
}

type cell struct {
	row, col uint16
}

func New(out *os.File, th theme.Theme, velocity game.AutoVelocity) *DefaultRenderer {
	r := NewWriter(out, th, velocity)
	r.fd = int(out.Fd())
	return r
}

// NewWriter draws into any writer. Its size must be set by hand.
func NewWriter(out io.Writer, th theme.Theme, velocity game.AutoVelocity) *DefaultRenderer {
	return &DefaultRenderer{
		Out:      out,
		Theme:    th,
		Velocity: velocity,
		Scale:    30,
		Spacing:  4,
		BarRow:   8,
		Width:    80,
		Height:   24,
		fd:       -1,
		index:    map[int]int{},
	}
}

func (r *DefaultRenderer) Init() error {
	if r.fd < 0 || !term.IsTerminal(r.fd) {
		return ErrNotTerminal
	}
	width, height, err := term.GetSize(r.fd)
	if nil != err {
		return err
	}
	r.Width, r.Height = uint16(width), uint16(height)

	state, err := term.MakeRaw(r.fd)
	if nil != err {
		return err
	}
	r.restoreState = state

	io.WriteString(r.Out, "\033[?1049h"+ // Enable alternate buffer
		"\033[?25l"+ // Make the cursor invisible
		"\033[J", // Clear the screen
	)
	logger.Debug("terminal ready", zap.Uint16("width", r.Width), zap.Uint16("height", r.Height))
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	io.WriteString(r.Out, "\033[?1049l"+ // Disable alternate buffer
		"\033[?25h", // Make the cursor visible
	)
	if r.restoreState == nil {
		return nil
	}
	return term.Restore(r.fd, r.restoreState)
}

func (r *DefaultRenderer) AddDecoration(col, row uint16, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		X:       col,
		Y:       row,
		Content: content,
		Frames:  frames,
	})
	r.Fill(row, col, content)
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	expired := []*decoration{}
	for _, d := range r.decorations {
		if d.Frames == 0 {
			expired = append(expired, d)
			continue
		}
		nd = append(nd, d)
		d.Frames--
	}
	for _, d := range expired {
		if covered(nd, d) {
			continue
		}
		r.Fill(d.Y, d.X, strings.Repeat(" ", len([]rune(Strip(d.Content)))))
	}
	r.decorations = nd
}

// covered reports whether a newer decoration sits where d was.
func covered(live []*decoration, d *decoration) bool {
	for _, l := range live {
		if l.X == d.X && l.Y == d.Y {
			return true
		}
	}
	return false
}

// RenderLoop runs tick every update period and render about every frame
// period, until tick returns false. Decorations age by one each frame.
func (r *DefaultRenderer) RenderLoop(
	update, frame time.Duration,
	tick func() bool,
	render func(renderDuration time.Duration),
) {
	next := time.Now()
	nextFrame := next
	var renderDuration time.Duration
	for {
		now := time.Now()
		if behind := now.Sub(next); behind > maxCatchUp*update {
			logger.Warn("dropping updates", zap.Duration("behind", behind))
			next = now
		}
		for !now.Before(next) {
			if !tick() {
				return
			}
			next = next.Add(update)
		}

		if !now.Before(nextFrame) {
			render(renderDuration)
			r.tickDecorations()
			r.Flush()
			renderDuration = time.Since(now)
			nextFrame = now.Add(frame)
		}

		wake := next
		if nextFrame.Before(wake) {
			wake = nextFrame
		}
		time.Sleep(time.Until(wake))
	}
}

func (r *DefaultRenderer) moveTo(row, column uint16) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H")
}

func (r *DefaultRenderer) Fill(row, column uint16, message string) {
	r.moveTo(row, column)
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) FillColor(row, column uint16, c color.RGBA, message string) {
	r.moveTo(row, column)
	r.buffer.WriteString(Colorize(c, message))
}

// Colorize wraps message in a 24 bit foreground colour.
func Colorize(c color.RGBA, message string) string {
	var b strings.Builder
	b.WriteString("\033[38;2;")
	b.WriteString(strconv.FormatInt(int64(c.R), 10))
	b.WriteString(";")
	b.WriteString(strconv.FormatInt(int64(c.G), 10))
	b.WriteString(";")
	b.WriteString(strconv.FormatInt(int64(c.B), 10))
	b.WriteString("m")
	b.WriteString(message)
	b.WriteString("\033[0m")
	return b.String()
}

// Strip removes escape sequences, leaving what is visible.
func Strip(s string) string {
	var b strings.Builder
	escaped := false
	for _, c := range s {
		switch {
		case c == '\033':
			escaped = true
		case escaped:
			if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
				escaped = false
			}
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func (r *DefaultRenderer) Flush() {
	if r.buffer.Len() == 0 {
		return
	}
	if _, err := io.WriteString(r.Out, r.buffer.String()); nil != err {
		logger.Warn("unable to write frame", zap.Error(err))
	}
	r.buffer.Reset()
}

func (r *DefaultRenderer) Create(rec *score.Record) {
	if len(r.index) == 0 {
		r.objects = r.objects[:0]
		r.first = 0
	}
	r.index[rec.ID] = len(r.objects)
	r.objects = append(r.objects, rec)
}

func (r *DefaultRenderer) Destroy(id int) {
	i, ok := r.index[id]
	if !ok {
		return
	}
	delete(r.index, id)
	r.objects[i] = nil
	for r.first < len(r.objects) && r.objects[r.first] == nil {
		r.first++
	}
}

// Len is the number of records being drawn.
func (r *DefaultRenderer) Len() int {
	return len(r.index)
}

// Hit returns the row of the hit bar.
func (r *DefaultRenderer) Hit() uint16 {
	if r.BarRow >= r.Height {
		return 1
	}
	return r.Height - r.BarRow
}

// Column returns the terminal column of a lane, the lanes centred on screen.
func (r *DefaultRenderer) Column(lane int) uint16 {
	width := int(r.Spacing) * (game.Lanes - 1)
	left := (int(r.Width) - width) / 2
	if left < 1 {
		left = 1
	}
	return uint16(left + lane*int(r.Spacing))
}

// Row returns the row a record is drawn on at chartTime, which may be off
// screen.
func (r *DefaultRenderer) Row(rec *score.Record, chartTime float64) int {
	d := r.Velocity.Distance(chartTime, rec.Seconds, r.Tempo)
	return int(r.Hit()) - int(math.Round(d/r.Scale))
}

func (r *DefaultRenderer) column(rec *score.Record) uint16 {
	if rec.Kind == game.KindTimingMarker {
		return r.Column(0) - r.Spacing
	}
	lane := rec.Keys.Lane()
	if lane < 0 {
		lane = 0
	}
	return r.Column(lane)
}

func (r *DefaultRenderer) Frame(chartTime float64) {
	for _, c := range r.drawn {
		r.Fill(c.row, c.col, " ")
	}
	r.drawn = r.drawn[:0]

	hit := r.Hit()
	for lane := 0; lane < game.Lanes; lane++ {
		r.Fill(hit, r.Column(lane), r.Theme.HitField(lane))
	}

	if r.Tempo == nil {
		return
	}
	for _, rec := range r.objects[r.first:] {
		if rec == nil {
			continue
		}
		row := r.Row(rec, chartTime)
		if row < 1 {
			// Chart order, so everything after is further up.
			break
		}
		if row > int(r.Height) {
			continue
		}
		c := cell{row: uint16(row), col: r.column(rec)}
		r.FillColor(c.row, c.col, r.Theme.Color(rec.Kind, rec.Beat, rec.Keys), r.Theme.Symbol(rec.Kind))
		r.drawn = append(r.drawn, c)
	}
}
