package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"git.lost.host/meutraa/khel/internal/audio"
	"git.lost.host/meutraa/khel/internal/clock"
	"git.lost.host/meutraa/khel/internal/config"
	"git.lost.host/meutraa/khel/internal/game"
	"git.lost.host/meutraa/khel/internal/input"
	"git.lost.host/meutraa/khel/internal/library"
	"git.lost.host/meutraa/khel/internal/parser"
	"git.lost.host/meutraa/khel/internal/render"
	"git.lost.host/meutraa/khel/internal/score"
	"git.lost.host/meutraa/khel/internal/session"
	"git.lost.host/meutraa/khel/internal/theme"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
)

// errBack is returned by a menu when the player backs out of it.
var errBack = errors.New("back")

const (
	// How often the preview is ticked while a menu waits for input.
	previewPeriod = 20 * time.Millisecond
	reloadDelay   = 500 * time.Millisecond
	historyLength = 5
)

type Program struct {
	Config   *config.Config
	Library  *library.Library
	Store    *score.Store
	Session  *session.Session
	Theme    theme.Theme
	Renderer *render.DefaultRenderer

	logger *zap.Logger
	in     *bufio.Reader
	out    io.Writer

	cancel  context.CancelFunc
	watched chan error
	speaker bool
	music   *audio.Music

	// judged is how many judgements have been flashed on screen.
	judged int
}

func NewProgram(c *config.Config, logger *zap.Logger) (*Program, error) {
	p := &Program{
		Config:  c,
		Library: library.New(c.Directory, &parser.DefaultParser{}),
		Theme:   &theme.DefaultTheme{},
		logger:  logger,
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
	if err := p.Library.Load(); nil != err {
		return nil, err
	}

	store, err := score.Open(c.Database)
	if nil != err {
		return nil, fmt.Errorf("unable to open results: %w", err)
	}
	p.Store = store

	if err := audio.Init(audio.SampleRate); nil != err {
		logger.Warn("playing without sound", zap.Error(err))
	} else {
		p.speaker = true
	}

	p.Session = session.New(clock.NewMonotonic(), session.Config{
		Rules:  score.DefaultRules(),
		Offset: c.Offset,
		LeadIn: c.LeadIn,
	})
	p.Session.Results = p.Store

	p.Renderer = render.New(os.Stdout, p.Theme, game.AutoVelocity{Speed: c.Speed})
	p.Renderer.Spacing = uint16(c.Spacing)
	p.Renderer.BarRow = uint16(c.BarRow)
	p.Renderer.Scale = c.Scale
	p.Session.Renderer = p.Renderer

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.watched = make(chan error, 1)
	go func() {
		p.watched <- p.Library.Watch(ctx, reloadDelay, func() {
			logger.Info("library changed", zap.Int("charts", len(p.Library.Charts())))
		})
	}()
	return p, nil
}

func (p *Program) Close() error {
	p.cancel()
	if err := <-p.watched; nil != err {
		p.logger.Warn("library watch stopped", zap.Error(err))
	}
	if p.music != nil {
		p.music.Close()
	}
	return p.Store.Close()
}

// Run goes from chart selection to difficulty selection to playing until
// the player quits.
func (p *Program) Run() error {
	for {
		chart, err := p.ChooseChart()
		if errors.Is(err, errBack) {
			return nil
		}
		if nil != err {
			return err
		}
		if err := p.Load(chart); nil != err {
			return err
		}

		for {
			var name string
			err := p.previewWhile(func() (err error) {
				name, err = p.ChooseDifficulty(chart)
				return err
			})
			if errors.Is(err, errBack) {
				break
			}
			if nil != err {
				return err
			}
			if err := p.Play(name); nil != err {
				return err
			}
			if err := p.Results(); nil != err {
				return err
			}
			p.Session.Abort()
		}
	}
}

// choose reads a line and returns it as an index below n. An empty line or
// q backs out.
func choose(in *bufio.Reader, out io.Writer, prompt string, n int) (int, error) {
	for {
		fmt.Fprintf(out, "%s [0-%d, q]: ", prompt, n-1)
		line, err := in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "q" || (line == "" && nil != err) {
			return 0, errBack
		}
		if i, perr := strconv.Atoi(line); nil == perr && i >= 0 && i < n {
			return i, nil
		}
		if nil != err {
			return 0, err
		}
	}
}

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(out)
	t.SetHeader(header)
	t.SetBorder(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func bpmRange(m *game.TempoMap) string {
	lo, hi := m.Min().Value, m.Max().Value
	if lo == hi {
		return humanize.Ftoa(lo)
	}
	return humanize.Ftoa(lo) + "-" + humanize.Ftoa(hi)
}

func chartTable(out io.Writer, folders []library.Folder) []*game.Chart {
	t := newTable(out, "#", "Folder", "Title", "Artist", "BPM", "Difficulties")
	charts := []*game.Chart{}
	for _, f := range folders {
		for _, c := range f.Charts {
			t.Append([]string{
				strconv.Itoa(len(charts)),
				f.Name,
				c.Title,
				c.Artist,
				bpmRange(c.Tempo),
				strings.Join(c.Names(), ", "),
			})
			charts = append(charts, c)
		}
	}
	t.Render()
	return charts
}

func (p *Program) ChooseChart() (*game.Chart, error) {
	charts := chartTable(p.out, p.Library.Folders())
	if len(charts) == 0 {
		return nil, fmt.Errorf("no charts in %v", p.Config.Directory)
	}
	i, err := choose(p.in, p.out, "chart", len(charts))
	if nil != err {
		return nil, err
	}
	return charts[i], nil
}

func (p *Program) best(d *game.Difficulty) string {
	results, err := p.Store.Load(d.Sum)
	if nil != err {
		p.logger.Warn("unable to load results", zap.String("difficulty", d.Name), zap.Error(err))
		return "-"
	}
	if len(results) == 0 {
		return "-"
	}
	return humanize.Comma(int64(results[0].Score))
}

func (p *Program) ChooseDifficulty(c *game.Chart) (string, error) {
	fmt.Fprintf(p.out, "\n%v\n", c.Metadata)
	t := newTable(p.out, "#", "Difficulty", "Hits", "Holds", "Ticks", "Best")
	for i, d := range c.Difficulties {
		hits, holds, ticks := d.Counts()
		t.Append([]string{
			strconv.Itoa(i),
			d.Name,
			humanize.Comma(int64(hits)),
			humanize.Comma(int64(holds)),
			humanize.Comma(int64(ticks)),
			p.best(d),
		})
	}
	t.Render()
	i, err := choose(p.in, p.out, "difficulty", len(c.Difficulties))
	if nil != err {
		return "", err
	}
	return c.Difficulties[i].Name, nil
}

// previewWhile ticks the previewing session while fn blocks on a menu.
func (p *Program) previewWhile(fn func() error) error {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(previewPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p.Session.Tick()
			}
		}
	}()
	err := fn()
	close(done)
	wg.Wait()
	return err
}

// Load opens the music of c and starts previewing it. A chart without
// playable music is played in silence.
func (p *Program) Load(c *game.Chart) error {
	var music session.Audio = audio.Silent{}
	previous := p.music
	p.music = nil
	if p.speaker {
		m, err := p.openMusic(c)
		if nil != err {
			p.logger.Warn("no music", zap.Stringer("chart", c.Metadata), zap.Error(err))
		} else {
			m.Attach()
			p.music = m
			music = m
		}
	}
	if err := p.Session.Load(c, music); nil != err {
		return err
	}
	if previous != nil {
		time.AfterFunc(audio.FadeDuration, func() {
			previous.Close()
		})
	}
	return nil
}

func (p *Program) openMusic(c *game.Chart) (*audio.Music, error) {
	path, err := audio.Find(c.Dir, c.AudioName())
	if nil != err {
		return nil, err
	}
	return audio.Open(path, p.Config.Volume)
}

func (p *Program) openInput() (input.Source, error) {
	if p.Config.Keyboard != "" {
		return input.ReadInput(p.Config.Keyboard)
	}
	return input.OpenTerminal(p.Config.Release)
}

// Play runs the named difficulty until it is done or the player aborts.
func (p *Program) Play(name string) error {
	src, err := p.openInput()
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := src.Close(); nil != err {
			p.logger.Warn("unable to close keyboard", zap.Error(err))
		}
	}()

	if err := p.Renderer.Init(); nil != err {
		return fmt.Errorf("unable to set up terminal: %w", err)
	}
	defer p.Renderer.Deinit()

	p.Renderer.Tempo = p.Session.Chart.Tempo
	if err := p.Session.Play(name); nil != err {
		return err
	}
	p.judged = 0

	p.Renderer.RenderLoop(p.Config.UpdatePeriod(), p.Config.FramePeriod(),
		func() bool {
			return p.Update(src.Events())
		},
		p.Render,
	)
	return nil
}

// Update drains the pending key events and ticks the session once. It
// returns false once the play is over.
func (p *Program) Update(events <-chan input.Event) bool {
drain:
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.logger.Warn("keyboard closed")
				p.Session.Abort()
				return false
			}
			switch {
			case ev.Pressed && ev.Key == input.KeyEscape:
				p.Session.Abort()
				return false
			case ev.Pressed && ev.Key == input.KeySpace:
				if p.Session.Status == session.Paused {
					p.Session.Resume()
				} else {
					p.Session.Pause()
				}
			default:
				p.Session.Handle(ev)
			}
		default:
			break drain
		}
	}

	p.Session.Tick()
	return p.Session.Status == session.Playing || p.Session.Status == session.Paused
}

func (p *Program) Render(renderDuration time.Duration) {
	p.RenderGame()
	p.RenderStatic(renderDuration)
}

func (p *Program) RenderGame() {
	p.Renderer.Frame(p.Session.ChartTime())

	play := p.Session.Current
	if play == nil {
		return
	}
	total := 0
	for _, j := range game.Judgements {
		total += play.Tally.Count(j)
	}
	if total == p.judged {
		return
	}
	p.judged = total
	last := play.Tally.Last
	p.Renderer.AddDecoration(
		p.Renderer.Column(game.Lanes/2)-5, p.Renderer.Hit()+2,
		render.Colorize(p.Theme.Judgement(last), fmt.Sprintf("%-10s", last.Text())),
		int(p.Config.RefreshRate/3),
	)
}

func (p *Program) RenderStatic(renderDuration time.Duration) {
	play := p.Session.Current
	if play == nil {
		return
	}
	col := uint16(2)
	p.Renderer.Fill(2, col, fmt.Sprintf("      Score: %9s", humanize.Comma(play.Tally.DisplayScore())))
	p.Renderer.Fill(3, col, fmt.Sprintf("      Combo: %9d", play.Tally.DisplayCombo()))
	p.Renderer.Fill(4, col, fmt.Sprintf("     Render: %6d µs", renderDuration.Microseconds()))
	for i, j := range game.Judgements {
		p.Renderer.FillColor(uint16(6+i), col, p.Theme.Judgement(j),
			fmt.Sprintf("%11s: %9d", j.String(), play.Tally.Count(j)))
	}
	status := ""
	if p.Session.Status == session.Paused {
		status = "paused"
	}
	p.Renderer.Fill(p.Renderer.Hit()+4, p.Renderer.Column(game.Lanes/2)-3, fmt.Sprintf("%-6s", status))
}

// Results prints the finished play and the best plays of the same
// difficulty, then waits for enter.
func (p *Program) Results() error {
	r := p.Session.Result
	if r == nil {
		return nil
	}
	fmt.Fprintf(p.out, "\n%v [%v]\n", p.Session.Chart.Metadata, r.Difficulty)
	t := newTable(p.out, "Score", "Max combo", "Accuracy", "Marvelous", "Perfect", "Great", "Good", "Miss")
	row := []string{
		humanize.Comma(int64(r.Score)),
		humanize.Comma(int64(r.MaxCombo)),
		fmt.Sprintf("%.1f ms", r.Accuracy),
	}
	for _, j := range game.Judgements {
		row = append(row, humanize.Comma(int64(r.Counts[j.String()])))
	}
	t.Append(row)
	t.Render()

	history, err := p.Store.Load(r.Sum)
	if nil != err {
		return err
	}
	if len(history) > historyLength {
		history = history[:historyLength]
	}
	fmt.Fprintln(p.out)
	t = newTable(p.out, "", "Score", "Max combo", "Played")
	for i, h := range history {
		place := humanize.Ordinal(i + 1)
		if h.ID == r.ID {
			place += " *"
		}
		t.Append([]string{place, humanize.Comma(int64(h.Score)), humanize.Comma(int64(h.MaxCombo)), humanize.Time(h.PlayedAt)})
	}
	t.Render()

	fmt.Fprint(p.out, "press enter")
	_, err = p.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
