package parser

import (
	"bufio"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.lost.host/meutraa/khel/internal/game"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

const metadataGroup = "metadata"

// legacyDifficulty names the hit objects of a chart written without groups.
const legacyDifficulty = "default"

var (
	ErrSyntax          = errors.New("syntax error")
	ErrMissingKey      = errors.New("missing key")
	ErrMissingBpm      = errors.New("missing bpm information")
	ErrConflictingBpm  = errors.New("both bpm and bpms given")
	ErrNoDifficulties  = errors.New("chart has no difficulties")
	ErrDuplicateGroup  = errors.New("duplicate group")
	ErrUnknownKey      = errors.New("unknown key")
	ErrDuplicateKey    = errors.New("key repeated in one object")
	ErrMultipleLanes   = errors.New("object spans multiple lanes")
	ErrInvalidHoldInfo = errors.New("invalid hold length or tick count")
)

type DefaultParser struct{}

type group struct {
	name   string
	values map[string]string
}

func (p *DefaultParser) Parse(file string) (*game.Chart, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, err
	}
	defer f.Close()

	chart, err := p.Decode(f)
	if nil != err {
		return nil, fmt.Errorf("unable to parse %v: %w", file, err)
	}
	chart.Path = file
	chart.Dir = filepath.Dir(file)
	return chart, nil
}

func (p *DefaultParser) Decode(r io.Reader) (*game.Chart, error) {
	groups, err := p.groups(r)
	if nil != err {
		return nil, err
	}

	meta := groups[0].values
	chart := &game.Chart{}
	if err := p.metadata(meta, &chart.Metadata); nil != err {
		return nil, err
	}
	if chart.Tempo, err = p.tempo(meta); nil != err {
		return nil, err
	}

	// Charts without groups keep their hit objects next to the metadata.
	if objects, ok := meta["hit_objects"]; ok {
		groups = append(groups, &group{name: legacyDifficulty, values: map[string]string{"hit_objects": objects}})
	}

	for _, g := range groups[1:] {
		objects, ok := g.values["hit_objects"]
		if !ok {
			return nil, fmt.Errorf("%w: hit_objects in [%v]", ErrMissingKey, g.name)
		}
		events, err := p.hitObjects(objects)
		if nil != err {
			return nil, fmt.Errorf("difficulty %v: %w", g.name, err)
		}
		chart.Difficulties = append(chart.Difficulties, &game.Difficulty{
			Name:   g.name,
			Events: events,
			Sum:    hash(objects),
		})
	}
	if len(chart.Difficulties) == 0 {
		return nil, ErrNoDifficulties
	}

	logger.Debug("decoded chart",
		zap.Stringer("chart", chart.Metadata),
		zap.Int("segments", len(chart.Tempo.Segments())),
		zap.Strings("difficulties", chart.Names()),
	)
	return chart, nil
}

// groups splits the text into its [group] sections. The first group is
// always the metadata, which also takes every line before the first header.
func (p *DefaultParser) groups(r io.Reader) ([]*group, error) {
	current := &group{name: metadataGroup, values: map[string]string{}}
	groups := []*group{current}
	seen := map[string]bool{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(strings.TrimSuffix(scanner.Text(), "\r"))
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := strings.TrimSpace(line[1 : len(line)-1])
			if name == "" {
				return nil, fmt.Errorf("%w: empty group name on line %v", ErrSyntax, n)
			}
			if seen[name] {
				return nil, fmt.Errorf("%w: [%v] on line %v", ErrDuplicateGroup, name, n)
			}
			seen[name] = true
			if name == metadataGroup {
				current = groups[0]
				continue
			}
			current = &group{name: name, values: map[string]string{}}
			groups = append(groups, current)
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok || !strings.HasSuffix(value, ";") {
			return nil, fmt.Errorf("%w: expected key=value; on line %v", ErrSyntax, n)
		}
		current.values[strings.TrimSpace(key)] = strings.TrimSuffix(value, ";")
	}
	if err := scanner.Err(); nil != err {
		return nil, err
	}
	return groups, nil
}

func (p *DefaultParser) metadata(values map[string]string, m *game.Metadata) error {
	for _, key := range []string{"title", "artist"} {
		if _, ok := values[key]; !ok {
			return fmt.Errorf("%w: %v", ErrMissingKey, key)
		}
	}
	m.Title = values["title"]
	m.Subtitle = values["subtitle"]
	m.Artist = values["artist"]
	m.Credit = values["credit"]

	if v, ok := values["version"]; ok {
		version, err := strconv.Atoi(v)
		if nil != err {
			return fmt.Errorf("%w: version %q", ErrSyntax, v)
		}
		m.Version = version
	}
	if v, ok := values["preview"]; ok {
		preview, err := strconv.ParseFloat(v, 64)
		if nil != err {
			return fmt.Errorf("%w: preview %q", ErrSyntax, v)
		}
		m.Preview = game.Beat(preview)
	}
	return nil
}

// tempo reads either a single bpm or a bpm@beat list.
func (p *DefaultParser) tempo(values map[string]string) (*game.TempoMap, error) {
	single, hasSingle := values["bpm"]
	list, hasList := values["bpms"]

	bpms := []game.Bpm{}
	switch {
	case hasSingle && hasList:
		return nil, ErrConflictingBpm
	case hasSingle:
		value, err := strconv.ParseFloat(single, 64)
		if nil != err {
			return nil, fmt.Errorf("%w: bpm %q", ErrSyntax, single)
		}
		bpms = append(bpms, game.Bpm{Value: value})
	case hasList:
		for _, token := range strings.Split(list, ",") {
			v, b, ok := strings.Cut(strings.TrimSpace(token), "@")
			if !ok {
				return nil, fmt.Errorf("%w: bpm %q has no start beat", ErrSyntax, token)
			}
			value, err := strconv.ParseFloat(v, 64)
			if nil != err {
				return nil, fmt.Errorf("%w: bpm %q", ErrSyntax, token)
			}
			start, err := strconv.ParseFloat(b, 64)
			if nil != err {
				return nil, fmt.Errorf("%w: bpm %q", ErrSyntax, token)
			}
			bpms = append(bpms, game.Bpm{Value: value, Start: game.Beat(start)})
		}
	default:
		return nil, ErrMissingBpm
	}
	return game.NewTempoMap(bpms...)
}

// hitObjects expands groupings of the form hits+holds:length=ticks@beat into
// events sorted by beat. Every grouping also gets a timing marker.
func (p *DefaultParser) hitObjects(s string) ([]game.Event, error) {
	events := []game.Event{}
	for _, grouping := range strings.Split(s, ",") {
		grouping = strings.TrimSpace(grouping)
		objects, b, ok := strings.Cut(grouping, "@")
		if !ok || strings.Contains(b, "@") {
			return nil, fmt.Errorf("%w: grouping %q needs exactly one beat", ErrSyntax, grouping)
		}
		value, err := strconv.ParseFloat(b, 64)
		if nil != err {
			return nil, fmt.Errorf("%w: beat of %q", ErrSyntax, grouping)
		}
		beat := game.Beat(value)
		events = append(events, game.TimingMarker{At: beat})

		hits, holds, _ := strings.Cut(objects, "+")
		for _, hit := range strings.Split(hits, "-") {
			if hit == "" {
				continue
			}
			keys, err := p.keys(hit)
			if nil != err {
				return nil, fmt.Errorf("hit %q at %v: %w", hit, beat, err)
			}
			events = append(events, game.Hit{At: beat, Lane: keys})
		}

		if holds == "" {
			continue
		}
		combos, info, ok := strings.Cut(holds, ":")
		if !ok {
			return nil, fmt.Errorf("%w: holds %q at %v", ErrInvalidHoldInfo, holds, beat)
		}
		length, ticks, err := p.holdInfo(info)
		if nil != err {
			return nil, fmt.Errorf("holds %q at %v: %w", holds, beat, err)
		}
		starts := []game.HoldStart{}
		for _, hold := range strings.Split(combos, "-") {
			if hold == "" {
				continue
			}
			keys, err := p.keys(hold)
			if nil != err {
				return nil, fmt.Errorf("hold %q at %v: %w", hold, beat, err)
			}
			start := game.HoldStart{At: beat, Lane: keys, Length: length, Ticks: ticks}
			starts = append(starts, start)
			events = append(events, start)
		}
		for _, start := range starts {
			for _, tick := range start.TickEvents() {
				events = append(events, tick)
			}
		}
	}

	slices.SortStableFunc(events, func(a, b game.Event) bool {
		return a.Beat() < b.Beat()
	})
	return events, nil
}

func (p *DefaultParser) holdInfo(info string) (game.Beat, int, error) {
	l, t, ok := strings.Cut(info, "=")
	if !ok {
		return 0, 0, ErrInvalidHoldInfo
	}
	length, err := strconv.ParseFloat(l, 64)
	if nil != err || length <= 0 {
		return 0, 0, ErrInvalidHoldInfo
	}
	ticks, err := strconv.Atoi(t)
	if nil != err || ticks < 1 {
		return 0, 0, ErrInvalidHoldInfo
	}
	return game.Beat(length), ticks, nil
}

// keys validates one key combo: known keys, none repeated, all on one lane.
func (p *DefaultParser) keys(combo string) (game.Keys, error) {
	lane := -1
	seen := map[rune]bool{}
	for _, r := range strings.ToLower(combo) {
		l, ok := game.Lane(r)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownKey, r)
		}
		if seen[r] {
			return "", fmt.Errorf("%w: %q", ErrDuplicateKey, r)
		}
		seen[r] = true
		if lane != -1 && l != lane {
			return "", ErrMultipleLanes
		}
		lane = l
	}
	return game.NewKeys(combo), nil
}

// hash identifies a difficulty by its hit objects, so results survive edits
// to the metadata.
func hash(objects string) string {
	sum := sha256.Sum256([]byte(objects))
	return base64.StdEncoding.EncodeToString(sum[:])
}
