package input

import (
	"context"
	"time"

	"github.com/eiannone/keyboard"
	"go.uber.org/zap"
)

// TerminalSource reads keys from the terminal. Terminals only report key
// presses and autorepeats, so a key counts as released once no event for it
// arrived for the release timeout. Use a DeviceSource for accurate holds.
type TerminalSource struct {
	events  chan Event
	cancel  context.CancelFunc
	done    chan struct{}
	release time.Duration
}

func OpenTerminal(release time.Duration) (*TerminalSource, error) {
	keys, err := keyboard.GetKeys(128)
	if nil != err {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &TerminalSource{
		events:  make(chan Event, 128),
		cancel:  cancel,
		done:    make(chan struct{}),
		release: release,
	}
	go s.read(ctx, keys)
	return s, nil
}

func translate(ev keyboard.KeyEvent) (rune, bool) {
	switch ev.Key {
	case keyboard.KeyEsc:
		return KeyEscape, true
	case keyboard.KeySpace:
		return KeySpace, true
	case keyboard.KeyEnter:
		return KeyEnter, true
	}
	if ev.Rune == 0 {
		return 0, false
	}
	return ev.Rune, true
}

func (s *TerminalSource) read(ctx context.Context, keys <-chan keyboard.KeyEvent) {
	defer close(s.done)
	defer close(s.events)

	log := logger.Named("terminal")
	lastSeen := map[rune]time.Time{}
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-keys:
			if !ok {
				return
			}
			if ev.Err != nil {
				log.Warn("key event error", zap.Error(ev.Err))
				continue
			}
			key, ok := translate(ev)
			if !ok {
				continue
			}
			if _, held := lastSeen[key]; !held && !s.emit(ctx, Event{Key: key, Pressed: true}) {
				return
			}
			lastSeen[key] = time.Now()
		case now := <-ticker.C:
			for key, at := range lastSeen {
				if now.Sub(at) >= s.release {
					delete(lastSeen, key)
					if !s.emit(ctx, Event{Key: key, Released: true}) {
						return
					}
				}
			}
		}
	}
}

func (s *TerminalSource) emit(ctx context.Context, ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *TerminalSource) Events() <-chan Event {
	return s.events
}

func (s *TerminalSource) Close() error {
	s.cancel()
	<-s.done
	return keyboard.Close()
}
