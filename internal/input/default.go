package input

import (
	"encoding/binary"
	"os"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// From linux/input-event-codes.h
const evKey = 0x01

const (
	valueReleased = 0
	valuePressed  = 1
)

var codes = map[uint16]rune{
	1: KeyEscape, 28: KeyEnter, 57: KeySpace,
	16: 'q', 17: 'w', 18: 'e', 19: 'r', 20: 't', 21: 'y', 22: 'u', 23: 'i', 24: 'o', 25: 'p',
	30: 'a', 31: 's', 32: 'd', 33: 'f', 34: 'g', 35: 'h', 36: 'j', 37: 'k', 38: 'l', 39: ';',
	44: 'z', 45: 'x', 46: 'c', 47: 'v', 48: 'b', 49: 'n', 50: 'm', 51: ',', 52: '.', 53: '/',
}

type keyEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// DeviceSource reads real key-down and key-up events from an evdev device
// such as /dev/input/event3.
type DeviceSource struct {
	file   *os.File
	events chan Event
	once   sync.Once
}

func ReadInput(kbd string) (*DeviceSource, error) {
	file, err := os.Open(kbd)
	if err != nil {
		return nil, err
	}
	s := &DeviceSource{file: file, events: make(chan Event, 128)}
	go s.read()
	return s, nil
}

func (s *DeviceSource) read() {
	defer close(s.events)

	var ev keyEvent
	for {
		err := binary.Read(s.file, binary.LittleEndian, &ev)
		if nil != err {
			logger.Info("unable to read keyboard input", zap.Error(err))
			return
		}
		if ev.Type != evKey {
			continue
		}
		key, ok := codes[ev.Code]
		if !ok {
			continue
		}
		// Value 2 is autorepeat, which says nothing new about the key.
		if ev.Value != valuePressed && ev.Value != valueReleased {
			continue
		}
		s.events <- Event{
			Key:      key,
			Pressed:  ev.Value == valuePressed,
			Released: ev.Value == valueReleased,
		}
	}
}

func (s *DeviceSource) Events() <-chan Event {
	return s.events
}

func (s *DeviceSource) Close() error {
	var err error
	s.once.Do(func() {
		err = s.file.Close()
	})
	return err
}
