package recorder

import (
	"errors"
	"os"
	"sync"
	"time"
)

type fakeCapture struct {
	mu         sync.Mutex
	permission error
	startErr   error
	data       []byte
	path       string
	starts     int
	stops      int
}

func (f *fakeCapture) RequestPermission() error { return f.permission }

func (f *fakeCapture) Start(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.starts++
	f.path = path
	return os.WriteFile(path, f.data, 0o644)
}

func (f *fakeCapture) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

// manualTicks hands out a channel the test drives by hand.
type manualTicks struct {
	ch       chan time.Time
	released chan struct{}
}

func newManualTicks() *manualTicks {
	return &manualTicks{ch: make(chan time.Time), released: make(chan struct{}, 1)}
}

func (m *manualTicks) source(time.Duration) (<-chan time.Time, func()) {
	return m.ch, func() { m.released <- struct{}{} }
}

var errDenied = errors.New("permission denied")
