package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"medscribe/internal/recorder"
	"medscribe/internal/stt"
)

// fakeRecorder hands back a prepared file and lets the test drive ticks.
type fakeRecorder struct {
	mu       sync.Mutex
	startErr error
	path     string
	active   bool
	elapsed  time.Duration
	max      time.Duration
	onTick   func(time.Duration)
	onLimit  func()
	stops    int
	closed   bool
}

func newFakeRecorder(t *testing.T, content string) *fakeRecorder {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recording.m4a")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return &fakeRecorder{path: path}
}

func (f *fakeRecorder) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.active = true
	f.elapsed = 0
	return nil
}

func (f *fakeRecorder) Stop() (*recorder.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return nil, nil
	}
	f.active = false
	f.stops++
	size := int64(-1)
	if fi, err := os.Stat(f.path); err == nil {
		size = fi.Size()
	}
	return &recorder.Asset{Path: f.path, Size: size, Duration: f.elapsed}, nil
}

func (f *fakeRecorder) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.elapsed
}

func (f *fakeRecorder) MaxDuration() time.Duration { return f.max }

func (f *fakeRecorder) OnTick(fn func(time.Duration)) { f.onTick = fn }
func (f *fakeRecorder) OnLimit(fn func())             { f.onLimit = fn }

func (f *fakeRecorder) Close() error {
	f.mu.Lock()
	f.closed = true
	f.active = false
	f.mu.Unlock()
	return nil
}

func (f *fakeRecorder) advance(d time.Duration) {
	f.mu.Lock()
	f.elapsed += d
	elapsed, fn := f.elapsed, f.onTick
	f.mu.Unlock()
	fn(elapsed)
}

type stubGenerator struct {
	title string
	notes string
	calls atomic.Int32
}

func (g *stubGenerator) GenerateTitle(context.Context, string) string {
	g.calls.Add(1)
	return g.title
}

func (g *stubGenerator) GenerateNotes(context.Context, string) string {
	g.calls.Add(1)
	return g.notes
}

// gatedProvider blocks inside Transcribe until released.
type gatedProvider struct {
	text    string
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedProvider(text string) *gatedProvider {
	return &gatedProvider{text: text, started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedProvider) Name() string { return "gated" }

func (g *gatedProvider) Transcribe(context.Context, *stt.Audio) (*stt.Result, error) {
	g.once.Do(func() { close(g.started) })
	<-g.release
	return &stt.Result{Transcript: g.text, Provider: "gated"}, nil
}

// ctxProvider fails when the context it receives is already cancelled.
type ctxProvider struct{ text string }

func (c *ctxProvider) Name() string { return "ctx" }

func (c *ctxProvider) Transcribe(ctx context.Context, _ *stt.Audio) (*stt.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &stt.Result{Transcript: c.text, Provider: "ctx"}, nil
}

// fileCapture is a recorder.Capture that writes fixed bytes on Start.
type fileCapture struct{ data []byte }

func (c *fileCapture) RequestPermission() error { return nil }
func (c *fileCapture) Start(path string) error  { return os.WriteFile(path, c.data, 0o644) }
func (c *fileCapture) Stop() error              { return nil }
