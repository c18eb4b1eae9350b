package stt

import (
	"context"
	"sync"
)

// FakeProvider returns a fixed transcript or error and counts calls.
type FakeProvider struct {
	text string
	err  error

	mu    sync.Mutex
	calls []*Audio
}

func NewFake(text string, err error) *FakeProvider {
	return &FakeProvider{text: text, err: err}
}

func (f *FakeProvider) Name() string { return "fake" }

func (f *FakeProvider) Transcribe(_ context.Context, audio *Audio) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, audio)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &Result{Transcript: f.text, Provider: "fake"}, nil
}

func (f *FakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
