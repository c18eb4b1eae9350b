package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"medscribe/internal/ai"
	"medscribe/internal/recorder"
	"medscribe/internal/storage"
	"medscribe/internal/stt"
)

type harness struct {
	orch *Orchestrator
	rec  *fakeRecorder
	gen  *stubGenerator
	repo *storage.MemoryRepository
}

func newHarness(t *testing.T, provider stt.Provider) *harness {
	t.Helper()
	h := &harness{
		rec:  newFakeRecorder(t, "AUDIO"),
		gen:  &stubGenerator{title: "Headache Consultation", notes: "- Symptom: headache"},
		repo: storage.NewMemoryRepository(),
	}
	h.orch = NewOrchestrator(Options{
		Recorder:    h.rec,
		Transcriber: provider,
		Generator:   h.gen,
		Repository:  h.repo,
	})
	t.Cleanup(func() { h.orch.Close() })
	return h
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.m4a")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHeadacheRecordingEndToEnd(t *testing.T) {
	h := newHarness(t, stt.NewFake("Patient reports headache.", nil))
	owner := uuid.New()
	ctx := context.Background()

	if err := h.orch.Start(ctx, &owner); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 3; i++ {
		h.rec.advance(time.Second)
	}
	if snap := h.orch.Snapshot(); snap.Status != StatusRecording || snap.ElapsedMs != 3000 {
		t.Fatalf("snapshot = %+v", snap)
	}

	state, err := h.orch.Stop(ctx)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if state.Status != StatusIdle || state.Busy {
		t.Errorf("final status = %s busy=%v", state.Status, state.Busy)
	}
	if state.Transcript != "Patient reports headache." || state.Notes != "- Symptom: headache" || state.Title != "Headache Consultation" {
		t.Errorf("state = %+v", state)
	}

	notes, err := h.repo.ListNotes(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 {
		t.Fatalf("saved %d notes, want 1", len(notes))
	}
	n := notes[0]
	if n.UserID != owner || n.Title != "Headache Consultation" || n.Content != "Patient reports headache." || n.MedicalNotes != "- Symptom: headache" {
		t.Errorf("note = %+v", n)
	}
	if n.AudioHash == "" {
		t.Error("note should carry the audio fingerprint")
	}
}

func TestNoOwnerTranscribesOnly(t *testing.T) {
	h := newHarness(t, stt.NewFake("hello there", nil))
	ctx := context.Background()

	if err := h.orch.Start(ctx, nil); err != nil {
		t.Fatal(err)
	}
	state, err := h.orch.Stop(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state.Transcript != "hello there" || state.Status != StatusIdle {
		t.Errorf("state = %+v", state)
	}
	if h.repo.NoteCount() != 0 {
		t.Errorf("saved %d notes without an owner", h.repo.NoteCount())
	}
	if h.gen.calls.Load() != 0 {
		t.Errorf("generator called %d times without an owner", h.gen.calls.Load())
	}
}

func TestTranscriptionFailureAborts(t *testing.T) {
	for _, tt := range []struct {
		name string
		err  error
		want string
	}{
		{"api error", &stt.APIError{StatusCode: 400, Message: "Invalid file format"}, "API error: Invalid file format"},
		{"too large", stt.ErrAudioTooLarge, "Recording is too large. Maximum size is 25MB."},
		{"too long", stt.ErrTranscriptTooLong, "Transcription is too long. Maximum length is 100,000 characters."},
		{"empty message", errors.New(""), DefaultErrorMessage},
	} {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, stt.NewFake("", tt.err))
			owner := uuid.New()
			ctx := context.Background()

			if err := h.orch.Start(ctx, &owner); err != nil {
				t.Fatal(err)
			}
			state, err := h.orch.Stop(ctx)
			if err != nil {
				t.Fatalf("Stop: %v", err)
			}
			if state.Notes != tt.want || state.Status != StatusIdle || state.Busy {
				t.Errorf("state = %+v, want notes %q", state, tt.want)
			}
			if h.gen.calls.Load() != 0 || h.repo.NoteCount() != 0 {
				t.Errorf("generation/persistence ran after a transcription failure")
			}
		})
	}
}

func TestGenerationFallbacksArePersisted(t *testing.T) {
	repo := storage.NewMemoryRepository()
	gen := ai.NewGenerator(failingCompleter{}, "", ai.Prompts{})
	orch := NewOrchestrator(Options{
		Recorder:    newFakeRecorder(t, "AUDIO"),
		Transcriber: stt.NewFake("Patient reports headache.", nil),
		Generator:   gen,
		Repository:  repo,
	})
	owner := uuid.New()
	ctx := context.Background()

	if err := orch.Start(ctx, &owner); err != nil {
		t.Fatal(err)
	}
	state, err := orch.Stop(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state.Title != ai.FallbackTitle || state.Notes != ai.FallbackNotes {
		t.Errorf("state = %+v", state)
	}
	notes, _ := repo.ListNotes(ctx, owner)
	if len(notes) != 1 || notes[0].Title != "Untitled Recording" || notes[0].MedicalNotes != "Error generating notes. Please try again." {
		t.Errorf("notes = %+v", notes)
	}
}

type failingCompleter struct{}

func (failingCompleter) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, errors.New("service unavailable")
}

func TestStartDeviceFailure(t *testing.T) {
	h := newHarness(t, stt.NewFake("x", nil))
	h.rec.startErr = errors.New("microphone unavailable")

	if err := h.orch.Start(context.Background(), nil); err == nil {
		t.Fatal("expected start error")
	}
	if s := h.orch.Snapshot(); s.Status != StatusIdle || s.Notes != "" {
		t.Errorf("state after failed start = %+v", s)
	}

	h.rec.startErr = nil
	if err := h.orch.Start(context.Background(), nil); err != nil {
		t.Errorf("retry Start: %v", err)
	}
}

func TestStopWhenIdleIsNoop(t *testing.T) {
	h := newHarness(t, stt.NewFake("x", nil))
	state, err := h.orch.Stop(context.Background())
	if err != nil || state.Status != StatusIdle {
		t.Errorf("Stop idle = %+v, %v", state, err)
	}
	if h.rec.stops != 0 {
		t.Error("recorder stopped while idle")
	}
}

func TestSecondStartWhileRecording(t *testing.T) {
	h := newHarness(t, stt.NewFake("x", nil))
	if err := h.orch.Start(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if err := h.orch.Start(context.Background(), nil); !errors.Is(err, ErrBusy) {
		t.Errorf("second Start = %v, want ErrBusy", err)
	}
}

func TestBusyWhileProcessing(t *testing.T) {
	gated := newGatedProvider("text")
	h := newHarness(t, gated)
	owner := uuid.New()

	path := writeFile(t, "A")
	done := make(chan State, 1)
	go func() {
		s, _ := h.orch.Submit(context.Background(), &owner, &stt.Audio{Path: path, Size: 1})
		done <- s
	}()
	<-gated.started

	if s := h.orch.Snapshot(); s.Status != StatusProcessing || !s.Busy {
		t.Errorf("snapshot = %+v, want busy processing", s)
	}
	if err := h.orch.Start(context.Background(), nil); !errors.Is(err, ErrBusy) {
		t.Errorf("Start while processing = %v", err)
	}
	if _, err := h.orch.Stop(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("Stop while processing = %v", err)
	}
	if _, err := h.orch.Submit(context.Background(), nil, &stt.Audio{Path: "x", Size: 1}); !errors.Is(err, ErrBusy) {
		t.Errorf("Submit while processing = %v", err)
	}

	close(gated.release)
	select {
	case s := <-done:
		if s.Status != StatusIdle {
			t.Errorf("final = %+v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("processing did not finish")
	}
}

func TestCallerCancellationDoesNotAbort(t *testing.T) {
	h := newHarness(t, &ctxProvider{text: "still here"})
	owner := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state, err := h.orch.Submit(ctx, &owner, &stt.Audio{Path: writeFile(t, "A"), Size: 1})
	if err != nil {
		t.Fatal(err)
	}
	if state.Transcript != "still here" || h.repo.NoteCount() != 1 {
		t.Errorf("state = %+v, saved = %d", state, h.repo.NoteCount())
	}
}

func TestNewerNoteListedFirst(t *testing.T) {
	h := newHarness(t, stt.NewFake("t", nil))
	t1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := []time.Time{t1, t1.Add(time.Minute)}
	h.orch.now = func() time.Time {
		now := clock[0]
		clock = clock[1:]
		return now
	}
	owner := uuid.New()
	ctx := context.Background()

	h.gen.title = "first"
	if _, err := h.orch.Submit(ctx, &owner, &stt.Audio{Path: writeFile(t, "one"), Size: 3}); err != nil {
		t.Fatal(err)
	}
	h.gen.title = "second"
	if _, err := h.orch.Submit(ctx, &owner, &stt.Audio{Path: writeFile(t, "two"), Size: 3}); err != nil {
		t.Fatal(err)
	}

	notes, _ := h.repo.ListNotes(ctx, owner)
	if len(notes) != 2 || notes[0].Title != "second" || notes[1].Title != "first" {
		t.Errorf("notes = %+v", notes)
	}
}

func TestIdenticalAudioSavedPerSession(t *testing.T) {
	h := newHarness(t, stt.NewFake("Patient reports headache.", nil))
	alice, bob := uuid.New(), uuid.New()
	ctx := context.Background()
	path := writeFile(t, "identical audio")

	for _, owner := range []uuid.UUID{alice, bob, alice} {
		state, err := h.orch.Submit(ctx, &owner, &stt.Audio{Path: path, Size: 15})
		if err != nil {
			t.Fatal(err)
		}
		if state.Notes != "- Symptom: headache" {
			t.Fatalf("state = %+v", state)
		}
	}

	for owner, want := range map[uuid.UUID]int{alice: 2, bob: 1} {
		notes, err := h.repo.ListNotes(ctx, owner)
		if err != nil {
			t.Fatal(err)
		}
		if len(notes) != want {
			t.Errorf("owner %s has %d notes, want %d", owner, len(notes), want)
		}
		for _, n := range notes {
			if n.AudioHash == "" || n.AudioHash != notes[0].AudioHash {
				t.Errorf("audio_hash = %q", n.AudioHash)
			}
		}
	}
	if h.repo.NoteCount() != 3 {
		t.Errorf("NoteCount = %d, want 3", h.repo.NoteCount())
	}
}

func TestSnapshotCappedAtRecorderMax(t *testing.T) {
	rec := newFakeRecorder(t, "AUDIO")
	rec.max = 2 * time.Second
	orch := NewOrchestrator(Options{
		Recorder:    rec,
		Transcriber: stt.NewFake("t", nil),
		Generator:   &stubGenerator{},
		Repository:  storage.NewMemoryRepository(),
	})
	if err := orch.Start(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		rec.advance(time.Second)
	}
	if s := orch.Snapshot(); s.ElapsedMs != 2000 {
		t.Errorf("ElapsedMs = %d, want 2000", s.ElapsedMs)
	}
}

func TestLimitHandlerStopsAndProcesses(t *testing.T) {
	h := newHarness(t, stt.NewFake("long visit", nil))
	owner := uuid.New()
	if err := h.orch.Start(context.Background(), &owner); err != nil {
		t.Fatal(err)
	}

	h.rec.onLimit()

	s := h.orch.Snapshot()
	if s.Status != StatusIdle || s.Transcript != "long visit" {
		t.Errorf("state = %+v", s)
	}
	if h.repo.NoteCount() != 1 {
		t.Errorf("NoteCount = %d, want 1", h.repo.NoteCount())
	}
}

func TestAutoStopAfterFifteenMinutes(t *testing.T) {
	ticks := make(chan time.Time)
	ctrl := recorder.NewController(&fileCapture{data: []byte("AUDIO")}, recorder.Options{
		Dir:   t.TempDir(),
		Ticks: func(time.Duration) (<-chan time.Time, func()) { return ticks, func() {} },
	})
	repo := storage.NewMemoryRepository()
	orch := NewOrchestrator(Options{
		Recorder:    ctrl,
		Transcriber: stt.NewFake("fifteen minutes of audio", nil),
		Generator:   &stubGenerator{title: "T", notes: "N"},
		Repository:  repo,
	})
	defer orch.Close()

	owner := uuid.New()
	if err := orch.Start(context.Background(), &owner); err != nil {
		t.Fatal(err)
	}

	n := int(recorder.DefaultMaxDuration / recorder.DefaultTickInterval)
	for i := 0; i < n; i++ {
		ticks <- time.Now()
	}

	deadline := time.Now().Add(2 * time.Second)
	for repo.NoteCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if repo.NoteCount() != 1 {
		t.Fatalf("NoteCount = %d, want 1 after auto-stop", repo.NoteCount())
	}
	for orch.Snapshot().Status != StatusIdle && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s := orch.Snapshot()
	if s.Status != StatusIdle {
		t.Fatalf("status = %s, want idle", s.Status)
	}
	if s.ElapsedMs != recorder.DefaultMaxDuration.Milliseconds() {
		t.Errorf("ElapsedMs = %d, want %d", s.ElapsedMs, recorder.DefaultMaxDuration.Milliseconds())
	}
	if ctrl.Active() {
		t.Error("controller still active")
	}
}
