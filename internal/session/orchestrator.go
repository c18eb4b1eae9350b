package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"medscribe/internal/fingerprint"
	"medscribe/internal/model"
	"medscribe/internal/recorder"
	"medscribe/internal/repository"
	"medscribe/internal/stt"
)

// Recorder is the capture side of a session. *recorder.Controller
// satisfies it.
type Recorder interface {
	Start() error
	Stop() (*recorder.Asset, error)
	Elapsed() time.Duration
	MaxDuration() time.Duration
	OnTick(func(time.Duration))
	OnLimit(func())
	Close() error
}

// NoteGenerator produces a title and notes. Both methods fall back to fixed
// strings instead of failing.
type NoteGenerator interface {
	GenerateTitle(ctx context.Context, transcript string) string
	GenerateNotes(ctx context.Context, transcript string) string
}

type Options struct {
	Recorder    Recorder
	Transcriber stt.Provider
	Generator   NoteGenerator
	Repository  repository.Repository
	Now         func() time.Time
}

// Orchestrator runs at most one session at a time.
type Orchestrator struct {
	rec  Recorder
	stt  stt.Provider
	gen  NoteGenerator
	repo repository.Repository
	now  func() time.Time
	max  time.Duration

	mu    sync.Mutex
	state State
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	o := &Orchestrator{
		rec:   opts.Recorder,
		stt:   opts.Transcriber,
		gen:   opts.Generator,
		repo:  opts.Repository,
		now:   opts.Now,
		state: Reset(State{}),
	}
	if o.rec != nil {
		o.max = o.rec.MaxDuration()
		o.rec.OnTick(o.tick)
		o.rec.OnLimit(o.limitReached)
	}
	return o
}

// Start begins recording for owner, which may be nil.
func (o *Orchestrator) Start(ctx context.Context, owner *uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	next, err := Begin(o.state, owner)
	if err != nil {
		return err
	}
	if o.rec == nil {
		return errors.New("no recorder configured")
	}
	if err := o.rec.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start recording")
		o.state = Abort(next)
		return err
	}
	o.state = next
	return nil
}

// Stop ends the recording and processes it. It returns once the session is
// idle again. Stopping an idle session is a no-op.
func (o *Orchestrator) Stop(ctx context.Context) (State, error) {
	o.mu.Lock()
	if o.state.idle() {
		s := o.state
		o.mu.Unlock()
		return s, nil
	}
	next, err := BeginProcessing(o.state)
	if err != nil {
		o.mu.Unlock()
		return State{}, err
	}
	o.state = next
	o.mu.Unlock()

	asset, err := o.rec.Stop()
	if err != nil {
		return o.set(Fail(next, err)), nil
	}
	if asset == nil {
		return o.set(Reset(next)), nil
	}
	log.Info().Str("uri", asset.Path).Int64("size", asset.Size).Msg("recording uri")

	audio := &stt.Audio{Path: asset.Path, Size: asset.Size}
	return o.process(context.WithoutCancel(ctx), next.owner, audio), nil
}

// Submit processes an audio file captured elsewhere, e.g. an upload.
func (o *Orchestrator) Submit(ctx context.Context, owner *uuid.UUID, audio *stt.Audio) (State, error) {
	o.mu.Lock()
	next, err := Submit(o.state, owner)
	if err != nil {
		o.mu.Unlock()
		return State{}, err
	}
	o.state = next
	o.mu.Unlock()

	return o.process(context.WithoutCancel(ctx), owner, audio), nil
}

// Snapshot returns the current state with live elapsed time.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.state
	if s.Status == StatusRecording && o.rec != nil {
		s = Tick(s, o.rec.Elapsed(), o.max)
	}
	return s
}

// Close releases the recorder. An active recording is discarded.
func (o *Orchestrator) Close() error {
	if o.rec == nil {
		return nil
	}
	return o.rec.Close()
}

// process transcribes, then for an owner generates and persists. Only
// transcription errors abort; generation and persistence degrade.
func (o *Orchestrator) process(ctx context.Context, owner *uuid.UUID, audio *stt.Audio) State {
	s := o.current()

	res, err := o.stt.Transcribe(ctx, audio)
	if err != nil {
		log.Error().Err(err).Msg("failed to process recording")
		return o.set(Fail(s, err))
	}
	s = o.set(Transcribed(s, res.Transcript))
	log.Info().Str("provider", res.Provider).Dur("elapsed", res.Duration).Msg("transcription")

	if owner == nil {
		return o.set(Complete(s, "", ""))
	}

	title := o.gen.GenerateTitle(ctx, res.Transcript)
	notes := o.gen.GenerateNotes(ctx, res.Transcript)
	s.Notes = notes
	s = o.set(s)

	note := &model.NoteRecord{
		ID:           uuid.New(),
		UserID:       *owner,
		Title:        title,
		Content:      res.Transcript,
		MedicalNotes: notes,
		AudioHash:    audioHash(audio),
		CreatedAt:    o.now(),
	}
	o.save(ctx, note)

	return o.set(Complete(s, title, notes))
}

func (o *Orchestrator) save(ctx context.Context, note *model.NoteRecord) {
	if o.repo == nil {
		return
	}
	err := o.repo.InsertNote(ctx, note)
	switch {
	case err == nil:
		log.Info().Str("id", note.ID.String()).Str("title", note.Title).Msg("transcription saved")
	case errors.Is(err, repository.ErrDuplicate):
		log.Info().Str("id", note.ID.String()).Msg("transcription already saved, skipping")
	default:
		log.Error().Err(err).Msg("error saving transcription")
	}
}

func audioHash(audio *stt.Audio) string {
	if audio.Reader != nil || audio.Path == "" {
		return ""
	}
	h, err := fingerprint.FromFile(audio.Path)
	if err != nil {
		log.Warn().Err(err).Msg("could not fingerprint audio")
		return ""
	}
	return h
}

func (o *Orchestrator) tick(elapsed time.Duration) {
	o.mu.Lock()
	o.state = Tick(o.state, elapsed, o.max)
	o.mu.Unlock()
}

func (o *Orchestrator) limitReached() {
	log.Info().Msg("maximum recording time reached, stopping")
	if _, err := o.Stop(context.Background()); err != nil {
		log.Error().Err(err).Msg("automatic stop failed")
	}
}

func (o *Orchestrator) current() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) set(s State) State {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	return s
}
