// Package session sequences one recording from capture to saved note.
//
// State transitions are pure functions on State; Orchestrator applies them
// under a mutex and performs the side effects between them.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"medscribe/internal/recorder"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusRecording  Status = "recording"
	StatusProcessing Status = "processing"
)

// DefaultErrorMessage is displayed when a failure carries no message.
const DefaultErrorMessage = "Error processing recording. Please try again."

var (
	ErrBusy         = errors.New("a recording session is already in progress")
	ErrNotRecording = errors.New("no recording in progress")
)

// State is the observable session. Notes doubles as the error display.
type State struct {
	Status     Status `json:"status"`
	ElapsedMs  int64  `json:"elapsed_ms"`
	Transcript string `json:"transcript,omitempty"`
	Title      string `json:"title,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Error      string `json:"error,omitempty"`
	Busy       bool   `json:"busy"`

	owner *uuid.UUID
}

func (s State) idle() bool { return s.Status == StatusIdle || s.Status == "" }

// Owner is the identity captured when the session began, nil when absent.
func (s State) Owner() *uuid.UUID { return s.owner }

func (s State) MarshalJSON() ([]byte, error) {
	type plain State
	return json.Marshal(struct {
		plain
		Elapsed string `json:"elapsed"`
	}{plain(s), FormatElapsed(s.ElapsedMs)})
}

// Begin starts a recording session. Only an idle session can begin.
func Begin(s State, owner *uuid.UUID) (State, error) {
	if !s.idle() {
		return s, ErrBusy
	}
	return State{Status: StatusRecording, owner: owner}, nil
}

// Submit starts processing an already captured file.
func Submit(s State, owner *uuid.UUID) (State, error) {
	if !s.idle() {
		return s, ErrBusy
	}
	return State{Status: StatusProcessing, Busy: true, owner: owner}, nil
}

// BeginProcessing moves a recording session to processing.
func BeginProcessing(s State) (State, error) {
	switch s.Status {
	case StatusRecording:
	case StatusProcessing:
		return s, ErrBusy
	default:
		return s, ErrNotRecording
	}
	s.Status = StatusProcessing
	s.Busy = true
	s.Notes = ""
	s.Error = ""
	return s, nil
}

// Tick records elapsed time. It never decreases and never exceeds limit;
// a non-positive limit means recorder.DefaultMaxDuration.
func Tick(s State, elapsed, limit time.Duration) State {
	if s.Status != StatusRecording {
		return s
	}
	if limit <= 0 {
		limit = recorder.DefaultMaxDuration
	}
	if elapsed > limit {
		elapsed = limit
	}
	if ms := elapsed.Milliseconds(); ms > s.ElapsedMs {
		s.ElapsedMs = ms
	}
	return s
}

func Transcribed(s State, transcript string) State {
	if s.Status == StatusProcessing {
		s.Transcript = transcript
	}
	return s
}

// Complete ends processing; the transcript is kept for display.
func Complete(s State, title, notes string) State {
	s.Status = StatusIdle
	s.Busy = false
	s.Title = title
	s.Notes = notes
	s.Error = ""
	return s
}

// Fail ends processing and shows the error in the notes area.
func Fail(s State, err error) State {
	msg := ErrorMessage(err)
	s.Status = StatusIdle
	s.Busy = false
	s.Notes = msg
	s.Error = msg
	return s
}

// Abort returns a session whose capture never started to idle.
func Abort(State) State {
	return State{Status: StatusIdle}
}

func Reset(State) State {
	return State{Status: StatusIdle}
}

func ErrorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return DefaultErrorMessage
	}
	return err.Error()
}

// FormatElapsed renders milliseconds as m:ss.
func FormatElapsed(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%d:%02d", ms/60000, (ms%60000)/1000)
}
