package output

import (
	"fmt"
	"io"
	"strings"

	"medscribe/internal/model"
	"medscribe/internal/session"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) RecordingStarted(maxMs int64) {
	fmt.Fprintf(f.w, "🎙️  Recording... press Enter or Ctrl+C to stop (max %s)\n", session.FormatElapsed(maxMs))
}

// RecordingTick rewrites the current line with the elapsed time.
func (f *Formatter) RecordingTick(elapsedMs int64) {
	fmt.Fprintf(f.w, "\r⏺️  %s", session.FormatElapsed(elapsedMs))
}

func (f *Formatter) RecordingStopped(elapsedMs int64) {
	fmt.Fprintf(f.w, "\n⏹️  Recording stopped (%s)\n", session.FormatElapsed(elapsedMs))
}

func (f *Formatter) Processing() {
	fmt.Fprintf(f.w, "📝 Processing audio and generating notes...\n")
}

// SessionResult prints the notes area followed by the original transcript.
func (f *Formatter) SessionResult(s session.State) {
	if s.Error != "" {
		f.Error(s.Error)
		return
	}
	if s.Title != "" {
		fmt.Fprintf(f.w, "\n# %s\n", s.Title)
	}
	if s.Notes != "" {
		fmt.Fprintf(f.w, "\n%s\n", s.Notes)
	}
	if s.Transcript != "" {
		fmt.Fprintf(f.w, "\nOriginal Transcript:\n%s\n", s.Transcript)
	}
	if s.Notes == "" && s.Transcript == "" {
		f.Info("Your generated notes will appear here after recording.")
	}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) NoteListHeader(count int) {
	fmt.Fprintf(f.w, "📁 Notes (%d):\n\n", count)
}

func (f *Formatter) NoteListItem(n model.NoteRecord) {
	fmt.Fprintf(f.w, "  %s  %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Title)
	if p := n.Preview(); p != "" {
		fmt.Fprintf(f.w, "      %s\n", p)
	}
}

// Note prints a single note in full, as copied to the clipboard.
func (f *Formatter) Note(n model.NoteRecord) {
	fmt.Fprintf(f.w, "%s\n", strings.TrimRight(n.ClipboardText(), "\n"))
}

func (f *Formatter) TopicListHeader(count int) {
	fmt.Fprintf(f.w, "🏷️  Topics (%d):\n\n", count)
}

func (f *Formatter) TopicListItem(t model.TopicRecord) {
	fmt.Fprintf(f.w, "  %s  %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04"), t.Topic)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}
