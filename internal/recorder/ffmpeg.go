package recorder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const stopGrace = 5 * time.Second

// FFmpegCapture records mono 16 kHz AAC by running ffmpeg in the background.
type FFmpegCapture struct {
	Format string // ffmpeg -f value, e.g. avfoundation or pulse
	Input  string // ffmpeg -i value, e.g. ":default"

	mu    sync.Mutex
	cmd   *exec.Cmd
	stdin io.WriteCloser
	logf  *os.File
	done  chan error
}

func NewFFmpegCapture(format, input string) *FFmpegCapture {
	return &FFmpegCapture{Format: format, Input: input}
}

func (f *FFmpegCapture) RequestPermission() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found. Install with: brew install ffmpeg (macOS) or apt install ffmpeg (Linux)")
	}
	if f.Format == "" || f.Input == "" {
		return fmt.Errorf("no audio input configured. Set ffmpeg_format and ffmpeg_input in the config file")
	}
	return nil
}

func (f *FFmpegCapture) args(path string) []string {
	return []string{
		"-hide_banner",
		"-f", f.Format,
		"-i", f.Input,
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "aac",
		"-y",
		path,
	}
}

func (f *FFmpegCapture) Start(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cmd != nil {
		return ErrAlreadyRecording
	}

	cmd := exec.Command("ffmpeg", f.args(path)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("opening ffmpeg stdin: %w", err)
	}

	// stderr goes next to the recording for diagnostics
	logf, err := os.Create(path + ".ffmpeg.log")
	if err == nil {
		cmd.Stderr = logf
	}

	if err := cmd.Start(); err != nil {
		if logf != nil {
			logf.Close()
		}
		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	f.cmd, f.stdin, f.logf, f.done = cmd, stdin, logf, done
	log.Debug().Int("pid", cmd.Process.Pid).Str("path", path).Msg("ffmpeg_started")
	return nil
}

func (f *FFmpegCapture) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cmd == nil {
		return nil
	}
	defer func() {
		if f.logf != nil {
			f.logf.Close()
		}
		f.cmd, f.stdin, f.logf, f.done = nil, nil, nil, nil
	}()

	// "q" asks ffmpeg to flush and write the container trailer.
	if _, err := io.WriteString(f.stdin, "q"); err != nil {
		log.Warn().Err(err).Msg("ffmpeg_quit_write_failed")
	}
	f.stdin.Close()

	var err error
	select {
	case err = <-f.done:
	case <-time.After(stopGrace):
		log.Warn().Dur("grace", stopGrace).Msg("ffmpeg_kill")
		_ = f.cmd.Process.Kill()
		err = <-f.done
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("waiting for ffmpeg: %w", err)
	}
	if exitErr != nil {
		log.Debug().Int("code", exitErr.ExitCode()).Msg("ffmpeg_exit")
	}
	return nil
}
