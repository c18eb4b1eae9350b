package cli

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"medscribe/internal/output"
	"medscribe/internal/recorder"
	"medscribe/internal/session"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Record from the microphone, then transcribe and generate notes",
		Long:  "Record audio from the configured ffmpeg input. Press Enter or Ctrl+C to stop; recording stops automatically after 15 minutes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(cmd.OutOrStdout())

			a, err := deps.App(cmd.Context())
			if err != nil {
				return err
			}
			user, err := owner(cmd, deps.Config)
			if err != nil {
				return err
			}
			if user == nil {
				f.Warning("No user configured; the transcript will not be saved.")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := a.Sessions.Start(ctx, user); err != nil {
				return err
			}
			f.RecordingStarted(recorder.DefaultMaxDuration.Milliseconds())

			enter := make(chan struct{})
			go func() {
				bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				close(enter)
			}()

			state := waitForStop(ctx, a.Sessions, enter, f)
			f.RecordingStopped(state.ElapsedMs)
			f.Processing()

			final, err := a.Sessions.Stop(context.WithoutCancel(ctx))
			if errors.Is(err, session.ErrBusy) {
				// the time limit already stopped it; wait for processing
				final = waitIdle(a.Sessions)
			} else if err != nil {
				return err
			}

			f.SessionResult(final)
			return nil
		},
	}
}

// waitForStop returns when the user asks to stop or the session leaves the
// recording state on its own.
func waitForStop(ctx context.Context, s *session.Orchestrator, enter <-chan struct{}, f *output.Formatter) session.State {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return s.Snapshot()
		case <-enter:
			return s.Snapshot()
		case <-ticker.C:
			snap := s.Snapshot()
			if snap.Status != session.StatusRecording {
				return snap
			}
			f.RecordingTick(snap.ElapsedMs)
		}
	}
}

func waitIdle(s *session.Orchestrator) session.State {
	for {
		snap := s.Snapshot()
		if snap.Status == session.StatusIdle {
			return snap
		}
		time.Sleep(200 * time.Millisecond)
	}
}
