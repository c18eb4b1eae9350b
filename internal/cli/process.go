package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"medscribe/internal/output"
	"medscribe/internal/stt"
)

func NewProcessCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "process <file|->",
		Short: "Transcribe an existing audio file and generate notes",
		Long:  "Run an audio file through transcription and notes generation. Use - to read audio from stdin.",
		Args:  cobra.ExactArgs(1),
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

			audio, err := loadAudio(cmd, deps, args[0])
			if err != nil {
				return err
			}

			f.Processing()
			state, err := a.Sessions.Submit(cmd.Context(), user, audio)
			if err != nil {
				return err
			}
			f.SessionResult(state)
			return nil
		},
	}
}

func loadAudio(cmd *cobra.Command, deps *Dependencies, arg string) (*stt.Audio, error) {
	if arg == "-" {
		a, err := deps.App(cmd.Context())
		if err != nil {
			return nil, err
		}
		rec, err := a.Audio.Save("stdin.m4a", cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		return &stt.Audio{Path: rec.Path, Size: rec.Size}, nil
	}

	fi, err := os.Stat(arg)
	if err != nil {
		return nil, fmt.Errorf("reading audio file: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", arg)
	}
	return &stt.Audio{Path: arg, Size: fi.Size()}, nil
}
