package cli

import (
	"os/exec"

	"github.com/spf13/cobra"

	"medscribe/internal/config"
	"medscribe/internal/identity"
	"medscribe/internal/output"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(cmd.OutOrStdout())
			cfg := deps.Config
			ok := true

			if _, err := exec.LookPath("ffmpeg"); err != nil {
				f.SetupCheck("ffmpeg", false, "not found. Install with: brew install ffmpeg")
				ok = false
			} else {
				f.SetupCheck("ffmpeg", true, "installed")
			}
			f.SetupCheck("Audio input", cfg.FFmpegFormat != "" && cfg.FFmpegInput != "", cfg.FFmpegFormat+" "+cfg.FFmpegInput)

			if cfg.OpenAIKey != "" {
				f.SetupCheck("OpenAI API key", true, "configured")
			} else {
				f.SetupCheck("OpenAI API key", false, "not set. Set OPENAI_API_KEY or add openai_api_key to config")
				ok = false
			}

			switch cfg.DatabaseDriver {
			case config.DriverMemory:
				f.SetupCheck("Database", true, "in-memory (notes are lost on exit)")
			default:
				detail := cfg.DatabaseDriver
				if cfg.DatabaseURL == "" {
					detail += ": DATABASE_URL not set"
					ok = false
				}
				f.SetupCheck("Database", cfg.DatabaseURL != "", detail)
			}

			if id, err := identity.Parse(cfg.UserID); err != nil {
				f.SetupCheck("User ID", false, err.Error())
				ok = false
			} else if id == nil {
				f.SetupCheck("User ID", true, "not set; transcripts will not be saved")
			} else {
				f.SetupCheck("User ID", true, id.String())
			}

			f.SetupCheck("Audio directory", true, cfg.AudioDir)

			if ok {
				f.Success("\nAll prerequisites met. Ready to record!")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}
