package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"medscribe/internal/app"
	"medscribe/internal/config"
	"medscribe/internal/identity"
	"medscribe/internal/version"
)

type Dependencies struct {
	Config *config.Config

	once sync.Once
	app  *app.App
	err  error
}

// App validates the configuration and builds the application on first use,
// so commands like doctor run without an API key or database.
func (d *Dependencies) App(ctx context.Context) (*app.App, error) {
	d.once.Do(func() {
		if d.app != nil {
			return
		}
		if err := d.Config.Validate(); err != nil {
			d.err = err
			return
		}
		d.app, d.err = app.New(ctx, d.Config)
	})
	return d.app, d.err
}

// Close releases the application if it was built.
func (d *Dependencies) Close() error {
	if d.app == nil {
		return nil
	}
	return d.app.Close()
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "medscribe",
		Short:         "Record audio and turn it into structured notes",
		Long:          "A CLI tool that records audio, transcribes it with OpenAI Whisper, and generates a title and organized notes with GPT-4o.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.PersistentFlags().String("user", "", "User ID (uuid) that owns saved notes; defaults to user_id from config")

	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewProcessCmd(deps))
	rootCmd.AddCommand(NewNotesCmd(deps))
	rootCmd.AddCommand(NewTopicsCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}

// owner resolves --user, falling back to the configured user id.
func owner(cmd *cobra.Command, cfg *config.Config) (*uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("user")
	if raw == "" {
		raw = cfg.UserID
	}
	id, err := identity.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("--user: %w", err)
	}
	return id, nil
}
