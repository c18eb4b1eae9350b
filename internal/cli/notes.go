package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"medscribe/internal/output"
)

func NewNotesCmd(deps *Dependencies) *cobra.Command {
	var asJSON bool
	var full bool

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List saved notes, newest first",
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
				f.Info("No user configured. Pass --user or set user_id in the config.")
				return nil
			}

			notes, err := a.Repository.ListNotes(cmd.Context(), *user)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(notes)
			}

			if len(notes) == 0 {
				f.Info("No notes found")
				return nil
			}
			f.NoteListHeader(len(notes))
			for _, n := range notes {
				if full {
					f.Note(n)
					continue
				}
				f.NoteListItem(n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print notes as JSON")
	cmd.Flags().BoolVar(&full, "full", false, "Print title and full notes for each entry")

	return cmd
}

func NewTopicsCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List topics, newest first",
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
				f.Info("No user configured. Pass --user or set user_id in the config.")
				return nil
			}

			topics, err := a.Repository.ListTopics(cmd.Context(), *user)
			if err != nil {
				return err
			}
			if len(topics) == 0 {
				f.Info("No topics found")
				return nil
			}
			f.TopicListHeader(len(topics))
			for _, t := range topics {
				f.TopicListItem(t)
			}
			return nil
		},
	}
}
