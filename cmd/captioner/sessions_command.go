package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"captioner/internal/journal"
	"captioner/internal/services"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var showID string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded live sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg.Paths.JournalPath)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "sessions", "open journal", cfg.Paths.JournalPath, err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if showID != "" {
				finals, err := store.Finals(cmd.Context(), showID)
				if err != nil {
					return err
				}
				if len(finals) == 0 {
					fmt.Fprintf(out, "No final results recorded for %s\n", showID)
					return nil
				}
				rows := make([][]string, 0, len(finals))
				for _, f := range finals {
					rows = append(rows, []string{strconv.Itoa(f.Seq), formatTime(f.RecordedAt), f.Text})
				}
				fmt.Fprintln(out, renderTable([]string{"#", "Recorded", "Text"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
				return nil
			}

			sessions, err := store.ListSessions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No live sessions recorded")
				return nil
			}
			fmt.Fprintln(out, renderSessions(sessions))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of sessions to list (0 for all)")
	cmd.Flags().StringVar(&showID, "show", "", "Print the final results of one session")
	return cmd
}

func renderSessions(sessions []journal.Session) string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		reason := s.EndReason
		if s.Running() {
			reason = "running"
		}
		rows = append(rows, []string{
			s.ID,
			s.Language,
			formatTime(s.StartedAt),
			formatTime(s.EndedAt),
			reason,
			strconv.Itoa(s.FinalCount),
			truncate(s.Transcript, 48),
		})
	}
	headers := []string{"Session", "Language", "Started", "Ended", "Result", "Finals", "Transcript"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
	return renderTable(headers, rows, aligns)
}
