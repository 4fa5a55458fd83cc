package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"captioner/internal/deps"
	"captioner/internal/preflight"
	"captioner/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, directories, and services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			writeLines(out, dependencyLines(statuses, colorize))
			fmt.Fprintln(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			writeLines(out, preflightLines(results, colorize))

			missing := deps.MissingRequired(statuses)
			failed := preflight.Failed(results)
			if len(missing) > 0 || len(failed) > 0 {
				return services.Wrap(services.ErrExternalTool, "doctor", "check",
					fmt.Sprintf("%d missing tool(s), %d failed check(s)", len(missing), len(failed)), nil)
			}
			return nil
		},
	}
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := renderSectionHeader("Dependencies", colorize)
	for _, s := range statuses {
		switch {
		case s.Available:
			lines = append(lines, renderStatusLine(s.Name, statusOK, "Ready ("+s.Path+")", colorize))
		case s.Optional:
			lines = append(lines, renderStatusLine(s.Name, statusWarn, s.Detail, colorize))
		default:
			detail := s.Detail
			if s.Description != "" {
				detail += "; " + s.Description
			}
			lines = append(lines, renderStatusLine(s.Name, statusError, detail, colorize))
		}
	}
	return lines
}

func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := renderSectionHeader("Checks", colorize)
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines
}

func writeLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}
