package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and job counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(out, line)
			}
			running := statusError
			runningMsg := "stopped"
			if status.Running {
				running = statusOK
				runningMsg = fmt.Sprintf("pid %d", status.PID)
			}
			fmt.Fprintln(out, renderStatusLine("Running", running, runningMsg, colorize))
			fmt.Fprintln(out, renderStatusLine("Job database", statusInfo, status.JobDBPath, colorize))
			fmt.Fprintln(out, renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize))

			for _, line := range renderSectionHeader("Jobs", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Total", statusInfo, fmt.Sprintf("%d", status.Jobs.Total), colorize))
			fmt.Fprintln(out, renderStatusLine("Pending", statusInfo, fmt.Sprintf("%d", status.Jobs.Pending), colorize))
			fmt.Fprintln(out, renderStatusLine("Processing", statusInfo, fmt.Sprintf("%d", status.Jobs.Processing), colorize))
			fmt.Fprintln(out, renderStatusLine("Completed", statusOK, fmt.Sprintf("%d", status.Jobs.Completed), colorize))
			failedKind := statusOK
			if status.Jobs.Failed > 0 {
				failedKind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Failed", failedKind, fmt.Sprintf("%d", status.Jobs.Failed), colorize))

			for _, line := range renderSectionHeader("Tools", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, dep := range status.Dependencies {
				kind := statusOK
				message := dep.Command
				if !dep.Available {
					kind = statusError
					if dep.Optional {
						kind = statusWarn
					}
					message = dep.Detail
				}
				fmt.Fprintln(out, renderStatusLine(dep.Name, kind, message, colorize))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
