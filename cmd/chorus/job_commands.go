package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"chorus/internal/api"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var artist, title string
	var includeVocals bool
	var vocalsVolume float64

	cmd := &cobra.Command{
		Use:   "submit <url>",
		Short: "Submit a source URL for karaoke generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			req := api.SubmitRequest{
				SourceURL: args[0],
				Artist:    artist,
				Title:     title,
			}
			if cmd.Flags().Changed("include-vocals") {
				req.IncludeBackgroundVocals = &includeVocals
			}
			if cmd.Flags().Changed("vocals-volume") {
				req.VocalsVolume = &vocalsVolume
			}

			job, err := client.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %d accepted (%s)\n", job.ID, job.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&artist, "artist", "", "Artist hint for lyric lookup")
	cmd.Flags().StringVar(&title, "title", "", "Title hint for lyric lookup")
	cmd.Flags().BoolVar(&includeVocals, "include-vocals", false, "Mix the original vocals into the result at low volume")
	cmd.Flags().Float64Var(&vocalsVolume, "vocals-volume", 0.3, "Background vocal volume between 0 and 1")

	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			job, err := client.Job(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, job)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %d\n", job.ID)
			fmt.Fprintf(out, "  Source:   %s\n", job.SourceURL)
			fmt.Fprintf(out, "  Status:   %s\n", job.Status)
			fmt.Fprintf(out, "  Progress: %d%%\n", job.Progress)
			if job.ErrorMessage != "" {
				fmt.Fprintf(out, "  Error:    %s\n", job.ErrorMessage)
			}
			if job.DownloadURL != "" {
				fmt.Fprintf(out, "  Download: %s\n", job.DownloadURL)
			}
			if job.CreatedAt != "" {
				fmt.Fprintf(out, "  Created:  %s\n", job.CreatedAt)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var page, pageSize int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := client.List(cmd.Context(), page, pageSize)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			if len(resp.Jobs) == 0 {
				fmt.Fprintln(out, "No jobs.")
				return nil
			}

			rows := make([][]string, 0, len(resp.Jobs))
			for _, job := range resp.Jobs {
				rows = append(rows, []string{
					strconv.FormatInt(job.ID, 10),
					job.Status,
					fmt.Sprintf("%d%%", job.Progress),
					truncate(job.SourceURL, 60),
					truncate(job.ErrorMessage, 40),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Status", "Progress", "Source", "Error"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "Page %d of %d (%d jobs)\n", resp.Page, resp.TotalPages, resp.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", api.DefaultPageSize, "Jobs per page")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var destDir string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a finished karaoke video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			path, err := client.Download(cmd.Context(), id, destDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&destDir, "output", "o", "", "Destination directory (default current)")
	return cmd
}

func parseJobID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid job id %q", raw)
	}
	return id, nil
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}

func writeJSON(cmd *cobra.Command, payload any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
