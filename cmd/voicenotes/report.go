package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"voicenote-service/internal/analytics"
	"voicenote-service/internal/models"

	"github.com/spf13/cobra"
)

func newStatsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show note analytics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			d := analytics.Summarize(a.notes.List(), a.clock.Now(), a.location, a.locale)
			printDashboard(cmd.OutOrStdout(), d, a.locale)
			return nil
		},
	}
}

func printDashboard(w io.Writer, d analytics.Dashboard, locale models.Locale) {
	_, _ = fmt.Fprintf(w, "Total notes:  %d\n", d.TotalNotes)
	_, _ = fmt.Fprintf(w, "Today:        %d\n", d.TodayNotes)
	_, _ = fmt.Fprintf(w, "Urgent:       %d\n", d.UrgentNotes)
	if d.TopCategory != "" {
		_, _ = fmt.Fprintf(w, "Top category: %s\n", d.TopCategory.Label(locale))
	}

	if len(d.Categories) > 0 {
		_, _ = fmt.Fprintln(w, "\nCategories:")
		for _, c := range d.Categories {
			_, _ = fmt.Fprintf(w, "  %-12s %d\n", models.Category(c.Key).Label(locale), c.Count)
		}
	}
	if len(d.Days) > 0 {
		_, _ = fmt.Fprintln(w, "\nNotes per day:")
		for _, c := range d.Days {
			_, _ = fmt.Fprintf(w, "  %s  %d\n", c.Key, c.Count)
		}
	}
	if len(d.TopKeywords) > 0 {
		_, _ = fmt.Fprintln(w, "\nTop keywords:")
		for _, c := range d.TopKeywords {
			_, _ = fmt.Fprintf(w, "  #%s  %d\n", c.Key, c.Count)
		}
	}

	_, _ = fmt.Fprintln(w)
	for _, line := range d.Insights {
		_, _ = fmt.Fprintf(w, "* %s\n", line)
	}
}

func newReportCmd(configPath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report <daily|weekly|monthly>",
		Short: "Generate an AI report over recent notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := models.ParsePeriod(args[0])
			if err != nil {
				return err
			}

			ctx, stop := interruptible(cmd.Context())
			defer stop()

			a, err := loadApp(ctx, *configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()

			a.reports.SelectPeriod(period)
			report, err := a.reports.Generate(ctx, period)
			if err != nil {
				return err
			}

			if out == "" {
				return a.exporter.WriteReport(cmd.OutOrStdout(), report)
			}
			path := out
			if info, err := os.Stat(out); err == nil && info.IsDir() {
				path = filepath.Join(out, a.exporter.ReportFilename(report.Period, report.GeneratedAt))
			}
			if err := writeFile(path, func(w io.Writer) error {
				return a.exporter.WriteReport(w, report)
			}); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the report document to this file or directory instead of stdout")
	return cmd
}
