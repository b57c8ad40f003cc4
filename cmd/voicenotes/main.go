package main

import (
	"errors"
	"fmt"
	"os"

	"voicenote-service/internal/models"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ue models.UserError
		if errors.As(err, &ue) {
			_, _ = fmt.Fprintln(os.Stderr, ue.UserMessage())
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "voicenotes",
		Short:         "Voice notes with AI transcription, analytics and reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to the YAML config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newRecordCmd(&configPath))
	root.AddCommand(newNotesCmd(&configPath))
	root.AddCommand(newStatsCmd(&configPath))
	root.AddCommand(newReportCmd(&configPath))
	root.AddCommand(newLoginCmd(&configPath))
	root.AddCommand(newLogoutCmd(&configPath))
	root.AddCommand(newWhoamiCmd(&configPath))
	return root
}
