package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"voicenote-service/internal/export"
	"voicenote-service/internal/models"
	"voicenote-service/internal/recorder"

	"github.com/spf13/cobra"
)

func newRecordCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "record <audio-file>",
		Short: "Turn an audio file into a voice note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := interruptible(cmd.Context())
			defer stop()

			a, err := loadApp(ctx, *configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()

			src := &recorder.FileSource{Path: args[0], ChunkSize: a.cfg.Recorder.ChunkSize}
			if _, err := a.recorder.Start(ctx, src); err != nil {
				return err
			}
			if err := a.recorder.WaitCaptured(ctx); err != nil {
				_ = a.recorder.Cancel()
				return err
			}

			note, err := a.recorder.Stop(ctx)
			if note != nil {
				printNote(cmd.OutOrStdout(), *note, a)
			}
			return err
		},
	}
}

func newNotesCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List, search, edit, delete and export notes",
	}
	cmd.AddCommand(newNotesListCmd(configPath))
	cmd.AddCommand(newNotesSearchCmd(configPath))
	cmd.AddCommand(newNotesShowCmd(configPath))
	cmd.AddCommand(newNotesEditCmd(configPath))
	cmd.AddCommand(newNotesDeleteCmd(configPath))
	cmd.AddCommand(newNotesExportCmd(configPath))
	return cmd
}

func newNotesListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			printNoteList(cmd.OutOrStdout(), a.notes.List(), a)
			return nil
		},
	}
}

func newNotesSearchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search notes by text, category or keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			printNoteList(cmd.OutOrStdout(), a.notes.Search(args[0]), a)
			return nil
		},
	}
}

func newNotesShowCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			note, err := a.notes.Get(args[0])
			if err != nil {
				return err
			}
			printNote(cmd.OutOrStdout(), note, a)
			return nil
		},
	}
}

func newNotesEditCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text>",
		Short: "Replace the enhanced text of a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			note, err := a.notes.Update(cmd.Context(), args[0], models.NotePatch{EnhancedText: &args[1]})
			if err != nil {
				return err
			}
			printNote(cmd.OutOrStdout(), note, a)
			return nil
		},
	}
}

func newNotesDeleteCmd(configPath *string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.notes.Get(args[0]); err != nil {
				return err
			}
			if !yes {
				question := models.Message(a.locale, models.MsgDeleteConfirmation)
				if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), question) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
					return nil
				}
			}

			if err := a.notes.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirm asks a yes/no question; anything but y/yes is a no
func confirm(in io.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func newNotesExportCmd(configPath *string) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Export one note as a document, or all notes as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 0 {
				path := filepath.Join(dir, export.JSONFilename)
				if err := writeFile(path, func(w io.Writer) error {
					return export.WriteJSON(w, a.notes.List())
				}); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return nil
			}

			note, err := a.notes.Get(args[0])
			if err != nil {
				return err
			}
			path := filepath.Join(dir, export.NoteFilename(note))
			if err := writeFile(path, func(w io.Writer) error {
				return a.exporter.WriteNote(w, note, a.clock.Now())
			}); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "output directory")
	return cmd
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printNoteList(w io.Writer, notes []models.VoiceNote, a *app) {
	if len(notes) == 0 {
		_, _ = fmt.Fprintln(w, "no notes")
		return
	}
	for _, n := range notes {
		flag := ""
		if n.IsUrgent {
			flag = " !"
		}
		_, _ = fmt.Fprintf(w, "%s  %s  %-10s%s  %s\n",
			n.ID,
			n.CreatedAt().In(a.location).Format("2006-01-02 15:04"),
			n.Category.Label(a.locale),
			flag,
			n.Summary)
	}
}

func printNote(w io.Writer, n models.VoiceNote, a *app) {
	_, _ = fmt.Fprintf(w, "ID:       %s\n", n.ID)
	_, _ = fmt.Fprintf(w, "Date:     %s\n", n.CreatedAt().In(a.location).Format(time.RFC1123))
	_, _ = fmt.Fprintf(w, "Category: %s\n", n.Category.Label(a.locale))
	_, _ = fmt.Fprintf(w, "Urgent:   %t\n", n.IsUrgent)
	_, _ = fmt.Fprintf(w, "Keywords: %s\n", strings.Join(n.Keywords, ", "))
	_, _ = fmt.Fprintf(w, "Summary:  %s\n\n%s\n", n.Summary, n.EnhancedText)
}

// interruptible is the context used by commands that talk to the AI provider
func interruptible(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
