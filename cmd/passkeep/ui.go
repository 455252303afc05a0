package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/benaskins/passkeep/internal/config"
	"github.com/benaskins/passkeep/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive form",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The form owns the terminal, so logs go to a file instead.
		logPath := filepath.Join(config.Home(), "ui.log")
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			return err
		}
		logFile, err := tea.LogToFile(logPath, "passkeep")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer logFile.Close()
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level})))

		e, err := openEnv("ui")
		if err != nil {
			return err
		}
		defer e.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		model := tui.New(e.manager(), e.store, e.cfg.ConfirmSaveEnabled())
		return tui.Run(ctx, model, e.file.Path())
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
