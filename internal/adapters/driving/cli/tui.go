package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mufti/internal/adapters/driving/tui"
	"github.com/custodia-labs/mufti/internal/logger"
)

// runProgram runs the bubbletea program; tests replace it to avoid needing a terminal.
var runProgram = func(app *tui.App) error {
	return app.Run()
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal browser for Mufti.

Search fatwas in Arabic or English, page through results, browse the
category tree and read a fatwa's question and answer side by side.

Controls:
  ↑/k, ↓/j   Navigate
  Enter      Search / Open
  Tab        Switch Arabic / English
  ←/→        Previous / next page
  x          Drop the category filter
  Esc        Back
  ctrl+c     Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\nStack trace:\n%s\n", r, debug.Stack())
			err = fmt.Errorf("tui panic: %v", r)
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// The TUI is long-running, so pending oracle indexing keeps going in the background.
	if application != nil {
		if scheduler := application.Scheduler(); scheduler != nil {
			go func() {
				if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("scheduler stopped: %v", err)
				}
			}()
			defer func() {
				if err := scheduler.Stop(); err != nil {
					logger.Warn("scheduler stop: %v", err)
				}
			}()
		}
	}

	app, err := tui.NewApp(tui.NewPorts(searchService, categoryService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)
	if application != nil {
		app.WithPageSize(application.Current().Search.DefaultPageSize)
	}

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
