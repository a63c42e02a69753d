package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docfill/cmd/docfill/chat"
	"docfill/cmd/docfill/ui"
	"docfill/internal/config"
	"docfill/internal/logging"
	"docfill/internal/remote"
	"docfill/internal/session"
)

// runInteractive launches the terminal UI.
func runInteractive(cmd *cobra.Command, initialFile string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return fmt.Errorf("failed to resolve workspace: %w", err)
	}
	if err := logging.Initialize(ws, cfg.Logging.ToLogging()); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.CloseAll()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Logging settings follow the config file while the UI runs.
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	if w, err := config.Watch(ctx, path, func(c *config.Config) {
		if err := logging.Reconfigure(c.Logging.ToLogging()); err != nil {
			logging.ConfigWarn("apply logging config: %v", err)
		}
	}); err != nil {
		logging.BootWarn("config watcher disabled: %v", err)
	} else {
		defer w.Stop()
	}

	client := remote.New(remote.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.GetTimeout()})
	defer client.Close()
	logging.Boot("assistant service: %s", client.BaseURL())

	store := session.NewStore(client,
		session.WithPreviewDelay(cfg.GetPreviewDelay()),
		session.WithDownloadDir(ws),
	)

	model := chat.New(store, chat.Options{
		Styles:       ui.NewStyles(ui.ThemeFor(cfg.UI.DarkMode)),
		ProgressRows: cfg.UI.ProgressRows,
		DownloadDir:  ws,
		StartDir:     ws,
		InitialFile:  initialFile,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	_, err = tea.NewProgram(model, opts...).Run()
	if err != nil && err != tea.ErrProgramKilled {
		return err
	}
	logging.Boot("session ended")
	return nil
}
