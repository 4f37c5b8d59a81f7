package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-portfolio/internal/tui"
)

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand(ctx context.Context) *cobra.Command {
	var snapshot string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch TUI (Terminal User Interface)",
		Long:  `Launch the interactive portfolio: home, about, music player and contact form.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI(ctx, snapshot)
		},
	}
	cmd.Flags().StringVarP(&snapshot, "snapshot", "s", "", "read the playlist from an exported snapshot file")

	return cmd
}

func (app *Application) launchTUI(ctx context.Context, snapshot string) error {
	controller := app.newController(app.playlistSource(snapshot))
	defer controller.Close()

	tuiApp := tui.NewApp(app.Content, controller, app.Submitter)
	if err := tuiApp.Run(ctx); err != nil {
		// Завершение по сигналу не считается ошибкой
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("ошибка TUI: %w", err)
	}
	return nil
}
