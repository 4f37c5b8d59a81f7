package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-portfolio/internal/config"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "portfolio",
		Short:         "Terminal portfolio with a music player",
		Long:          `Terminal portfolio: about, technologies, contact form and a playlist player backed by a remote API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Интерфейс занимает терминал, поэтому логи уходят в файл
			return app.setup(cmd.Name() == "tui")
		},
	}

	rootCmd.PersistentFlags().StringVarP(&app.ConfigPath, "config", "c", config.DefaultPath, "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "enable debug logging")

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createPlaylistCommand(ctx))
	rootCmd.AddCommand(app.createPlayCommand(ctx))
	rootCmd.AddCommand(app.createExportCommand(ctx))
	rootCmd.AddCommand(app.createAboutCommand())
	rootCmd.AddCommand(app.createContactCommand(ctx))
	rootCmd.AddCommand(app.createTUICommand(ctx))

	return rootCmd
}
