package main

import (
	"context"

	"github.com/spf13/cobra"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cuewave",
		Short: "A two-deck audio mixer for the terminal",
		Long: `A two-deck audio mixer with fades and crossfades.
Tracks can be local files, http(s) URLs or objects in an S3 bucket.`,
		SilenceUsage: true,
		// Журнал пишется только в файл
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return app.initLogger(false)
		},
	}

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createAddCommand(ctx))
	rootCmd.AddCommand(app.createImportCommand(ctx))
	rootCmd.AddCommand(app.createRemoveCommand())
	rootCmd.AddCommand(app.createListCommand())
	rootCmd.AddCommand(app.createPlayCommand(ctx))
	rootCmd.AddCommand(app.createMixCommand(ctx))

	return rootCmd
}
