package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/4lbertR/CueWave/internal/config"
	"github.com/4lbertR/CueWave/internal/tui"
)

// createMixCommand создает команду mix с привязкой к экземпляру приложения
func (app *Application) createMixCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "mix",
		Short: "Launch the two-deck mixer console",
		Long: `Launch the interactive terminal console with both deck playlists, level meters,
volume and mute controls and the fade time slider. Changes of fade_duration_seconds
in the config file apply to the next gesture.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchMixer(ctx)
		},
	}
}

func (app *Application) launchMixer(ctx context.Context) error {
	engine, err := app.newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher, err := config.Watch(app.ConfigPath)
	if err != nil {
		app.Logger.Warn("наблюдение за конфигурацией недоступно", zap.Error(err))
	} else {
		defer watcher.Close()
		go followConfig(ctx, engine, watcher.Changes, watcher.Errors, app.Logger)
	}

	if err := tui.NewApp(engine, app.Logger).Run(ctx); err != nil {
		return fmt.Errorf("ошибка интерфейса: %w", err)
	}
	return nil
}

// fadeSetter принимает новую длительность фейда
type fadeSetter interface {
	SetFadeDuration(d time.Duration) error
}

// followConfig переносит длительность фейда из перечитанной конфигурации в движок.
// Идущие жесты сохраняют свою длительность, новая действует со следующего.
func followConfig(ctx context.Context, engine fadeSetter, changes <-chan *config.Config, errs <-chan error, log *zap.Logger) {
	for {
		select {
		case cfg, ok := <-changes:
			if !ok {
				return
			}
			d := cfg.FadeDuration()
			if err := engine.SetFadeDuration(d); err != nil {
				log.Warn("длительность фейда из конфигурации отклонена", zap.Error(err))
				continue
			}
			log.Info("конфигурация перечитана", zap.Duration("fade_duration", d))
		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Warn("ошибка перечитывания конфигурации", zap.Error(err))
		case <-ctx.Done():
			return
		}
	}
}
