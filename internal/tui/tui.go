// Package tui содержит консоль микшера на две деки
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/4lbertR/CueWave/internal/tui/app"
)

// App представляет основное TUI приложение
type App struct {
	mixer app.Mixer
	log   *zap.Logger
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(m app.Mixer, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{mixer: m, log: log}
}

// Run запускает интерфейс и блокируется до выхода пользователя или отмены ctx.
// Незавершенные жесты прерываются при выходе.
func (tuiApp *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := app.NewMainModel(ctx, tuiApp.mixer)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	tuiApp.log.Info("консоль микшера запущена")
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		// Выход по отмене контекста не считается ошибкой
		return nil
	}
	return err
}
