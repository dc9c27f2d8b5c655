package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/4lbertR/CueWave/internal/mixer"
	"github.com/4lbertR/CueWave/internal/utils"
)

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Run the mixer with single-key controls",
		Long: `Run the two-deck mixer without the full-screen interface.
Keys: a/b select deck, space play/pause, i fade in, o fade out, n fade to next,
x crossfade A to B, z crossfade B to A, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.runPlay(ctx)
		},
	}
}

// enableRawMode включает режим raw для терминала (без буферизации и echo)
func enableRawMode() {
	cmd := exec.Command("stty", "-echo", "-icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run() // Без терминала клавиши просто придут построчно
}

// disableRawMode восстанавливает нормальный режим терминала
func disableRawMode() {
	cmd := exec.Command("stty", "echo", "icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}

// readSingleChar читает одиночный символ без ожидания Enter
func readSingleChar(r io.Reader) (byte, error) {
	buffer := make([]byte, 1)
	_, err := r.Read(buffer)
	return buffer[0], err
}

// keyController переводит нажатия клавиш в команды микшера
type keyController struct {
	engine *mixer.Engine
	out    io.Writer
	log    *zap.Logger

	mu   sync.Mutex
	deck mixer.DeckID
	wg   sync.WaitGroup
}

func newKeyController(engine *mixer.Engine, out io.Writer, log *zap.Logger) *keyController {
	return &keyController{engine: engine, out: out, log: log, deck: mixer.DeckA}
}

// Deck возвращает выбранную деку
func (k *keyController) Deck() mixer.DeckID {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.deck
}

// handle обрабатывает клавишу. Возвращает true, если нужно выйти.
// Жесты выполняются в фоне, чтобы клавиатура не блокировалась на время фейда.
func (k *keyController) handle(ctx context.Context, key byte) bool {
	deck := k.Deck()

	switch key {
	case 'q', 'Q':
		return true

	case 'a', 'A', 'b', 'B':
		k.mu.Lock()
		k.deck = mixer.DeckA
		if key == 'b' || key == 'B' {
			k.deck = mixer.DeckB
		}
		deck = k.deck
		k.mu.Unlock()
		fmt.Fprintf(k.out, "\r\033[K🎚️ Выбрана дека %s\n", deck)

	case ' ', '\n', '\r':
		k.run(ctx, "пуск/пауза", func(ctx context.Context) error {
			return k.engine.PlayPause(ctx, deck)
		})

	case 'i':
		k.run(ctx, "нарастание", func(ctx context.Context) error {
			return k.engine.FadeIn(ctx, deck)
		})

	case 'o':
		k.run(ctx, "затухание", func(ctx context.Context) error {
			return k.engine.FadeOut(ctx, deck)
		})

	case 'n':
		k.run(ctx, "следующий трек", func(ctx context.Context) error {
			return k.engine.FadeToNext(ctx, deck)
		})

	case 'x':
		k.run(ctx, "кроссфейд A → B", k.engine.CrossfadeAToB)

	case 'z':
		k.run(ctx, "кроссфейд B → A", k.engine.CrossfadeBToA)
	}

	return false
}

func (k *keyController) run(ctx context.Context, name string, fn func(ctx context.Context) error) {
	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		err := fn(ctx)
		switch {
		case errors.Is(err, mixer.ErrNoNextTrack):
			fmt.Fprintf(k.out, "\r\033[K⏭️  Следующего трека нет\n")
		case err != nil && ctx.Err() == nil:
			k.log.Warn("жест завершился ошибкой", zap.String("gesture", name), zap.Error(err))
			fmt.Fprintf(k.out, "\r\033[K❌ %s: %v\n", name, err)
		}
	}()
}

// wait дожидается завершения запущенных жестов
func (k *keyController) wait() {
	k.wg.Wait()
}

func (app *Application) runPlay(ctx context.Context) error {
	engine, err := app.newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	controller := newKeyController(engine, os.Stdout, app.Logger)

	fmt.Printf("🎛️ Микшер запущен\n")
	for _, id := range mixer.Decks {
		fmt.Printf("   Дека %s: треков %d\n", id, len(app.Decks.Playlist(id)))
	}
	fmt.Printf("🎮 Управление:\n")
	fmt.Printf("   [a/b] - выбрать деку  [Пробел] - пуск/пауза\n")
	fmt.Printf("   [i] - нарастание  [o] - затухание  [n] - следующий трек\n")
	fmt.Printf("   [x] - кроссфейд A → B  [z] - кроссфейд B → A  [q] - выход\n")
	fmt.Println()

	// Включаем raw режим для чтения одиночных клавиш
	enableRawMode()
	defer disableRawMode()

	keys := make(chan byte)
	go func() {
		for {
			char, err := readSingleChar(os.Stdin)
			if err != nil {
				close(keys)
				return
			}
			select {
			case keys <- char:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	// Главный цикл обработки событий
	for {
		select {
		case char, ok := <-keys:
			if !ok || controller.handle(ctx, char) {
				fmt.Println("\n⏹️  Микшер остановлен пользователем")
				cancel()
				controller.wait()
				return nil
			}
		case ev := <-engine.Events():
			displayEvent(engine, ev)
		case <-ticker.C:
			displayStatus(engine, controller.Deck())
		case <-ctx.Done():
			fmt.Println("\n🚫 Операция отменена")
			controller.wait()
			return nil
		}
	}
}

// displayEvent выводит смену состояния деки
func displayEvent(engine *mixer.Engine, ev mixer.Event) {
	s, err := engine.Snapshot(ev.Deck)
	if err != nil {
		return
	}
	name := "нет трека"
	if s.Loaded != nil {
		name = s.Loaded.Name()
	}
	icon := "⏸️"
	if ev.Playing {
		icon = "▶️"
	}
	fmt.Printf("\r\033[K%s  Дека %s: %s\n", icon, ev.Deck, name)
}

// displayStatus отображает состояние обеих дек в одной строке
func displayStatus(engine *mixer.Engine, selected mixer.DeckID) {
	line := ""
	for _, id := range mixer.Decks {
		s, err := engine.Snapshot(id)
		if err != nil {
			continue
		}
		marker := " "
		if id == selected {
			marker = "*"
		}
		icon := "⏸️"
		if s.Playing {
			icon = "▶️"
		}
		line += fmt.Sprintf("%s%s %s %s / %s x%.2f  ",
			marker, id, icon,
			utils.FormatDuration(s.Position),
			utils.FormatDuration(s.Length),
			s.EffectiveGain)
	}
	fmt.Printf("\r\033[K%s", line)
}
