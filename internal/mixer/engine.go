// Package mixer содержит движок на две деки: кривую громкости, цепочку усиления,
// транспорт дек и жесты фейда с кроссфейдом
package mixer

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"go.uber.org/zap"
)

// DefaultFadeDuration - длительность жестов по умолчанию
const DefaultFadeDuration = time.Second

// Options задает начальное состояние движка
type Options struct {
	FadeDuration time.Duration
	TickInterval time.Duration
	// EventBuffer - емкость канала событий
	EventBuffer int

	VolumeA      float64
	VolumeB      float64
	MasterVolume float64
	MuteA        bool
	MuteB        bool
	MuteMaster   bool
}

// DefaultOptions возвращает настройки с единичным усилением на всех слайдерах
func DefaultOptions() Options {
	return Options{
		FadeDuration: DefaultFadeDuration,
		TickInterval: DefaultTickInterval,
		EventBuffer:  32,
		VolumeA:      UnityPosition,
		VolumeB:      UnityPosition,
		MasterVolume: UnityPosition,
	}
}

// DeckSnapshot - состояние деки вместе с ее усилениями
type DeckSnapshot struct {
	DeckState

	Volume float64
	Muted  bool
	// SourceGain - усиление источника: слайдер деки, мастер и mute
	SourceGain float64
	// FadeGain - текущее значение огибающей
	FadeGain float64
	// EffectiveGain - итоговый множитель деки с учетом мастера и mute
	EffectiveGain float64
	// Fade - активная операция или nil
	Fade *FadeOperation
}

// MasterSnapshot - состояние мастер-шины
type MasterSnapshot struct {
	Volume float64
	Gain   float64
	Muted  bool
}

// Engine - микшер на две деки: громкость, mute, транспорт и жесты фейда.
//
// Методы безопасны для вызова из разных горутин. Жесты блокируют вызывающего
// до своего завершения; отмена ctx прекращает только ожидание.
type Engine struct {
	out    Output
	log    *zap.Logger
	decks  map[DeckID]*Deck
	graphs map[DeckID]*Graph
	anim   *animator
	fades  *FadeController
	events chan Event

	mu           sync.Mutex
	volume       map[DeckID]float64
	muted        map[DeckID]bool
	masterVolume float64
	masterMuted  bool

	fadeDuration atomic.Int64

	cancel    context.CancelFunc
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

// New собирает движок и подключает мастер-шину к out.
// Движок владеет out и закрывает его в Close.
func New(out Output, opts Options, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	for _, pos := range []float64{opts.VolumeA, opts.VolumeB, opts.MasterVolume} {
		if err := ValidatePosition(pos); err != nil {
			return nil, err
		}
	}
	if opts.FadeDuration < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFadeDuration, opts.FadeDuration)
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 32
	}

	e := &Engine{
		out:    out,
		log:    log,
		decks:  make(map[DeckID]*Deck, len(Decks)),
		graphs: make(map[DeckID]*Graph, len(Decks)),
		events: make(chan Event, opts.EventBuffer),
		volume: map[DeckID]float64{
			DeckA: opts.VolumeA,
			DeckB: opts.VolumeB,
		},
		muted: map[DeckID]bool{
			DeckA: opts.MuteA,
			DeckB: opts.MuteB,
		},
		masterVolume: opts.MasterVolume,
		masterMuted:  opts.MuteMaster,
		done:         make(chan struct{}),
	}
	e.fadeDuration.Store(int64(opts.FadeDuration))

	bus := &beep.Mixer{}
	for _, id := range Decks {
		graph := NewGraph(out)
		e.graphs[id] = graph
		e.decks[id] = NewDeck(id, graph, out, log, e.publish)
		bus.Add(graph)
	}
	e.recomputeLocked()

	e.anim = newAnimator(e.graphs, opts.TickInterval)
	e.fades = newFadeController(e.decks, e.anim, e.FadeDuration, log)

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	go func() {
		defer close(e.done)
		e.anim.run(ctx)
	}()

	out.Play(bus)
	log.Info("микшер запущен",
		zap.Int("sample_rate", int(out.SampleRate())),
		zap.Duration("fade_duration", opts.FadeDuration))
	return e, nil
}

// Events возвращает канал уведомлений о смене состояния воспроизведения.
// Если читатель не успевает, события отбрасываются; актуальное состояние
// всегда доступно через Snapshot.
func (e *Engine) Events() <-chan Event { return e.events }

func (e *Engine) publish(ev Event) {
	select {
	case e.events <- ev:
	default:
		e.log.Debug("событие отброшено", zap.Stringer("deck", ev.Deck), zap.Bool("playing", ev.Playing))
	}
}

// SetDeckVolume задает позицию слайдера деки и сразу пересчитывает усиление
func (e *Engine) SetDeckVolume(id DeckID, position float64) error {
	if err := e.check(id); err != nil {
		return err
	}
	if err := ValidatePosition(position); err != nil {
		return err
	}
	e.mu.Lock()
	e.volume[id] = position
	e.recomputeLocked()
	e.mu.Unlock()
	return nil
}

// SetMasterVolume задает позицию мастер-слайдера
func (e *Engine) SetMasterVolume(position float64) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if err := ValidatePosition(position); err != nil {
		return err
	}
	e.mu.Lock()
	e.masterVolume = position
	e.recomputeLocked()
	e.mu.Unlock()
	return nil
}

// SetDeckMute включает или выключает mute деки
func (e *Engine) SetDeckMute(id DeckID, muted bool) error {
	if err := e.check(id); err != nil {
		return err
	}
	e.mu.Lock()
	e.muted[id] = muted
	e.recomputeLocked()
	e.mu.Unlock()
	return nil
}

// SetMasterMute включает или выключает mute мастер-шины
func (e *Engine) SetMasterMute(muted bool) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	e.mu.Lock()
	e.masterMuted = muted
	e.recomputeLocked()
	e.mu.Unlock()
	return nil
}

// recomputeLocked пишет ступень sourceGain обеих дек.
// Mute обнуляет ступень целиком, поэтому фейд не может его перебить.
func (e *Engine) recomputeLocked() {
	master := Gain(e.masterVolume)
	for _, id := range Decks {
		gain := 0.0
		if !e.muted[id] && !e.masterMuted {
			gain = Gain(e.volume[id]) * master
		}
		e.graphs[id].SetSourceGain(gain)
	}
}

// SelectTrack отмечает трек деки для следующего запуска
func (e *Engine) SelectTrack(id DeckID, track Track) error {
	if err := e.check(id); err != nil {
		return err
	}
	e.decks[id].Select(track)
	return nil
}

// SetPlaylist задает порядок треков деки для перехода к следующему
func (e *Engine) SetPlaylist(id DeckID, tracks []Track) error {
	if err := e.check(id); err != nil {
		return err
	}
	e.decks[id].SetPlaylist(tracks)
	return nil
}

// Load загружает трек на деку без запуска
func (e *Engine) Load(ctx context.Context, id DeckID, track Track) error {
	if err := e.check(id); err != nil {
		return err
	}
	return e.decks[id].Load(ctx, track)
}

// PlayPause ставит играющую деку на паузу, а стоящую запускает с огибающей 1.0
func (e *Engine) PlayPause(ctx context.Context, id DeckID) error {
	if err := e.check(id); err != nil {
		return err
	}
	deck := e.decks[id]
	if deck.IsPlaying() {
		deck.Pause()
		return nil
	}
	return e.fades.Play(ctx, id)
}

// FadeIn запускает деку (если она стоит) и поднимает огибающую до 1.0
func (e *Engine) FadeIn(ctx context.Context, id DeckID) error {
	if err := e.check(id); err != nil {
		return err
	}
	return e.fades.FadeIn(ctx, id)
}

// FadeOut уводит деку в тишину и ставит ее на паузу
func (e *Engine) FadeOut(ctx context.Context, id DeckID) error {
	if err := e.check(id); err != nil {
		return err
	}
	return e.fades.FadeOut(ctx, id)
}

// FadeToNext переходит к следующему треку плейлиста деки
func (e *Engine) FadeToNext(ctx context.Context, id DeckID) error {
	if err := e.check(id); err != nil {
		return err
	}
	return e.fades.FadeToNext(ctx, id)
}

// Crossfade переводит звук с деки from на деку to
func (e *Engine) Crossfade(ctx context.Context, from, to DeckID) error {
	if err := e.check(from); err != nil {
		return err
	}
	if err := e.check(to); err != nil {
		return err
	}
	return e.fades.Crossfade(ctx, from, to)
}

// CrossfadeAToB - кроссфейд с деки A на деку B
func (e *Engine) CrossfadeAToB(ctx context.Context) error {
	return e.Crossfade(ctx, DeckA, DeckB)
}

// CrossfadeBToA - кроссфейд с деки B на деку A
func (e *Engine) CrossfadeBToA(ctx context.Context) error {
	return e.Crossfade(ctx, DeckB, DeckA)
}

// SetFadeDuration задает длительность следующих жестов.
// Уже идущие операции сохраняют свою длительность.
func (e *Engine) SetFadeDuration(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidFadeDuration, d)
	}
	e.fadeDuration.Store(int64(d))
	e.log.Debug("длительность фейда изменена", zap.Duration("duration", d))
	return nil
}

// FadeDuration возвращает длительность, с которой стартует следующий жест
func (e *Engine) FadeDuration() time.Duration {
	return time.Duration(e.fadeDuration.Load())
}

// DurationFromSeconds переводит секунды в длительность фейда
func DurationFromSeconds(seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFadeDuration, seconds)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// Snapshot возвращает текущее состояние деки
func (e *Engine) Snapshot(id DeckID) (DeckSnapshot, error) {
	if !id.Valid() {
		return DeckSnapshot{}, fmt.Errorf("%w: %d", ErrUnknownDeck, int(id))
	}
	graph := e.graphs[id]

	e.mu.Lock()
	volume, muted := e.volume[id], e.muted[id]
	e.mu.Unlock()

	return DeckSnapshot{
		DeckState:     e.decks[id].State(),
		Volume:        volume,
		Muted:         muted,
		SourceGain:    graph.SourceGain(),
		FadeGain:      graph.FadeGain(),
		EffectiveGain: graph.Output(),
		Fade:          e.fades.Current(id),
	}, nil
}

// Master возвращает состояние мастер-шины
func (e *Engine) Master() MasterSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return MasterSnapshot{
		Volume: e.masterVolume,
		Gain:   Gain(e.masterVolume),
		Muted:  e.masterMuted,
	}
}

// EffectiveGain возвращает итоговый множитель деки
func (e *Engine) EffectiveGain(id DeckID) float64 {
	if !id.Valid() {
		return 0
	}
	return e.graphs[id].Output()
}

// Close останавливает анимацию, отключает деки и закрывает вывод.
// Ожидающие жесты завершаются как вытесненные.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		e.cancel()
		<-e.done

		for _, id := range Decks {
			e.decks[id].Close()
		}
		if cerr := e.out.Close(); cerr != nil {
			err = fmt.Errorf("ошибка закрытия вывода: %w", cerr)
		}
		e.log.Info("микшер остановлен")
	})
	return err
}

func (e *Engine) check(id DeckID) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if !id.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownDeck, int(id))
	}
	return nil
}
