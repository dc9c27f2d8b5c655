package mixer

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTickInterval - шаг анимации огибающей, примерно частота кадров экрана
const DefaultTickInterval = 16 * time.Millisecond

// EaseOut - кубическое замедление: 1 - (1 - p)^3
func EaseOut(progress float64) float64 {
	inv := 1 - progress
	return 1 - inv*inv*inv
}

// FadeOperation - одна активная анимация огибающей деки
type FadeOperation struct {
	Deck      DeckID
	Start     float64
	Target    float64
	Duration  time.Duration
	StartedAt time.Time

	cancelled atomic.Bool
	completed atomic.Bool
	done      chan struct{}
	once      sync.Once
}

func newFadeOperation(deck DeckID, start, target float64, d time.Duration, now time.Time) *FadeOperation {
	return &FadeOperation{
		Deck:      deck,
		Start:     start,
		Target:    target,
		Duration:  d,
		StartedAt: now,
		done:      make(chan struct{}),
	}
}

// ValueAt вычисляет значение огибающей в момент now.
// На progress == 1 возвращает ровно Target.
func (op *FadeOperation) ValueAt(now time.Time) (value float64, finished bool) {
	if op.Duration <= 0 {
		return op.Target, true
	}
	progress := float64(now.Sub(op.StartedAt)) / float64(op.Duration)
	progress = math.Max(0, math.Min(1, progress))
	if progress >= 1 {
		return op.Target, true
	}
	return op.Start + (op.Target-op.Start)*EaseOut(progress), false
}

// Done закрывается, когда операция завершена или отменена
func (op *FadeOperation) Done() <-chan struct{} { return op.done }

// Completed сообщает, дошла ли операция до цели (а не была отменена)
func (op *FadeOperation) Completed() bool { return op.completed.Load() }

// Cancelled сообщает, была ли операция вытеснена
func (op *FadeOperation) Cancelled() bool { return op.cancelled.Load() }

// Wait ждет завершения операции. Отмена ctx прекращает ожидание,
// но не саму анимацию.
func (op *FadeOperation) Wait(ctx context.Context) (bool, error) {
	select {
	case <-op.done:
		return op.Completed(), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (op *FadeOperation) finish(completed bool) {
	op.once.Do(func() {
		if completed {
			op.completed.Store(true)
		} else {
			op.cancelled.Store(true)
		}
		close(op.done)
	})
}

// animator - единственный цикл, который пишет огибающие всех дек.
// Все записи fadeGain идут под mu, поэтому отмененная операция не может
// записать значение после старта следующей.
type animator struct {
	interval time.Duration
	now      func() time.Time
	graphs   map[DeckID]*Graph

	mu     sync.Mutex
	active map[DeckID]*FadeOperation
	latest map[DeckID]*FadeOperation
	wake   chan struct{}
	closed bool
}

func newAnimator(graphs map[DeckID]*Graph, interval time.Duration) *animator {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &animator{
		interval: interval,
		now:      time.Now,
		graphs:   graphs,
		active:   make(map[DeckID]*FadeOperation),
		latest:   make(map[DeckID]*FadeOperation),
		wake:     make(chan struct{}, 1),
	}
}

// start отменяет текущую операцию деки и запускает новую от текущего значения
func (a *animator) start(deck DeckID, target float64, d time.Duration) *FadeOperation {
	a.mu.Lock()
	op := a.startLocked(deck, target, d)
	a.mu.Unlock()

	a.poke()
	return op
}

func (a *animator) startLocked(deck DeckID, target float64, d time.Duration) *FadeOperation {
	a.cancelLocked(deck)

	graph := a.graphs[deck]
	op := newFadeOperation(deck, graph.FadeGain(), target, d, a.now())
	a.latest[deck] = op
	if a.closed {
		op.finish(false)
		return op
	}
	if d <= 0 {
		graph.SetFadeGain(target)
		op.finish(true)
		return op
	}
	a.active[deck] = op
	return op
}

// set отменяет текущую операцию и сразу записывает значение
func (a *animator) set(deck DeckID, v float64) {
	a.mu.Lock()
	a.setLocked(deck, v)
	a.mu.Unlock()
}

func (a *animator) setLocked(deck DeckID, v float64) {
	a.cancelLocked(deck)
	a.latest[deck] = nil
	a.graphs[deck].SetFadeGain(v)
}

func (a *animator) cancelLocked(deck DeckID) {
	if prev := a.active[deck]; prev != nil {
		prev.finish(false)
		delete(a.active, deck)
	}
}

// settle выполняет завершающие шаги жеста, только если после op на деке
// не начинался другой жест
func (a *animator) settle(op *FadeOperation, fn func()) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.latest[op.Deck] != op {
		return false
	}
	fn()
	return true
}

// current возвращает активную операцию деки
func (a *animator) current(deck DeckID) *FadeOperation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active[deck]
}

// advance продвигает все активные операции на момент now
func (a *animator) advance(now time.Time) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	for deck, op := range a.active {
		value, finished := op.ValueAt(now)
		a.graphs[deck].SetFadeGain(value)
		if finished {
			delete(a.active, deck)
			op.finish(true)
		}
	}
	return len(a.active)
}

// stop отменяет все операции; ожидающие жесты получают отмену
func (a *animator) stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.closed = true
	for deck := range a.active {
		a.cancelLocked(deck)
	}
}

func (a *animator) poke() {
	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// run крутит цикл анимации. Тикер работает только пока есть активные операции.
func (a *animator) run(ctx context.Context) {
	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
		a.stop()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.wake:
			if ticker == nil {
				ticker = time.NewTicker(a.interval)
				tick = ticker.C
			}
		case <-tick:
			if a.advance(a.now()) == 0 {
				ticker.Stop()
				ticker, tick = nil, nil
			}
		}
	}
}
