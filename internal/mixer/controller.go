package mixer

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FadeController ведет огибающие дек: fade in, fade out, fade to next и кроссфейд.
//
// На каждой деке одновременно живет не больше одной FadeOperation.
// Новый жест на деке вытесняет текущую операцию и стартует от того значения,
// до которого огибающая успела дойти. Вытесненный жест возвращает nil
// и не выполняет свои завершающие шаги.
type FadeController struct {
	decks    map[DeckID]*Deck
	anim     *animator
	duration func() time.Duration
	log      *zap.Logger
}

func newFadeController(decks map[DeckID]*Deck, anim *animator, duration func() time.Duration, log *zap.Logger) *FadeController {
	return &FadeController{
		decks:    decks,
		anim:     anim,
		duration: duration,
		log:      log,
	}
}

// Current возвращает активную операцию деки или nil
func (c *FadeController) Current(id DeckID) *FadeOperation {
	return c.anim.current(id)
}

// Play - обычный запуск: огибающая сбрасывается в 1.0 до первого кадра.
// Огибающая и идущий жест не трогаются, пока трек не открылся.
func (c *FadeController) Play(ctx context.Context, id DeckID) error {
	return c.start(ctx, c.decks[id], 1.0)
}

// FadeIn поднимает огибающую до 1.0. Стоящая дека запускается с нуля.
func (c *FadeController) FadeIn(ctx context.Context, id DeckID) error {
	deck := c.decks[id]
	d := c.duration()

	if !deck.IsPlaying() {
		if err := c.start(ctx, deck, 0); err != nil {
			return err
		}
	}

	c.log.Debug("fade in", zap.Stringer("deck", id), zap.Duration("duration", d))
	op := c.anim.start(id, 1.0, d)
	_, err := op.Wait(ctx)
	return err
}

// FadeOut опускает огибающую до нуля, ставит деку на паузу
// и возвращает огибающую в 1.0 для следующего запуска
func (c *FadeController) FadeOut(ctx context.Context, id DeckID) error {
	deck := c.decks[id]
	d := c.duration()

	c.log.Debug("fade out", zap.Stringer("deck", id), zap.Duration("duration", d))
	op := c.anim.start(id, 0, d)
	completed, err := op.Wait(ctx)
	if err != nil || !completed {
		return err
	}
	c.anim.settle(op, func() {
		deck.Pause()
		c.anim.setLocked(id, 1.0)
	})
	return nil
}

// FadeToNext уводит текущий трек и на середине затухания запускает
// следующий трек плейлиста с нарастанием. Без следующего трека
// возвращает ErrNoNextTrack и ничего не меняет.
func (c *FadeController) FadeToNext(ctx context.Context, id DeckID) error {
	deck := c.decks[id]
	next, ok := deck.Next()
	if !ok {
		return ErrNoNextTrack
	}
	d := c.duration()

	c.log.Debug("fade to next",
		zap.Stringer("deck", id),
		zap.String("next", next.TrackID()),
		zap.Duration("duration", d))
	out := c.anim.start(id, 0, d)

	// Следующий трек стартует ровно на половине затухания
	timer := time.NewTimer(d / 2)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}
	if out.Cancelled() {
		return nil
	}

	p, err := deck.prepare(ctx, next)
	if err != nil {
		// Следующий трек не открылся: жест заканчивается обычным затуханием
		if completed, werr := out.Wait(ctx); werr == nil && completed {
			c.anim.settle(out, func() {
				deck.Pause()
				c.anim.setLocked(id, 1.0)
			})
		}
		return err
	}

	var (
		in        *FadeOperation
		switchErr error
	)
	switched := c.anim.settle(out, func() {
		c.anim.setLocked(id, 0)
		if switchErr = deck.switchTo(p); switchErr != nil {
			return
		}
		in = c.anim.startLocked(id, 1.0, d)
	})
	if !switched {
		p.close()
		return nil
	}
	if switchErr != nil {
		return switchErr
	}
	c.anim.poke()

	if _, err := out.Wait(ctx); err != nil {
		return err
	}
	_, err = in.Wait(ctx)
	return err
}

// Crossfade одновременно уводит деку from и поднимает деку to.
// По завершении from встает на паузу с огибающей 1.0.
func (c *FadeController) Crossfade(ctx context.Context, from, to DeckID) error {
	if from == to {
		return ErrSameDeck
	}
	src, dst := c.decks[from], c.decks[to]
	d := c.duration()

	if !dst.IsPlaying() {
		if err := c.start(ctx, dst, 0); err != nil {
			return err
		}
	}

	c.log.Debug("crossfade",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Duration("duration", d))

	c.anim.mu.Lock()
	out := c.anim.startLocked(from, 0, d)
	in := c.anim.startLocked(to, 1.0, d)
	c.anim.mu.Unlock()
	c.anim.poke()

	var outCompleted bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		completed, err := out.Wait(gctx)
		outCompleted = completed
		return err
	})
	g.Go(func() error {
		_, err := in.Wait(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if outCompleted {
		c.anim.settle(out, func() {
			src.Pause()
			c.anim.setLocked(from, 1.0)
		})
	}
	return nil
}

// start запускает стоящую деку с огибающей fade. Огибающая записывается
// только после успешной подготовки деки.
func (c *FadeController) start(ctx context.Context, deck *Deck, fade float64) error {
	ready, err := deck.cue(ctx)
	if err != nil {
		return err
	}
	c.anim.set(deck.id, fade)
	if !ready {
		return nil
	}
	return deck.resume()
}
