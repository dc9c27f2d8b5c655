package mixer

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/4lbertR/CueWave/internal/audiotest"
	"go.uber.org/zap/zaptest"
)

const testFade = 60 * time.Millisecond

func newTestEngine(t *testing.T) (*Engine, *audiotest.ManualOutput) {
	t.Helper()
	out := audiotest.NewManualOutput(audiotest.SampleRate)
	opts := DefaultOptions()
	opts.FadeDuration = testFade
	opts.TickInterval = 2 * time.Millisecond

	e, err := New(out, opts, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Ошибка создания движка: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e, out
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func mustSnapshot(t *testing.T, e *Engine, id DeckID) DeckSnapshot {
	t.Helper()
	s, err := e.Snapshot(id)
	if err != nil {
		t.Fatalf("Ошибка снимка деки %s: %v", id, err)
	}
	return s
}

func startDeck(t *testing.T, e *Engine, id DeckID, track Track) {
	t.Helper()
	if err := e.SelectTrack(id, track); err != nil {
		t.Fatalf("Ошибка выбора трека: %v", err)
	}
	if err := e.PlayPause(testContext(t), id); err != nil {
		t.Fatalf("Ошибка запуска деки %s: %v", id, err)
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.MasterVolume = 120
	if _, err := New(audiotest.NewManualOutput(audiotest.SampleRate), opts, nil); !errors.Is(err, ErrInvalidSliderValue) {
		t.Errorf("Ожидалась ErrInvalidSliderValue, получено %v", err)
	}

	opts = DefaultOptions()
	opts.FadeDuration = -time.Second
	if _, err := New(audiotest.NewManualOutput(audiotest.SampleRate), opts, nil); !errors.Is(err, ErrInvalidFadeDuration) {
		t.Errorf("Ожидалась ErrInvalidFadeDuration, получено %v", err)
	}
}

func TestVolumeRecomputation(t *testing.T) {
	e, _ := newTestEngine(t)

	if got := e.EffectiveGain(DeckA); got != 1.0 {
		t.Errorf("При слайдерах на 60 ожидалось усиление 1.0, получено %v", got)
	}

	if err := e.SetDeckVolume(DeckA, 30); err != nil {
		t.Fatalf("Ошибка установки громкости: %v", err)
	}
	if err := e.SetMasterVolume(100); err != nil {
		t.Fatalf("Ошибка установки мастер-громкости: %v", err)
	}
	if got := e.EffectiveGain(DeckA); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("Ожидалось 0.5 × 3.0 = 1.5, получено %v", got)
	}
	if got := e.EffectiveGain(DeckB); math.Abs(got-3.0) > 1e-9 {
		t.Errorf("Ожидалось 1.0 × 3.0 = 3.0 на деке B, получено %v", got)
	}

	snap := mustSnapshot(t, e, DeckA)
	if snap.Volume != 30 || math.Abs(snap.SourceGain-1.5) > 1e-9 {
		t.Errorf("Неверный снимок громкости: %+v", snap)
	}

	if err := e.SetDeckMute(DeckA, true); err != nil {
		t.Fatalf("Ошибка mute: %v", err)
	}
	if snap := mustSnapshot(t, e, DeckA); snap.SourceGain != 0 {
		t.Errorf("Заглушенная дека должна сообщать нулевое усиление источника, получено %v", snap.SourceGain)
	}
}

func TestInvalidSliderLeavesStateUnchanged(t *testing.T) {
	e, _ := newTestEngine(t)

	for _, pos := range []float64{-1, 101, math.NaN()} {
		if err := e.SetDeckVolume(DeckB, pos); !errors.Is(err, ErrInvalidSliderValue) {
			t.Errorf("SetDeckVolume(%v): ожидалась ErrInvalidSliderValue, получено %v", pos, err)
		}
		if err := e.SetMasterVolume(pos); !errors.Is(err, ErrInvalidSliderValue) {
			t.Errorf("SetMasterVolume(%v): ожидалась ErrInvalidSliderValue, получено %v", pos, err)
		}
	}
	if snap := mustSnapshot(t, e, DeckB); snap.Volume != UnityPosition {
		t.Errorf("Громкость не должна меняться при ошибке, получено %v", snap.Volume)
	}
	if master := e.Master(); master.Volume != UnityPosition {
		t.Errorf("Мастер-громкость не должна меняться при ошибке, получено %v", master.Volume)
	}
}

func TestMuteOverridesEverything(t *testing.T) {
	e, _ := newTestEngine(t)

	for _, fade := range []float64{0, 0.4, 1} {
		for _, volume := range []float64{0, 60, 100} {
			e.anim.set(DeckA, fade)
			if err := e.SetDeckVolume(DeckA, volume); err != nil {
				t.Fatalf("Ошибка установки громкости: %v", err)
			}

			if err := e.SetDeckMute(DeckA, true); err != nil {
				t.Fatalf("Ошибка mute: %v", err)
			}
			if got := e.EffectiveGain(DeckA); got != 0 {
				t.Errorf("Mute деки: ожидалось 0 при fade=%v volume=%v, получено %v", fade, volume, got)
			}
			if err := e.SetDeckMute(DeckA, false); err != nil {
				t.Fatalf("Ошибка mute: %v", err)
			}

			if err := e.SetMasterMute(true); err != nil {
				t.Fatalf("Ошибка mute мастера: %v", err)
			}
			for _, id := range Decks {
				if got := e.EffectiveGain(id); got != 0 {
					t.Errorf("Mute мастера: ожидалось 0 на деке %s, получено %v", id, got)
				}
			}
			if err := e.SetMasterMute(false); err != nil {
				t.Fatalf("Ошибка mute мастера: %v", err)
			}
		}
	}

	// Фейд на заглушенной деке не поднимает усиление
	if err := e.SetDeckMute(DeckB, true); err != nil {
		t.Fatalf("Ошибка mute: %v", err)
	}
	startDeck(t, e, DeckB, audiotest.NewTrack("b", 44100))
	if err := e.FadeIn(testContext(t), DeckB); err != nil {
		t.Fatalf("Ошибка fade in: %v", err)
	}
	if got := e.EffectiveGain(DeckB); got != 0 {
		t.Errorf("Фейд не должен перебивать mute, получено %v", got)
	}
}

func TestPlayPauseResetsEnvelope(t *testing.T) {
	e, _ := newTestEngine(t)
	track := audiotest.NewTrack("a", 44100)

	e.anim.set(DeckA, 0.3)
	startDeck(t, e, DeckA, track)

	snap := mustSnapshot(t, e, DeckA)
	if !snap.Playing || snap.FadeGain != 1.0 {
		t.Errorf("Обычный запуск должен играть с огибающей 1.0, получено %v, %v", snap.Playing, snap.FadeGain)
	}

	ev := <-e.Events()
	if ev.Deck != DeckA || !ev.Playing || ev.TrackID != "a" {
		t.Errorf("Неожиданное событие: %+v", ev)
	}

	if err := e.PlayPause(testContext(t), DeckA); err != nil {
		t.Fatalf("Ошибка паузы: %v", err)
	}
	if mustSnapshot(t, e, DeckA).Playing {
		t.Error("Повторный PlayPause должен поставить деку на паузу")
	}
}

func TestPlayUnavailableTrack(t *testing.T) {
	e, _ := newTestEngine(t)
	e.anim.set(DeckA, 0.3)

	if err := e.SelectTrack(DeckA, audiotest.NewFailingTrack("bad", errors.New("битый файл"))); err != nil {
		t.Fatalf("Ошибка выбора трека: %v", err)
	}
	err := e.PlayPause(testContext(t), DeckA)
	if !errors.Is(err, ErrTrackUnavailable) {
		t.Errorf("Ожидалась ErrTrackUnavailable, получено %v", err)
	}

	snap := mustSnapshot(t, e, DeckA)
	if snap.Playing || snap.Loaded != nil {
		t.Errorf("Дека не должна меняться при ошибке: %+v", snap.DeckState)
	}
	if snap.FadeGain != 0.3 {
		t.Errorf("Огибающая должна вернуться к 0.3, получено %v", snap.FadeGain)
	}
}

func TestFailedStartKeepsRunningFade(t *testing.T) {
	gestures := map[string]func(ctx context.Context, e *Engine) error{
		"play": func(ctx context.Context, e *Engine) error { return e.PlayPause(ctx, DeckA) },
		"fade in": func(ctx context.Context, e *Engine) error { return e.FadeIn(ctx, DeckA) },
	}

	for name, gesture := range gestures {
		t.Run(name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			if err := e.SetFadeDuration(300 * time.Millisecond); err != nil {
				t.Fatalf("Ошибка установки длительности: %v", err)
			}
			startDeck(t, e, DeckA, audiotest.NewTrack("a", 441000))

			ctx := testContext(t)
			fadeDone := make(chan error, 1)
			go func() { fadeDone <- e.FadeOut(ctx, DeckA) }()
			waitFor(t, func() bool { return mustSnapshot(t, e, DeckA).Fade != nil })
			time.Sleep(60 * time.Millisecond)

			// Пауза посреди затухания и выбор трека, который не откроется
			if err := e.PlayPause(ctx, DeckA); err != nil {
				t.Fatalf("Ошибка паузы: %v", err)
			}
			if err := e.SelectTrack(DeckA, audiotest.NewFailingTrack("x", errors.New("boom"))); err != nil {
				t.Fatalf("Ошибка выбора трека: %v", err)
			}
			before := mustSnapshot(t, e, DeckA)

			if err := gesture(ctx, e); !errors.Is(err, ErrTrackUnavailable) {
				t.Errorf("Ожидалась ErrTrackUnavailable, получено %v", err)
			}

			after := mustSnapshot(t, e, DeckA)
			if before.Fade == nil || after.Fade != before.Fade {
				t.Errorf("Неудачный запуск не должен отменять идущее затухание: было %v, стало %v", before.Fade, after.Fade)
			}
			if after.Playing {
				t.Error("Дека не должна играть после ошибки")
			}

			if err := <-fadeDone; err != nil {
				t.Fatalf("Ошибка fade out: %v", err)
			}
			snap := mustSnapshot(t, e, DeckA)
			if snap.Playing || snap.FadeGain != 1.0 {
				t.Errorf("Затухание должно завершиться паузой с огибающей 1.0, получено %v, %v", snap.Playing, snap.FadeGain)
			}
		})
	}
}

func TestFadeInFromPaused(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.SelectTrack(DeckA, audiotest.NewTrack("a", 44100)); err != nil {
		t.Fatalf("Ошибка выбора трека: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- e.FadeIn(testContext(t), DeckA) }()

	var snap DeckSnapshot
	waitFor(t, func() bool {
		snap = mustSnapshot(t, e, DeckA)
		return snap.Fade != nil
	})
	if !snap.Playing {
		t.Error("Fade in должен запустить деку")
	}
	if snap.FadeGain >= 1.0 {
		t.Errorf("Огибающая должна расти от 0, получено %v", snap.FadeGain)
	}
	if snap.Fade.Start != 0 || snap.Fade.Target != 1.0 {
		t.Errorf("Ожидалась операция 0 -> 1, получено %v -> %v", snap.Fade.Start, snap.Fade.Target)
	}

	if err := <-done; err != nil {
		t.Fatalf("Ошибка fade in: %v", err)
	}
	snap = mustSnapshot(t, e, DeckA)
	if snap.FadeGain != 1.0 || !snap.Playing {
		t.Errorf("После fade in ожидалось ровно 1.0 и воспроизведение, получено %v, %v", snap.FadeGain, snap.Playing)
	}
}

func TestFadeInWhilePlayingKeepsPlayback(t *testing.T) {
	e, _ := newTestEngine(t)
	track := audiotest.NewTrack("a", 44100)
	startDeck(t, e, DeckA, track)
	e.anim.set(DeckA, 0.5)

	if err := e.FadeIn(testContext(t), DeckA); err != nil {
		t.Fatalf("Ошибка fade in: %v", err)
	}
	if track.Opens() != 1 {
		t.Errorf("Fade in на играющей деке не должен перезапускать трек, открытий: %d", track.Opens())
	}
	if got := mustSnapshot(t, e, DeckA).FadeGain; got != 1.0 {
		t.Errorf("Ожидалось 1.0, получено %v", got)
	}
}

func TestFadeOutEndsPausedAtUnity(t *testing.T) {
	e, _ := newTestEngine(t)
	startDeck(t, e, DeckA, audiotest.NewTrack("a", 44100))

	if err := e.FadeOut(testContext(t), DeckA); err != nil {
		t.Fatalf("Ошибка fade out: %v", err)
	}
	snap := mustSnapshot(t, e, DeckA)
	if snap.Playing {
		t.Error("После fade out дека должна стоять")
	}
	if snap.FadeGain != 1.0 {
		t.Errorf("После fade out огибающая должна вернуться к 1.0, получено %v", snap.FadeGain)
	}
}

func TestFadeOutRedirectsFadeIn(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.SetFadeDuration(300 * time.Millisecond); err != nil {
		t.Fatalf("Ошибка установки длительности: %v", err)
	}
	if err := e.SelectTrack(DeckA, audiotest.NewTrack("a", 441000)); err != nil {
		t.Fatalf("Ошибка выбора трека: %v", err)
	}

	fadeIn := make(chan error, 1)
	go func() { fadeIn <- e.FadeIn(testContext(t), DeckA) }()
	var first, second *FadeOperation
	waitFor(t, func() bool {
		s := mustSnapshot(t, e, DeckA)
		first = s.Fade
		return s.Fade != nil && s.FadeGain > 0.1
	})

	fadeOut := make(chan error, 1)
	go func() { fadeOut <- e.FadeOut(testContext(t), DeckA) }()
	waitFor(t, func() bool {
		s := mustSnapshot(t, e, DeckA)
		second = s.Fade
		return s.Fade != nil && s.Fade.Target == 0
	})

	if !first.Cancelled() {
		t.Error("Fade out должен вытеснить fade in")
	}
	if second.Start <= 0 || second.Start >= 1.0 {
		t.Errorf("Fade out должен стартовать с достигнутого значения, а не с %v", second.Start)
	}

	if err := <-fadeIn; err != nil {
		t.Errorf("Вытесненный жест должен вернуть nil, получено %v", err)
	}
	if err := <-fadeOut; err != nil {
		t.Fatalf("Ошибка fade out: %v", err)
	}
	snap := mustSnapshot(t, e, DeckA)
	if snap.Playing || snap.FadeGain != 1.0 {
		t.Errorf("Ожидалась пауза с огибающей 1.0, получено %v, %v", snap.Playing, snap.FadeGain)
	}
}

func TestCrossfade(t *testing.T) {
	e, _ := newTestEngine(t)
	startDeck(t, e, DeckA, audiotest.NewTrack("a", 441000))
	if err := e.SelectTrack(DeckB, audiotest.NewTrack("b", 441000)); err != nil {
		t.Fatalf("Ошибка выбора трека: %v", err)
	}

	if err := e.CrossfadeAToB(testContext(t)); err != nil {
		t.Fatalf("Ошибка кроссфейда: %v", err)
	}

	a := mustSnapshot(t, e, DeckA)
	b := mustSnapshot(t, e, DeckB)
	if a.Playing || a.FadeGain != 1.0 {
		t.Errorf("Дека A должна стоять с огибающей 1.0, получено %v, %v", a.Playing, a.FadeGain)
	}
	if !b.Playing || b.FadeGain != 1.0 {
		t.Errorf("Дека B должна играть с огибающей 1.0, получено %v, %v", b.Playing, b.FadeGain)
	}
}

func TestCrossfadeSameDeck(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Crossfade(testContext(t), DeckA, DeckA); !errors.Is(err, ErrSameDeck) {
		t.Errorf("Ожидалась ErrSameDeck, получено %v", err)
	}
}

func TestBackToBackCrossfades(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.SetFadeDuration(200 * time.Millisecond); err != nil {
		t.Fatalf("Ошибка установки длительности: %v", err)
	}
	startDeck(t, e, DeckA, audiotest.NewTrack("a", 441000))
	if err := e.SelectTrack(DeckB, audiotest.NewTrack("b", 441000)); err != nil {
		t.Fatalf("Ошибка выбора трека: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- e.CrossfadeAToB(testContext(t))
	}()
	waitFor(t, func() bool { return mustSnapshot(t, e, DeckB).FadeGain > 0.2 })

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- e.CrossfadeBToA(testContext(t))
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("Ошибка кроссфейда: %v", err)
		}
	}

	a := mustSnapshot(t, e, DeckA)
	b := mustSnapshot(t, e, DeckB)
	if !a.Playing || a.FadeGain != 1.0 {
		t.Errorf("Дека A должна играть с огибающей 1.0, получено %v, %v", a.Playing, a.FadeGain)
	}
	if b.Playing || b.FadeGain != 1.0 {
		t.Errorf("Дека B должна стоять с огибающей 1.0, получено %v, %v", b.Playing, b.FadeGain)
	}
	if a.Fade != nil || b.Fade != nil {
		t.Error("После обоих кроссфейдов не должно остаться активных операций")
	}
}

func TestFadeToNext(t *testing.T) {
	e, _ := newTestEngine(t)
	first := audiotest.NewTrack("1", 441000)
	second := audiotest.NewTrack("2", 441000)
	if err := e.SetPlaylist(DeckA, []Track{first, second}); err != nil {
		t.Fatalf("Ошибка плейлиста: %v", err)
	}
	startDeck(t, e, DeckA, first)

	if err := e.FadeToNext(testContext(t), DeckA); err != nil {
		t.Fatalf("Ошибка перехода: %v", err)
	}

	snap := mustSnapshot(t, e, DeckA)
	if snap.Loaded != second || snap.Selected != second {
		t.Errorf("Ожидался загруженный трек 2, получено %v", snap.Loaded)
	}
	if !snap.Playing || snap.FadeGain != 1.0 {
		t.Errorf("Следующий трек должен играть с огибающей 1.0, получено %v, %v", snap.Playing, snap.FadeGain)
	}
	if !first.LastStream().Closed() {
		t.Error("Поток прежнего трека должен быть закрыт")
	}
}

func TestFadeToNextSwitchesAtHalfway(t *testing.T) {
	const (
		d         = 400 * time.Millisecond
		tolerance = 150 * time.Millisecond
	)
	e, _ := newTestEngine(t)
	if err := e.SetFadeDuration(d); err != nil {
		t.Fatalf("Ошибка установки длительности: %v", err)
	}
	first := audiotest.NewTrack("1", 441000)
	second := audiotest.NewTrack("2", 441000)
	if err := e.SetPlaylist(DeckA, []Track{first, second}); err != nil {
		t.Fatalf("Ошибка плейлиста: %v", err)
	}
	startDeck(t, e, DeckA, first)

	ctx := testContext(t)
	started := time.Now()
	done := make(chan error, 1)
	go func() { done <- e.FadeToNext(ctx, DeckA) }()

	var (
		sawFirst   bool
		switchedAt time.Duration
	)
	for {
		elapsed := time.Since(started)
		loaded := mustSnapshot(t, e, DeckA).Loaded
		if loaded == second {
			switchedAt = elapsed
			break
		}
		if loaded == first && elapsed < d/2 {
			sawFirst = true
		}
		if elapsed > 2*d {
			t.Fatal("Следующий трек так и не запустился")
		}
		time.Sleep(time.Millisecond)
	}

	if !sawFirst {
		t.Error("До середины затухания должен играть прежний трек")
	}
	if switchedAt < d/2 || switchedAt > d/2+tolerance {
		t.Errorf("Переход ожидался на %v, произошел на %v", d/2, switchedAt)
	}

	if err := <-done; err != nil {
		t.Fatalf("Ошибка перехода: %v", err)
	}
	if total := time.Since(started); total < d {
		t.Errorf("Жест не должен завершаться раньше затухания (%v), завершился за %v", d, total)
	}
}

func TestFadeToNextWithoutNextTrack(t *testing.T) {
	e, _ := newTestEngine(t)
	only := audiotest.NewTrack("1", 441000)
	if err := e.SetPlaylist(DeckA, []Track{only}); err != nil {
		t.Fatalf("Ошибка плейлиста: %v", err)
	}
	startDeck(t, e, DeckA, only)
	before := mustSnapshot(t, e, DeckA)

	if err := e.FadeToNext(testContext(t), DeckA); !errors.Is(err, ErrNoNextTrack) {
		t.Errorf("Ожидалась ErrNoNextTrack, получено %v", err)
	}

	after := mustSnapshot(t, e, DeckA)
	if after.Loaded != before.Loaded || after.Playing != before.Playing ||
		after.FadeGain != before.FadeGain || after.Fade != nil {
		t.Errorf("Состояние деки не должно меняться: было %+v, стало %+v", before, after)
	}
}

func TestFadeToNextUnavailableTrack(t *testing.T) {
	e, _ := newTestEngine(t)
	first := audiotest.NewTrack("1", 441000)
	broken := audiotest.NewFailingTrack("2", errors.New("нет доступа"))
	if err := e.SetPlaylist(DeckA, []Track{first, broken}); err != nil {
		t.Fatalf("Ошибка плейлиста: %v", err)
	}
	startDeck(t, e, DeckA, first)

	if err := e.FadeToNext(testContext(t), DeckA); !errors.Is(err, ErrTrackUnavailable) {
		t.Errorf("Ожидалась ErrTrackUnavailable, получено %v", err)
	}

	snap := mustSnapshot(t, e, DeckA)
	if snap.Loaded != first {
		t.Errorf("При ошибке должен остаться прежний трек, получено %v", snap.Loaded)
	}
	if snap.Playing || snap.FadeGain != 1.0 {
		t.Errorf("Жест должен закончиться обычным затуханием, получено %v, %v", snap.Playing, snap.FadeGain)
	}
}

func TestFadeDurationSettings(t *testing.T) {
	e, _ := newTestEngine(t)

	if err := e.SetFadeDuration(-time.Millisecond); !errors.Is(err, ErrInvalidFadeDuration) {
		t.Errorf("Ожидалась ErrInvalidFadeDuration, получено %v", err)
	}
	if e.FadeDuration() != testFade {
		t.Errorf("Длительность не должна меняться при ошибке, получено %v", e.FadeDuration())
	}

	if _, err := DurationFromSeconds(math.NaN()); !errors.Is(err, ErrInvalidFadeDuration) {
		t.Errorf("NaN: ожидалась ErrInvalidFadeDuration, получено %v", err)
	}
	d, err := DurationFromSeconds(1.5)
	if err != nil || d != 1500*time.Millisecond {
		t.Errorf("Ожидалось 1.5s, получено %v, %v", d, err)
	}

	// Нулевая длительность применяется мгновенно
	if err := e.SetFadeDuration(0); err != nil {
		t.Fatalf("Ошибка установки длительности: %v", err)
	}
	startDeck(t, e, DeckB, audiotest.NewTrack("b", 44100))
	if err := e.FadeOut(testContext(t), DeckB); err != nil {
		t.Fatalf("Ошибка fade out: %v", err)
	}
	if snap := mustSnapshot(t, e, DeckB); snap.Playing || snap.FadeGain != 1.0 {
		t.Errorf("Ожидалась пауза с огибающей 1.0, получено %v, %v", snap.Playing, snap.FadeGain)
	}
}

func TestEngineClose(t *testing.T) {
	e, out := newTestEngine(t)
	startDeck(t, e, DeckA, audiotest.NewTrack("a", 44100))

	if err := e.Close(); err != nil {
		t.Fatalf("Ошибка закрытия: %v", err)
	}
	if !out.Closed() {
		t.Error("Close должен закрыть вывод")
	}
	if err := e.FadeIn(testContext(t), DeckA); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Ожидалась ErrEngineClosed, получено %v", err)
	}
	if err := e.SetMasterVolume(10); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Ожидалась ErrEngineClosed, получено %v", err)
	}
	// Повторный Close безопасен
	if err := e.Close(); err != nil {
		t.Errorf("Повторный Close вернул ошибку: %v", err)
	}
}

func TestUnknownDeck(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.FadeIn(testContext(t), DeckID(7)); !errors.Is(err, ErrUnknownDeck) {
		t.Errorf("Ожидалась ErrUnknownDeck, получено %v", err)
	}
	if _, err := e.Snapshot(DeckID(-1)); !errors.Is(err, ErrUnknownDeck) {
		t.Errorf("Ожидалась ErrUnknownDeck, получено %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Условие не выполнилось вовремя")
		}
		time.Sleep(time.Millisecond)
	}
}
