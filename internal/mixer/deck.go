package mixer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"go.uber.org/zap"
)

// DeckID идентифицирует одну из двух дек микшера
type DeckID int

// Деки микшера
const (
	DeckA DeckID = iota
	DeckB
)

// Decks перечисляет все деки в порядке их отображения
var Decks = [...]DeckID{DeckA, DeckB}

func (id DeckID) String() string {
	switch id {
	case DeckA:
		return "A"
	case DeckB:
		return "B"
	default:
		return fmt.Sprintf("Deck(%d)", int(id))
	}
}

// Other возвращает противоположную деку
func (id DeckID) Other() DeckID {
	if id == DeckA {
		return DeckB
	}
	return DeckA
}

// Valid сообщает, существует ли такая дека
func (id DeckID) Valid() bool { return id == DeckA || id == DeckB }

// Track - трек, который внешняя библиотека отдает движку.
// Движок хранит ссылку, но не владеет треком.
type Track interface {
	TrackID() string
	Name() string
	// Duration возвращает известную длительность или 0
	Duration() time.Duration
	// Open открывает декодированный поток трека
	Open(ctx context.Context) (beep.StreamSeekCloser, beep.Format, error)
}

// Event - уведомление об изменении состояния воспроизведения деки
type Event struct {
	Deck    DeckID
	Playing bool
	TrackID string
}

// DeckState - снимок транспортного состояния деки
type DeckState struct {
	Deck     DeckID
	Selected Track
	Loaded   Track
	Playlist []Track
	Playing  bool
	Position time.Duration
	Length   time.Duration
}

// prepared - открытый, но еще не подключенный поток трека
type prepared struct {
	track  Track
	stream beep.StreamSeekCloser
	format beep.Format
}

func (p *prepared) close() {
	if p != nil && p.stream != nil {
		p.stream.Close()
	}
}

// Deck управляет транспортом одной деки: загруженный трек, play/pause, позиция
type Deck struct {
	id     DeckID
	graph  *Graph
	out    Output
	log    *zap.Logger
	notify func(Event)

	mu         sync.RWMutex
	selected   Track
	loaded     Track
	playlist   []Track
	playing    bool
	generation uint64

	// ctrl.Paused читает поток рендеринга, поэтому меняется под out.Lock()
	ctrl    *beep.Ctrl
	stream  beep.StreamSeekCloser
	format  beep.Format
	drained *atomic.Bool
}

// NewDeck создает деку поверх ее сигнальной цепочки
func NewDeck(id DeckID, graph *Graph, out Output, log *zap.Logger, notify func(Event)) *Deck {
	if log == nil {
		log = zap.NewNop()
	}
	if notify == nil {
		notify = func(Event) {}
	}
	return &Deck{
		id:     id,
		graph:  graph,
		out:    out,
		log:    log.With(zap.Stringer("deck", id)),
		notify: notify,
	}
}

// ID возвращает идентификатор деки
func (d *Deck) ID() DeckID { return d.id }

// Graph возвращает сигнальную цепочку деки
func (d *Deck) Graph() *Graph { return d.graph }

// Select отмечает трек для следующей загрузки, не трогая воспроизведение
func (d *Deck) Select(track Track) {
	d.mu.Lock()
	d.selected = track
	d.mu.Unlock()
}

// SetPlaylist задает последовательность треков деки для перехода к следующему
func (d *Deck) SetPlaylist(tracks []Track) {
	playlist := make([]Track, len(tracks))
	copy(playlist, tracks)

	d.mu.Lock()
	d.playlist = playlist
	d.mu.Unlock()
}

// Next возвращает трек, следующий в плейлисте за текущим
func (d *Deck) Next() (Track, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	current := d.loaded
	if current == nil {
		current = d.selected
	}
	if current == nil {
		return nil, false
	}
	for i, t := range d.playlist {
		if t.TrackID() == current.TrackID() {
			if i+1 < len(d.playlist) {
				return d.playlist[i+1], true
			}
			return nil, false
		}
	}
	return nil, false
}

// IsPlaying сообщает, воспроизводится ли дека
func (d *Deck) IsPlaying() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.playing
}

// State возвращает снимок состояния деки
func (d *Deck) State() DeckState {
	d.mu.RLock()
	defer d.mu.RUnlock()

	state := DeckState{
		Deck:     d.id,
		Selected: d.selected,
		Loaded:   d.loaded,
		Playlist: append([]Track(nil), d.playlist...),
		Playing:  d.playing,
	}
	if d.stream != nil {
		d.out.Lock()
		state.Position = d.format.SampleRate.D(d.stream.Position())
		state.Length = d.format.SampleRate.D(d.stream.Len())
		d.out.Unlock()
	}
	if state.Length <= 0 && d.loaded != nil {
		state.Length = d.loaded.Duration()
	}
	return state
}

// Load открывает поток трека и подключает его к цепочке деки на паузе.
// При ошибке дека сохраняет предыдущий трек и источник.
func (d *Deck) Load(ctx context.Context, track Track) error {
	if track == nil {
		return ErrNoTrack
	}
	p, err := d.prepare(ctx, track)
	if err != nil {
		return err
	}

	d.mu.Lock()
	wasPlaying, previous := d.playing, trackID(d.loaded)
	d.swapLocked(p)
	d.mu.Unlock()

	if wasPlaying {
		d.notify(Event{Deck: d.id, Playing: false, TrackID: previous})
	}
	return nil
}

// Play запускает или продолжает воспроизведение. Если выбран другой трек,
// сначала загружает его. Повторный вызов на играющей деке ничего не делает.
func (d *Deck) Play(ctx context.Context) error {
	ready, err := d.cue(ctx)
	if err != nil || !ready {
		return err
	}
	return d.resume()
}

// cue готовит деку к запуску и оставляет ее на паузе: загружает выбранный
// трек и перематывает доигравший. false означает, что дека уже играет.
func (d *Deck) cue(ctx context.Context) (bool, error) {
	d.mu.RLock()
	playing, want, loaded := d.playing, d.selected, d.loaded
	d.mu.RUnlock()

	if playing {
		return false, nil
	}
	if want == nil {
		want = loaded
	}
	if want == nil {
		return false, ErrNoTrack
	}
	if loaded == nil || loaded.TrackID() != want.TrackID() {
		if err := d.Load(ctx, want); err != nil {
			return false, err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.rewindLocked(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// resume снимает паузу с подготовленной деки
func (d *Deck) resume() error {
	d.mu.Lock()
	if d.playing {
		d.mu.Unlock()
		return nil
	}
	event, err := d.unpauseLocked()
	d.mu.Unlock()
	if err != nil {
		return err
	}
	d.notify(event)
	return nil
}

// Pause останавливает воспроизведение с сохранением позиции
func (d *Deck) Pause() {
	d.mu.Lock()
	if !d.playing {
		d.mu.Unlock()
		return
	}
	d.out.Lock()
	d.ctrl.Paused = true
	d.out.Unlock()
	d.playing = false
	event := Event{Deck: d.id, Playing: false, TrackID: trackID(d.loaded)}
	d.mu.Unlock()

	d.log.Debug("дека на паузе", zap.String("track", event.TrackID))
	d.notify(event)
}

// Close отключает источник и закрывает поток
func (d *Deck) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.generation++
	d.graph.DisconnectSource()
	if d.stream != nil {
		d.stream.Close()
		d.stream = nil
	}
	d.ctrl = nil
	d.playing = false
}

// prepare открывает поток трека без изменения состояния деки
func (d *Deck) prepare(ctx context.Context, track Track) (*prepared, error) {
	stream, format, err := track.Open(ctx)
	if err != nil {
		d.log.Warn("не удалось открыть трек", zap.String("track", track.TrackID()), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrTrackUnavailable, track.TrackID(), err)
	}
	return &prepared{track: track, stream: stream, format: format}, nil
}

// swapLocked подключает подготовленный поток вместо текущего. Вызывается под d.mu.
func (d *Deck) swapLocked(p *prepared) {
	old := d.stream

	d.stream = p.stream
	d.format = p.format
	d.loaded = p.track
	d.selected = p.track
	d.playing = false
	d.connectLocked()

	if old != nil && old != p.stream {
		old.Close()
	}
	d.log.Info("трек загружен", zap.String("track", p.track.TrackID()), zap.String("name", p.track.Name()))
}

// connectLocked собирает цепочку ctrl -> callback для текущего потока
func (d *Deck) connectLocked() {
	d.generation++
	gen := d.generation

	var s beep.Streamer = d.stream
	if rate := d.out.SampleRate(); d.format.SampleRate != 0 && d.format.SampleRate != rate {
		s = beep.Resample(4, d.format.SampleRate, rate, s)
	}
	d.ctrl = &beep.Ctrl{Streamer: s, Paused: true}
	drained := new(atomic.Bool)
	d.drained = drained

	// Колбэк выполняется в потоке рендеринга под его блокировкой, поэтому
	// обработка уходит в отдельную горутину
	d.graph.ConnectSource(beep.Seq(d.ctrl, beep.Callback(func() {
		drained.Store(true)
		go d.ended(gen)
	})))
}

// rewindLocked перематывает доигравший трек в начало. Если поток не
// перематывается, трек открывается заново.
func (d *Deck) rewindLocked(ctx context.Context) error {
	if d.stream == nil || d.ctrl == nil {
		return ErrNoTrack
	}
	if !d.drained.Load() && d.graph.Connected() {
		return nil
	}

	d.out.Lock()
	err := d.stream.Seek(0)
	d.out.Unlock()
	if err != nil {
		p, err := d.prepare(ctx, d.loaded)
		if err != nil {
			return err
		}
		d.stream.Close()
		d.stream, d.format = p.stream, p.format
	}
	d.connectLocked()
	return nil
}

// unpauseLocked снимает паузу с подключенного источника
func (d *Deck) unpauseLocked() (Event, error) {
	if d.stream == nil || d.ctrl == nil {
		return Event{}, ErrNoTrack
	}
	d.out.Lock()
	d.ctrl.Paused = false
	d.out.Unlock()
	d.playing = true

	d.log.Debug("воспроизведение", zap.String("track", trackID(d.loaded)))
	return Event{Deck: d.id, Playing: true, TrackID: trackID(d.loaded)}, nil
}

// ended обрабатывает естественное окончание трека. Автоперехода нет.
func (d *Deck) ended(gen uint64) {
	d.mu.Lock()
	if gen != d.generation || !d.playing {
		d.mu.Unlock()
		return
	}
	d.playing = false
	event := Event{Deck: d.id, Playing: false, TrackID: trackID(d.loaded)}
	d.mu.Unlock()

	d.log.Info("трек доигран", zap.String("track", event.TrackID))
	d.notify(event)
}

func trackID(t Track) string {
	if t == nil {
		return ""
	}
	return t.TrackID()
}

// switchTo заменяет трек подготовленным потоком и сразу запускает его
func (d *Deck) switchTo(p *prepared) error {
	d.mu.Lock()
	wasPlaying, previous := d.playing, trackID(d.loaded)
	d.swapLocked(p)
	event, err := d.unpauseLocked()
	d.mu.Unlock()

	if wasPlaying {
		d.notify(Event{Deck: d.id, Playing: false, TrackID: previous})
	}
	if err != nil {
		return err
	}
	d.notify(event)
	return nil
}
