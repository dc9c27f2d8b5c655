// Package audiotest содержит синтетические треки и управляемый вручную вывод
// для тестов микшера без звуковой карты.
package audiotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
)

// SampleRate - частота дискретизации синтетических треков по умолчанию
const SampleRate = beep.SampleRate(44100)

// ErrSeek возвращается при перемотке за границы потока
var ErrSeek = errors.New("audiotest: позиция вне потока")

// Stream - конечный поток с постоянным значением сэмплов
type Stream struct {
	value  float64
	length int
	pos    int
	closed atomic.Bool
}

// NewStream создает поток длиной length сэмплов со значением value
func NewStream(length int, value float64) *Stream {
	return &Stream{value: value, length: length}
}

// Stream реализует beep.Streamer
func (s *Stream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= s.length {
		return 0, false
	}
	n = min(len(samples), s.length-s.pos)
	for i := range n {
		samples[i] = [2]float64{s.value, s.value}
	}
	s.pos += n
	return n, true
}

// Err реализует beep.Streamer
func (s *Stream) Err() error { return nil }

// Len возвращает длину потока в сэмплах
func (s *Stream) Len() int { return s.length }

// Position возвращает текущую позицию в сэмплах
func (s *Stream) Position() int { return s.pos }

// Seek перематывает поток
func (s *Stream) Seek(p int) error {
	if p < 0 || p > s.length {
		return fmt.Errorf("%w: %d", ErrSeek, p)
	}
	s.pos = p
	return nil
}

// Close помечает поток закрытым
func (s *Stream) Close() error {
	s.closed.Store(true)
	return nil
}

// Closed сообщает, был ли поток закрыт
func (s *Stream) Closed() bool { return s.closed.Load() }

// Track - синтетический трек. Реализует mixer.Track.
type Track struct {
	ID    string
	Title string
	// Samples - длина трека в сэмплах
	Samples int
	Value   float64
	Rate    beep.SampleRate
	// Fail, если задан, возвращается из Open
	Fail error

	mu      sync.Mutex
	streams []*Stream
}

// NewTrack создает трек с постоянным сигналом 0.5
func NewTrack(id string, samples int) *Track {
	return &Track{
		ID:      id,
		Title:   "track " + id,
		Samples: samples,
		Value:   0.5,
		Rate:    SampleRate,
	}
}

// NewFailingTrack создает трек, который не открывается
func NewFailingTrack(id string, err error) *Track {
	t := NewTrack(id, 0)
	t.Fail = err
	return t
}

func (t *Track) TrackID() string { return t.ID }
func (t *Track) Name() string    { return t.Title }

// Duration возвращает длительность по числу сэмплов
func (t *Track) Duration() time.Duration { return t.Rate.D(t.Samples) }

// Open создает новый поток трека
func (t *Track) Open(ctx context.Context) (beep.StreamSeekCloser, beep.Format, error) {
	if err := ctx.Err(); err != nil {
		return nil, beep.Format{}, err
	}
	if t.Fail != nil {
		return nil, beep.Format{}, t.Fail
	}
	s := NewStream(t.Samples, t.Value)

	t.mu.Lock()
	t.streams = append(t.streams, s)
	t.mu.Unlock()

	return s, beep.Format{SampleRate: t.Rate, NumChannels: 2, Precision: 2}, nil
}

// Opens возвращает число открытых потоков
func (t *Track) Opens() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.streams)
}

// LastStream возвращает последний открытый поток или nil
func (t *Track) LastStream() *Stream {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.streams) == 0 {
		return nil
	}
	return t.streams[len(t.streams)-1]
}
