package audiotest

import (
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
)

// ManualOutput - вывод без устройства: рендеринг выполняется вызовом Pump.
// Реализует mixer.Output.
type ManualOutput struct {
	rate beep.SampleRate

	mu        sync.Mutex
	streamers []beep.Streamer
	closed    atomic.Bool
}

// NewManualOutput создает вывод с заданной частотой
func NewManualOutput(rate beep.SampleRate) *ManualOutput {
	return &ManualOutput{rate: rate}
}

func (o *ManualOutput) SampleRate() beep.SampleRate { return o.rate }

// Play добавляет поток к рендерингу
func (o *ManualOutput) Play(s beep.Streamer) {
	o.mu.Lock()
	o.streamers = append(o.streamers, s)
	o.mu.Unlock()
}

func (o *ManualOutput) Lock()   { o.mu.Lock() }
func (o *ManualOutput) Unlock() { o.mu.Unlock() }

// Close помечает вывод закрытым
func (o *ManualOutput) Close() error {
	o.closed.Store(true)
	return nil
}

// Closed сообщает, был ли вызван Close
func (o *ManualOutput) Closed() bool { return o.closed.Load() }

// Pump рендерит n сэмплов всех потоков под блокировкой, как это делают динамики
func (o *ManualOutput) Pump(n int) [][2]float64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	mix := make([][2]float64, n)
	buf := make([][2]float64, n)
	for _, s := range o.streamers {
		clear(buf)
		got, _ := s.Stream(buf)
		for i := range got {
			mix[i][0] += buf[i][0]
			mix[i][1] += buf[i][1]
		}
	}
	return mix
}
