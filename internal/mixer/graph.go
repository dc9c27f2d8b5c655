package mixer

import (
	"math"
	"sync/atomic"

	"github.com/gopxl/beep"
)

// gainStage хранит значение усиления, которое читает поток рендеринга.
// Запись идет из управляющих горутин, чтение - из колбэка динамиков,
// поэтому значение хранится атомарно и рендер никогда не ждет блокировку.
type gainStage struct {
	bits atomic.Uint64
}

func newGainStage(v float64) *gainStage {
	s := &gainStage{}
	s.set(v)
	return s
}

func (s *gainStage) set(v float64) { s.bits.Store(math.Float64bits(v)) }
func (s *gainStage) get() float64  { return math.Float64frombits(s.bits.Load()) }

// Graph - сигнальная цепочка одной деки: источник -> sourceGain -> fadeGain -> шина.
//
// Узлы усиления живут столько же, сколько дека; при смене трека
// переподключается только источник, значения усиления сохраняются.
type Graph struct {
	out Output

	sourceGain *gainStage
	fadeGain   *gainStage

	// Поля ниже принадлежат потоку рендеринга и меняются только под out.Lock()
	source  beep.Streamer
	applied float64
}

// NewGraph создает цепочку деки с единичными усилениями и без источника
func NewGraph(out Output) *Graph {
	return &Graph{
		out:        out,
		sourceGain: newGainStage(1.0),
		fadeGain:   newGainStage(1.0),
		applied:    1.0,
	}
}

// SetSourceGain записывает ступень громкости деки (слайдеры и mute)
func (g *Graph) SetSourceGain(v float64) { g.sourceGain.set(v) }

// SourceGain возвращает текущее значение ступени громкости
func (g *Graph) SourceGain() float64 { return g.sourceGain.get() }

// SetFadeGain записывает огибающую фейда. Пишет только FadeController.
func (g *Graph) SetFadeGain(v float64) { g.fadeGain.set(v) }

// FadeGain возвращает текущее значение огибающей
func (g *Graph) FadeGain() float64 { return g.fadeGain.get() }

// Output возвращает итоговое усиление деки
func (g *Graph) Output() float64 { return g.sourceGain.get() * g.fadeGain.get() }

// ConnectSource подключает новый источник, предварительно отключив старый
func (g *Graph) ConnectSource(s beep.Streamer) {
	g.out.Lock()
	g.source = s
	g.out.Unlock()
}

// DisconnectSource отключает источник; узлы усиления остаются на месте
func (g *Graph) DisconnectSource() {
	g.ConnectSource(nil)
}

// Connected сообщает, подключен ли сейчас источник
func (g *Graph) Connected() bool {
	g.out.Lock()
	defer g.out.Unlock()
	return g.source != nil
}

// Stream реализует beep.Streamer. Вызывается потоком рендеринга под его блокировкой.
func (g *Graph) Stream(samples [][2]float64) (n int, ok bool) {
	if g.source != nil {
		var more bool
		n, more = g.source.Stream(samples)
		if !more {
			g.source = nil
		}
	}
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}

	// Линейно ведем усиление от прошлого буфера к новому, чтобы не было щелчков
	target := g.Output()
	from := g.applied
	if n > 0 {
		step := (target - from) / float64(n)
		for i := 0; i < n; i++ {
			gain := from + step*float64(i+1)
			samples[i][0] *= gain
			samples[i][1] *= gain
		}
	}
	g.applied = target

	return len(samples), true
}

// Err реализует beep.Streamer
func (g *Graph) Err() error { return nil }
