package mixer

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Output - устройство вывода, в которое движок отдает мастер-шину.
//
// Lock/Unlock защищают структуры, которые читает поток рендеринга;
// удерживать блокировку можно только на короткие операции.
type Output interface {
	SampleRate() beep.SampleRate
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Close() error
}

// SpeakerOutput выводит звук через системные динамики (beep/speaker)
type SpeakerOutput struct {
	sampleRate beep.SampleRate
	closeOnce  sync.Once
}

// NewSpeakerOutput инициализирует динамики. В процессе допустим один экземпляр.
func NewSpeakerOutput(sampleRate beep.SampleRate, buffer time.Duration) (*SpeakerOutput, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(buffer)); err != nil {
		return nil, fmt.Errorf("ошибка инициализации динамиков: %w", err)
	}
	return &SpeakerOutput{sampleRate: sampleRate}, nil
}

// SampleRate возвращает частоту дискретизации вывода
func (o *SpeakerOutput) SampleRate() beep.SampleRate { return o.sampleRate }

// Play добавляет поток в микшер динамиков
func (o *SpeakerOutput) Play(s beep.Streamer) { speaker.Play(s) }

// Lock блокирует поток рендеринга динамиков
func (o *SpeakerOutput) Lock() { speaker.Lock() }

// Unlock снимает блокировку рендеринга
func (o *SpeakerOutput) Unlock() { speaker.Unlock() }

// Close останавливает вывод
func (o *SpeakerOutput) Close() error {
	o.closeOnce.Do(func() {
		speaker.Clear()
		speaker.Close()
	})
	return nil
}
