package library

import (
	"os"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/4lbertR/CueWave/internal/audiotest"
)

// writeWAV записывает тестовый WAV длиной samples сэмплов
func writeWAV(t *testing.T, path string, samples int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Ошибка создания тестового файла: %v", err)
	}
	defer f.Close()

	format := beep.Format{SampleRate: audiotest.SampleRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, audiotest.NewStream(samples, 0.25), format); err != nil {
		t.Fatalf("Ошибка записи WAV: %v", err)
	}
}
