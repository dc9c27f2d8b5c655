package tui

import (
	"testing"

	"github.com/4lbertR/CueWave/internal/audiotest"
	"github.com/4lbertR/CueWave/internal/mixer"
)

func TestNewApp(t *testing.T) {
	e, err := mixer.New(audiotest.NewManualOutput(audiotest.SampleRate), mixer.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("Ошибка создания движка: %v", err)
	}
	defer e.Close()

	app := NewApp(e, nil)
	if app == nil {
		t.Fatal("NewApp returned nil")
	}
	if app.log == nil {
		t.Error("Логгер должен быть задан по умолчанию")
	}
	if app.mixer == nil {
		t.Error("Микшер должен быть сохранен")
	}
}
