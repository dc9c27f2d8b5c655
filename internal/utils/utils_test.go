package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{59 * time.Second, "00:59"},
		{60 * time.Second, "01:00"},
		{61*time.Minute + 1*time.Second, "01:01:01"},
		{25*time.Hour + 45*time.Minute + 30*time.Second, "25:45:30"},
	}

	for _, test := range tests {
		result := FormatDuration(test.duration)
		if result != test.expected {
			t.Errorf("FormatDuration(%v) = %s; expected %s", test.duration, result, test.expected)
		}
	}
}

func TestFormatDurationFromSeconds(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{3661, "01:01:01"},
	}

	for _, test := range tests {
		result := FormatDurationFromSeconds(test.seconds)
		if result != test.expected {
			t.Errorf("FormatDurationFromSeconds(%d) = %s; expected %s", test.seconds, result, test.expected)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := FormatSeconds(1500 * time.Millisecond); got != "1.5s" {
		t.Errorf("FormatSeconds(1.5s) = %s; expected 1.5s", got)
	}
	if got := FormatSeconds(0); got != "0.0s" {
		t.Errorf("FormatSeconds(0) = %s; expected 0.0s", got)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10", 10, "exactly10"},
		{"this is a very long string", 10, "this is..."},
		{"abcd", 3, "abc"},
		{"Привет, мир", 8, "Приве..."},
	}

	for _, test := range tests {
		result := TruncateString(test.input, test.maxLen)
		if result != test.expected {
			t.Errorf("TruncateString(%s, %d) = %s; expected %s", test.input, test.maxLen, result, test.expected)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Домашний каталог недоступен")
	}

	got, err := ExpandHome("~/.cuewave/decks.yaml")
	if err != nil {
		t.Fatalf("Ошибка раскрытия пути: %v", err)
	}
	if want := filepath.Join(home, ".cuewave", "decks.yaml"); got != want {
		t.Errorf("Ожидался путь %s, получено %s", want, got)
	}

	// Тильда не в начале пути не трогается
	if got, _ := ExpandHome("/music/~mix.mp3"); got != "/music/~mix.mp3" {
		t.Errorf("Путь без ведущей тильды не должен меняться, получено %s", got)
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}

	for _, test := range tests {
		if result := FormatFileSize(test.bytes); result != test.expected {
			t.Errorf("FormatFileSize(%d) = %s, expected %s", test.bytes, result, test.expected)
		}
	}
}
