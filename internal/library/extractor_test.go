package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractFromNoMetadataFile(t *testing.T) {
	tempDir := t.TempDir()
	testFilePath := filepath.Join(tempDir, "Artist - Title.mp3")

	// Создаем файл с именем в формате "Artist - Title"
	if err := os.WriteFile(testFilePath, []byte("fake content"), 0644); err != nil {
		t.Fatalf("Ошибка создания тестового файла: %v", err)
	}

	tags := NewExtractor().ExtractFromFile(testFilePath)
	if tags.Artist != "Artist" {
		t.Errorf("Ожидался Artist: Artist, получено: %s", tags.Artist)
	}
	if tags.Title != "Title" {
		t.Errorf("Ожидался Title: Title, получено: %s", tags.Title)
	}
}

func TestDefaultTags(t *testing.T) {
	extractor := NewExtractor()

	tests := []struct {
		source string
		artist string
		title  string
	}{
		{"/path/Artist - Title.mp3", "Artist", "Title"},
		{"Artist - Title - Remix.wav", "Artist", "Title - Remix"},
		{"mixes/untitled.ogg", "Unknown Artist", "untitled"},
	}

	for _, test := range tests {
		tags := extractor.defaultTags(test.source)
		if tags.Artist != test.artist || tags.Title != test.title {
			t.Errorf("defaultTags(%s) = %q, %q; expected %q, %q",
				test.source, tags.Artist, tags.Title, test.artist, test.title)
		}
	}
}

func TestDescribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "DJ - Intro.wav")
	writeWAV(t, path, 88200)

	meta, err := NewExtractor().Describe(path)
	if err != nil {
		t.Fatalf("Ошибка чтения метаданных: %v", err)
	}
	if meta.Artist != "DJ" || meta.Title != "Intro" {
		t.Errorf("Неверные теги: %q, %q", meta.Artist, meta.Title)
	}
	if meta.Length != 2 {
		t.Errorf("Ожидалась длина 2 секунды, получено %d", meta.Length)
	}
	if meta.FileSize == 0 {
		t.Error("Размер файла должен быть заполнен")
	}
	if meta.ID != NewTrackID(meta.Location) || !filepath.IsAbs(meta.Location) {
		t.Errorf("Неверное расположение или ID: %s, %s", meta.Location, meta.ID)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "one.wav"), 4410)
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("Ошибка создания каталога: %v", err)
	}
	writeWAV(t, filepath.Join(dir, "sub", "two.wav"), 4410)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0644); err != nil {
		t.Fatalf("Ошибка создания файла: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.wav"), []byte("garbage"), 0644); err != nil {
		t.Fatalf("Ошибка создания файла: %v", err)
	}

	tracks, err := NewExtractor().Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Ошибка сканирования: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("Ожидалось 2 трека, найдено %d", len(tracks))
	}
}

func TestDescribeObject(t *testing.T) {
	meta := NewExtractor().DescribeObject("music", Object{Key: "sets/Artist - Opening.mp3", Size: 42})

	if meta.Location != "s3://music/sets/Artist - Opening.mp3" {
		t.Errorf("Неверное расположение: %s", meta.Location)
	}
	if meta.Artist != "Artist" || meta.Title != "Opening" || meta.FileSize != 42 {
		t.Errorf("Неверные метаданные: %+v", meta)
	}
}

func TestDescribeURL(t *testing.T) {
	extractor := NewExtractor()

	meta, err := extractor.DescribeURL("https://cdn.example.com/music/Artist%20-%20Song.mp3?token=1")
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if meta.Artist != "Artist" || meta.Title != "Song" {
		t.Errorf("Неверные теги: %q / %q", meta.Artist, meta.Title)
	}
	if meta.ID != NewTrackID(meta.Location) {
		t.Error("ID должен выводиться из URL")
	}

	if _, err := extractor.DescribeURL("not a url"); err == nil {
		t.Error("Ожидалась ошибка для неверного URL")
	}
}
