// Package library хранит плейлисты дек и открывает треки из файлов, по HTTP и из S3
package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/4lbertR/CueWave/internal/mixer"
	"github.com/4lbertR/CueWave/internal/utils"
)

// TrackMetadata описывает трек плейлиста
type TrackMetadata struct {
	ID       string `yaml:"id"`
	Artist   string `yaml:"artist"`
	Title    string `yaml:"title"`
	Album    string `yaml:"album,omitempty"`
	Length   int    `yaml:"length"`    // Длина трека в секундах, 0 если неизвестна
	FileSize int64  `yaml:"file_size"` // Размер файла в байтах
	Location string `yaml:"location"`  // Путь к файлу, http(s):// или s3://bucket/key
}

// DisplayName возвращает имя трека для интерфейса
func (m TrackMetadata) DisplayName() string {
	switch {
	case m.Artist != "" && m.Title != "":
		return m.Artist + " - " + m.Title
	case m.Title != "":
		return m.Title
	default:
		return filepath.Base(m.Location)
	}
}

// NewTrackID выводит стабильный идентификатор трека из его расположения
func NewTrackID(location string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(location)).String()
}

// DeckSet - плейлисты обеих дек
type DeckSet struct {
	DeckA []TrackMetadata `yaml:"deck_a"`
	DeckB []TrackMetadata `yaml:"deck_b"`
}

// NewDeckSet создает пустой набор плейлистов
func NewDeckSet() *DeckSet {
	return &DeckSet{
		DeckA: make([]TrackMetadata, 0),
		DeckB: make([]TrackMetadata, 0),
	}
}

// Load загружает плейлисты из файла. Отсутствующий файл дает пустой набор.
func (s *DeckSet) Load(filePath string) error {
	path, err := utils.ExpandHome(filePath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// Если файл не найден, начинаем с пустых плейлистов
		if os.IsNotExist(err) {
			*s = *NewDeckSet()
			return nil
		}
		return fmt.Errorf("ошибка чтения файла плейлистов: %w", err)
	}

	loaded := NewDeckSet()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return fmt.Errorf("ошибка разбора плейлистов: %w", err)
	}
	*s = *loaded
	return nil
}

// Save сохраняет плейлисты в файл, создавая каталог при необходимости
func (s *DeckSet) Save(filePath string) error {
	path, err := utils.ExpandHome(filePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ошибка создания каталога плейлистов: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("ошибка сериализации плейлистов: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла плейлистов: %w", err)
	}
	return nil
}

// Playlist возвращает плейлист деки
func (s *DeckSet) Playlist(deck mixer.DeckID) []TrackMetadata {
	if deck == mixer.DeckB {
		return s.DeckB
	}
	return s.DeckA
}

func (s *DeckSet) playlist(deck mixer.DeckID) *[]TrackMetadata {
	if deck == mixer.DeckB {
		return &s.DeckB
	}
	return &s.DeckA
}

// Add добавляет трек в конец плейлиста деки.
// Трек с тем же расположением повторно не добавляется.
func (s *DeckSet) Add(deck mixer.DeckID, track TrackMetadata) (TrackMetadata, bool) {
	track.ID = NewTrackID(track.Location)

	list := s.playlist(deck)
	for _, t := range *list {
		if t.ID == track.ID {
			return t, false
		}
	}
	*list = append(*list, track)
	return track, true
}

// Remove удаляет трек из плейлиста деки
func (s *DeckSet) Remove(deck mixer.DeckID, id string) bool {
	list := s.playlist(deck)
	for i, t := range *list {
		if t.ID == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

// TrackByID ищет трек на обеих деках
func (s *DeckSet) TrackByID(id string) (*TrackMetadata, error) {
	for _, deck := range mixer.Decks {
		list := s.playlist(deck)
		for i := range *list {
			if (*list)[i].ID == id {
				return &(*list)[i], nil
			}
		}
	}
	return nil, fmt.Errorf("трека с ID %s не найдено", id)
}
