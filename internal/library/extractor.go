package library

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
)

// Tags - теги трека
type Tags struct {
	Artist string
	Title  string
	Album  string
}

// Extractor извлекает теги и длительность аудио файлов
type Extractor struct{}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFromReader читает теги. Если тегов нет, разбирает имя source.
func (e *Extractor) ExtractFromReader(reader io.ReadSeeker, source string) Tags {
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return e.defaultTags(source)
	}

	metadata, err := tag.ReadFrom(reader)
	if err != nil {
		return e.defaultTags(source)
	}

	tags := Tags{
		Artist: metadata.Artist(),
		Title:  metadata.Title(),
		Album:  metadata.Album(),
	}
	if tags.Title == "" {
		fallback := e.defaultTags(source)
		tags.Title = fallback.Title
		if tags.Artist == "" {
			tags.Artist = fallback.Artist
		}
	}
	return tags
}

// ExtractFromFile читает теги файла
func (e *Extractor) ExtractFromFile(filePath string) Tags {
	file, err := os.Open(filePath)
	if err != nil {
		return e.defaultTags(filePath)
	}
	defer file.Close()

	return e.ExtractFromReader(file, filePath)
}

// Duration декодирует файл и вычисляет длительность
func (e *Extractor) Duration(filePath string) (time.Duration, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия файла: %w", err)
	}

	stream, format, err := Decode(file, filePath)
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	return format.SampleRate.D(stream.Len()), nil
}

// Describe собирает метаданные локального файла для плейлиста
func (e *Extractor) Describe(filePath string) (TrackMetadata, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return TrackMetadata{}, fmt.Errorf("ошибка определения пути: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return TrackMetadata{}, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}

	duration, err := e.Duration(abs)
	if err != nil {
		return TrackMetadata{}, fmt.Errorf("ошибка получения длительности: %w", err)
	}

	tags := e.ExtractFromFile(abs)
	return TrackMetadata{
		ID:       NewTrackID(abs),
		Artist:   tags.Artist,
		Title:    tags.Title,
		Album:    tags.Album,
		Length:   int(duration.Round(time.Second) / time.Second),
		FileSize: info.Size(),
		Location: abs,
	}, nil
}

// DescribeObject собирает метаданные объекта бакета по его ключу
func (e *Extractor) DescribeObject(bucket string, obj Object) TrackMetadata {
	location := S3Location(bucket, obj.Key)
	tags := e.defaultTags(obj.Key)
	return TrackMetadata{
		ID:       NewTrackID(location),
		Artist:   tags.Artist,
		Title:    tags.Title,
		FileSize: obj.Size,
		Location: location,
	}
}

// DescribeURL собирает метаданные трека по HTTP из имени файла в URL
func (e *Extractor) DescribeURL(rawURL string) (TrackMetadata, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return TrackMetadata{}, fmt.Errorf("неверный URL: %s", rawURL)
	}
	tags := e.defaultTags(path.Base(u.Path))
	return TrackMetadata{
		ID:       NewTrackID(rawURL),
		Artist:   tags.Artist,
		Title:    tags.Title,
		Location: rawURL,
	}, nil
}

// Scan находит в каталоге все файлы с поддерживаемыми форматами
func (e *Extractor) Scan(ctx context.Context, dir string) ([]TrackMetadata, error) {
	var tracks []TrackMetadata
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}
		meta, err := e.Describe(path)
		if err != nil {
			// Битый файл не мешает импорту остальных
			return nil
		}
		tracks = append(tracks, meta)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка обхода каталога %s: %w", dir, err)
	}
	return tracks, nil
}

// defaultTags разбирает имя файла в формате "Artist - Title"
func (e *Extractor) defaultTags(source string) Tags {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	parts := strings.Split(nameWithoutExt, " - ")
	if len(parts) >= 2 {
		return Tags{
			Artist: strings.TrimSpace(parts[0]),
			Title:  strings.TrimSpace(strings.Join(parts[1:], " - ")),
		}
	}

	return Tags{
		Artist: "Unknown Artist",
		Title:  nameWithoutExt,
	}
}
