package library

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gopxl/beep"

	"github.com/4lbertR/CueWave/internal/mixer"
	"github.com/4lbertR/CueWave/internal/utils"
)

// Opener открывает байтовый поток трека по его расположению
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Resolver открывает треки из файлов, по HTTP и из бакета S3
type Resolver struct {
	Bucket     *Bucket
	BufferSize int
}

// Open открывает поток. Сетевые потоки живут дольше вызова, поэтому
// отмена ctx после открытия их не обрывает.
func (r *Resolver) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTPReader(context.WithoutCancel(ctx), location, r.BufferSize)

	case strings.HasPrefix(location, "s3://"):
		bucket, key, err := ParseS3Location(location)
		if err != nil {
			return nil, err
		}
		if r.Bucket == nil {
			return nil, ErrNoBucket
		}
		if bucket != r.Bucket.Name() {
			return nil, fmt.Errorf("трек в бакете %s, настроен %s", bucket, r.Bucket.Name())
		}
		return r.Bucket.Open(context.WithoutCancel(ctx), key)

	default:
		path, err := utils.ExpandHome(location)
		if err != nil {
			return nil, err
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия файла: %w", err)
		}
		return file, nil
	}
}

// Track оборачивает метаданные в трек микшера
func (r *Resolver) Track(meta TrackMetadata) *Source {
	return &Source{meta: meta, opener: r}
}

// Tracks оборачивает плейлист в треки микшера
func (r *Resolver) Tracks(playlist []TrackMetadata) []mixer.Track {
	tracks := make([]mixer.Track, len(playlist))
	for i, meta := range playlist {
		tracks[i] = r.Track(meta)
	}
	return tracks
}

// Source - трек плейлиста. Реализует mixer.Track.
type Source struct {
	meta   TrackMetadata
	opener Opener
}

// NewSource создает трек с произвольным способом открытия
func NewSource(meta TrackMetadata, opener Opener) *Source {
	return &Source{meta: meta, opener: opener}
}

// TrackID возвращает идентификатор трека
func (s *Source) TrackID() string {
	if s.meta.ID != "" {
		return s.meta.ID
	}
	return NewTrackID(s.meta.Location)
}

// Name возвращает имя трека
func (s *Source) Name() string { return s.meta.DisplayName() }

// Duration возвращает известную длительность
func (s *Source) Duration() time.Duration {
	return time.Duration(s.meta.Length) * time.Second
}

// Metadata возвращает метаданные трека
func (s *Source) Metadata() TrackMetadata { return s.meta }

// Open открывает и декодирует поток трека
func (s *Source) Open(ctx context.Context) (beep.StreamSeekCloser, beep.Format, error) {
	rc, err := s.opener.Open(ctx, s.meta.Location)
	if err != nil {
		return nil, beep.Format{}, err
	}
	return Decode(rc, s.meta.Location)
}
