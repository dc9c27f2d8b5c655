package library

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// ErrUnsupportedFormat - для расширения файла нет декодера
var ErrUnsupportedFormat = errors.New("неподдерживаемый формат")

// DecodeFunc декодирует поток в beep.StreamSeekCloser.
// Закрытие результата закрывает исходный поток.
type DecodeFunc func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]DecodeFunc{
	".mp3": mp3.Decode,
	".ogg": vorbis.Decode,
	".wav": func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(rc)
	},
}

// Extension возвращает расширение файла для пути, URL или адреса S3
func Extension(location string) string {
	p := location
	if strings.Contains(location, "://") {
		if u, err := url.Parse(location); err == nil {
			p = path.Clean("/" + u.Path)
		}
		return strings.ToLower(path.Ext(p))
	}
	return strings.ToLower(filepath.Ext(p))
}

// Supported сообщает, есть ли декодер для расположения
func Supported(location string) bool {
	_, ok := decoders[Extension(location)]
	return ok
}

// Decode выбирает декодер по расширению и декодирует поток.
// При ошибке поток закрывается.
func Decode(rc io.ReadCloser, location string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := Extension(location)
	decode, ok := decoders[ext]
	if !ok {
		rc.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	stream, format, err := decode(rc)
	if err != nil {
		rc.Close()
		return nil, beep.Format{}, fmt.Errorf("ошибка декодирования %s: %w", strings.TrimPrefix(ext, "."), err)
	}
	return stream, format, nil
}
