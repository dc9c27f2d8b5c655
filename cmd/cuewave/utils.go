package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/4lbertR/CueWave/internal/mixer"
)

// parseDeck переводит имя деки из аргумента команды
func parseDeck(name string) (mixer.DeckID, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "a":
		return mixer.DeckA, nil
	case "b":
		return mixer.DeckB, nil
	default:
		return 0, fmt.Errorf("%w: %q, ожидается a или b", mixer.ErrUnknownDeck, name)
	}
}

// ProgressReader отслеживает прогресс чтения
type ProgressReader struct {
	io.Reader
	OnProgress func(int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil {
		pr.OnProgress(pr.bytesRead)
	}
	return n, err
}
