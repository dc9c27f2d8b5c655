package library

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// DefaultBufferSize - размер буфера потокового чтения
const DefaultBufferSize = 256 * 1024

// streamClient без общего таймаута: тело трека читается все время воспроизведения
var streamClient = &http.Client{
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       300 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

// HTTPReader - буферизованный поток трека по HTTP
type HTTPReader struct {
	reader *bufio.Reader
	resp   *http.Response
}

// NewHTTPReader открывает поток трека по URL
func NewHTTPReader(ctx context.Context, url string, bufferSize int) (*HTTPReader, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Accept-Encoding", "identity") // Сжатие мешает декодеру
	req.Header.Set("Range", "bytes=0-")
	req.Header.Set("User-Agent", "cuewave/1.0")

	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("ошибка HTTP: %s", resp.Status)
	}

	return &HTTPReader{
		reader: bufio.NewReaderSize(resp.Body, bufferSize),
		resp:   resp,
	}, nil
}

// Read реализует io.Reader
func (r *HTTPReader) Read(p []byte) (int, error) {
	return r.reader.Read(p)
}

// Close закрывает соединение
func (r *HTTPReader) Close() error {
	return r.resp.Body.Close()
}
