// Package streaming содержит компоненты для загрузки аудио по HTTP
package streaming

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultPreloadLimit ограничивает размер превью, загружаемого в память
const DefaultPreloadLimit = 16 * 1024 * 1024

// ErrTooLarge возвращается, если источник больше допустимого размера
var ErrTooLarge = errors.New("источник превышает допустимый размер")

var client = &http.Client{
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

// Reader представляет буферизованный поток для чтения данных порциями
type Reader struct {
	reader     *bufio.Reader
	resp       *http.Response
	bufferSize int
}

// NewReader создает новый потоковый ридер
func NewReader(ctx context.Context, url string, bufferSize int) (*Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Range", "bytes=0-")
	req.Header.Set("User-Agent", "go-portfolio/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("ошибка HTTP: %s", resp.Status)
	}

	return &Reader{
		reader:     bufio.NewReaderSize(resp.Body, bufferSize),
		resp:       resp,
		bufferSize: bufferSize,
	}, nil
}

// Read реализует интерфейс io.Reader для потокового чтения
func (sr *Reader) Read(p []byte) (n int, err error) {
	return sr.reader.Read(p)
}

// Close закрывает соединение
func (sr *Reader) Close() error {
	return sr.resp.Body.Close()
}

// Source загруженный в память источник с поддержкой перемотки
type Source struct {
	*bytes.Reader
}

// Close реализует io.Closer; память освобождает сборщик мусора
func (s *Source) Close() error {
	return nil
}

// Preload загружает источник целиком: без io.Seeker декодер mp3 не знает
// длительность и не умеет перематывать
func Preload(ctx context.Context, url string, limit int64) (*Source, error) {
	if limit <= 0 {
		limit = DefaultPreloadLimit
	}

	sr, err := NewReader(ctx, url, 256*1024)
	if err != nil {
		return nil, err
	}
	defer sr.Close()

	data, err := io.ReadAll(io.LimitReader(sr, limit+1))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения источника: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: больше %d байт", ErrTooLarge, limit)
	}

	return &Source{Reader: bytes.NewReader(data)}, nil
}
