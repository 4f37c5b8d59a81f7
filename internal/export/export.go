// Package export сохраняет снимок плейлиста в файл или в объектное хранилище
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hazadus/go-portfolio/internal/playlist"
)

// ContentType тип содержимого снимка
const ContentType = "application/json"

// Snapshot снимок плейлиста на момент экспорта
type Snapshot struct {
	ExportedAt time.Time          `json:"exportedAt"`
	Source     string             `json:"source"`
	Playlist   *playlist.Playlist `json:"playlist"`
}

// ObjectStore хранилище, в которое публикуются снимки; *s3.Uploader удовлетворяет интерфейсу
type ObjectStore interface {
	Upload(ctx context.Context, reader io.Reader, key, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Exporter сериализует и сохраняет снимки
type Exporter struct {
	store  ObjectStore
	logger *zap.Logger
	now    func() time.Time
}

// NewExporter создает новый Exporter; store может быть nil, если S3 не настроен
func NewExporter(store ObjectStore, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{store: store, logger: logger, now: time.Now}
}

// HasStore возвращает true, если настроено объектное хранилище
func (e *Exporter) HasStore() bool {
	return e.store != nil
}

// NewSnapshot создает снимок плейлиста
func (e *Exporter) NewSnapshot(p *playlist.Playlist, source string) Snapshot {
	return Snapshot{
		ExportedAt: e.now().UTC(),
		Source:     source,
		Playlist:   p,
	}
}

// Encode пишет снимок в JSON с отступами
func Encode(w io.Writer, s Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("ошибка сериализации снимка: %w", err)
	}
	return nil
}

// Decode читает снимок из JSON
func Decode(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("ошибка чтения снимка: %w", err)
	}
	if s.Playlist == nil {
		return Snapshot{}, fmt.Errorf("снимок не содержит плейлист")
	}
	return s, nil
}

// WriteFile сохраняет снимок в файл, создавая каталоги при необходимости
func (e *Exporter) WriteFile(path string, s Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ошибка создания каталога: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return err
	}

	// запись через временный файл и rename
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("ошибка записи файла: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ошибка записи файла: %w", err)
	}

	e.logger.Info("Снимок сохранён", zap.String("path", path), zap.Int("tracks", s.Playlist.Len()))
	return nil
}

// ReadFile читает снимок из файла
func ReadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Publish загружает снимок в объектное хранилище и возвращает его URL
func (e *Exporter) Publish(ctx context.Context, key string, s Snapshot) (string, error) {
	if e.store == nil {
		return "", fmt.Errorf("объектное хранилище не настроено")
	}

	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return "", err
	}

	url, err := e.store.Upload(ctx, &buf, key, ContentType)
	if err != nil {
		return "", err
	}

	e.logger.Info("Снимок опубликован", zap.String("key", key), zap.String("url", url))
	return url, nil
}

// Unpublish удаляет снимок из объектного хранилища
func (e *Exporter) Unpublish(ctx context.Context, key string) error {
	if e.store == nil {
		return fmt.Errorf("объектное хранилище не настроено")
	}
	if err := e.store.Delete(ctx, key); err != nil {
		return err
	}

	e.logger.Info("Снимок удалён", zap.String("key", key))
	return nil
}

// FileSource отдаёт плейлист из ранее сохранённого снимка
type FileSource struct {
	Path string
}

// GetPlaylist читает плейлист из файла снимка
func (s FileSource) GetPlaylist(ctx context.Context) (*playlist.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	return snap.Playlist, nil
}

// ResetState ничего не делает: файл читается заново при каждом вызове
func (s FileSource) ResetState() {}
