// Package music управляет воспроизведением плейлиста: текущий трек,
// громкость, переходы между треками и реакция на события плеера
package music

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hazadus/go-portfolio/internal/player"
	"github.com/hazadus/go-portfolio/internal/playlist"
)

// DefaultVolume громкость при старте
const DefaultVolume = 0.7

// Ошибки контроллера
var (
	ErrNoPreview   = errors.New("для этого трека нет превью")
	ErrNoTrack     = errors.New("трек не загружен")
	ErrNoPlaylist  = errors.New("плейлист не загружен")
	ErrNoNext      = errors.New("следующего трека нет")
	ErrNoPrevious  = errors.New("предыдущего трека нет")
	ErrInterrupted = errors.New("воспроизведение прервано")
)

// PlaylistSource поставляет плейлист; *playlist.Client удовлетворяет интерфейсу
type PlaylistSource interface {
	GetPlaylist(ctx context.Context) (*playlist.Playlist, error)
	ResetState()
}

// State снимок состояния для отображения
type State struct {
	Playlist     *playlist.Playlist
	CurrentTrack *playlist.Track
	IsPlaying    bool
	IsLoading    bool
	CurrentTime  time.Duration
	Duration     time.Duration
	Volume       float64
	Error        string
}

// Controller связывает плейлист с плеером
type Controller struct {
	audio  player.Audio
	source PlaylistSource
	logger *zap.Logger

	mu          sync.Mutex
	playlist    *playlist.Playlist
	current     *playlist.Track
	loadedURL   string
	loadSeq     uint64
	isPlaying   bool
	isLoading   bool
	currentTime time.Duration
	duration    time.Duration
	volume      float64
	err         string
}

// NewController создает новый контроллер
func NewController(audio player.Audio, source PlaylistSource, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	audio.SetVolume(DefaultVolume)
	return &Controller{
		audio:  audio,
		source: source,
		logger: logger,
		volume: DefaultVolume,
	}
}

// Snapshot возвращает текущее состояние
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Playlist:     c.playlist,
		CurrentTrack: c.current,
		IsPlaying:    c.isPlaying,
		IsLoading:    c.isLoading,
		CurrentTime:  c.currentTime,
		Duration:     c.duration,
		Volume:       c.volume,
		Error:        c.err,
	}
}

// Refresh загружает плейлист из источника
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.isLoading = true
	c.mu.Unlock()

	p, err := c.source.GetPlaylist(ctx)

	c.mu.Lock()
	c.isLoading = false
	if err != nil {
		c.err = Describe(err)
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	c.LoadPlaylist(p)
	return nil
}

// Retry сбрасывает состояние источника и загружает плейлист заново
func (c *Controller) Retry(ctx context.Context) error {
	c.source.ResetState()
	return c.Refresh(ctx)
}

// LoadPlaylist устанавливает плейлист и выбирает первый трек
func (c *Controller) LoadPlaylist(p *playlist.Playlist) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.playlist = p
	c.current = nil
	if p.Len() > 0 {
		c.current = &p.Tracks[0]
	}
	c.err = ""

	c.logger.Debug("Плейлист установлен", zap.Int("tracks", p.Len()))
}

// LoadTrack загружает превью трека в плеер.
// Если во время загрузки вызваны Stop или LoadTrack, возвращает ErrInterrupted.
func (c *Controller) LoadTrack(track playlist.Track) error {
	_, err := c.load(track)
	return err
}

func (c *Controller) load(track playlist.Track) (uint64, error) {
	if !track.HasPreview() {
		c.setError(ErrNoPreview.Error())
		return 0, ErrNoPreview
	}

	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.isLoading = true
	c.isPlaying = false
	c.err = ""
	c.current = &track
	c.loadedURL = ""
	c.currentTime = 0
	c.duration = 0
	volume := c.volume
	c.mu.Unlock()

	c.audio.SetVolume(volume)
	err := c.audio.LoadSource(track.PreviewURL)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.loadSeq {
		c.logger.Debug("Загрузка превью прервана", zap.String("track", track.ID))
		return 0, ErrInterrupted
	}
	c.isLoading = false
	if err != nil {
		c.err = "ошибка загрузки трека"
		c.logger.Warn("Не удалось загрузить превью", zap.String("track", track.ID), zap.Error(err))
		return 0, err
	}
	c.loadedURL = track.PreviewURL
	return seq, nil
}

// Play воспроизводит текущий трек, при необходимости загружая его
func (c *Controller) Play(ctx context.Context) error {
	c.mu.Lock()
	current := c.current
	loaded := c.loadedURL
	seq := c.loadSeq
	c.mu.Unlock()

	if current == nil || !current.HasPreview() {
		c.setError(ErrNoTrack.Error())
		return ErrNoTrack
	}

	if loaded != current.PreviewURL {
		var err error
		if seq, err = c.load(*current); err != nil {
			return err
		}
	}
	return c.start(ctx, seq)
}

// start запускает плеер, если после загрузки seq не было Stop или новой загрузки
func (c *Controller) start(ctx context.Context, seq uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.loadSeq {
		return ErrInterrupted
	}
	if err := c.audio.Play(ctx); err != nil {
		c.isPlaying = false
		c.err = "ошибка воспроизведения трека"
		return err
	}
	c.isPlaying = true
	c.err = ""
	return nil
}

// PlayTrack выбирает трек и воспроизводит его
func (c *Controller) PlayTrack(ctx context.Context, track playlist.Track) error {
	seq, err := c.load(track)
	if err != nil {
		return err
	}
	return c.start(ctx, seq)
}

// Pause приостанавливает воспроизведение
func (c *Controller) Pause() {
	c.audio.Pause()

	c.mu.Lock()
	c.isPlaying = false
	c.mu.Unlock()
}

// Stop останавливает воспроизведение и возвращает позицию в начало.
// Загружаемый в этот момент трек не начнёт играть.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.loadSeq++
	c.isLoading = false
	c.mu.Unlock()

	c.audio.Pause()
	if err := c.audio.Seek(0); err != nil && !errors.Is(err, player.ErrNotLoaded) {
		c.logger.Warn("Не удалось перемотать в начало", zap.Error(err))
	}

	c.mu.Lock()
	c.isPlaying = false
	c.currentTime = 0
	c.mu.Unlock()
}

// Seek перематывает текущий трек
func (c *Controller) Seek(position time.Duration) error {
	if position < 0 {
		position = 0
	}
	if err := c.audio.Seek(position); err != nil {
		return err
	}

	c.mu.Lock()
	c.currentTime = position
	c.mu.Unlock()
	return nil
}

// SetVolume задаёт громкость, ограничивая её диапазоном 0..1
func (c *Controller) SetVolume(volume float64) {
	volume = math.Max(0, math.Min(1, volume))

	c.mu.Lock()
	c.volume = volume
	c.mu.Unlock()

	c.audio.SetVolume(volume)
}

// TogglePlayPause переключает воспроизведение и паузу
func (c *Controller) TogglePlayPause(ctx context.Context) error {
	c.mu.Lock()
	playing := c.isPlaying
	c.mu.Unlock()

	if playing {
		c.Pause()
		return nil
	}
	return c.Play(ctx)
}

// Next переходит к следующему треку плейлиста
func (c *Controller) Next(ctx context.Context) error {
	return c.step(ctx, 1, ErrNoNext)
}

// Previous переходит к предыдущему треку плейлиста
func (c *Controller) Previous(ctx context.Context) error {
	return c.step(ctx, -1, ErrNoPrevious)
}

func (c *Controller) step(ctx context.Context, delta int, boundary error) error {
	c.mu.Lock()
	p := c.playlist
	current := c.current
	c.mu.Unlock()

	if p == nil || current == nil {
		c.setError(ErrNoPlaylist.Error())
		return ErrNoPlaylist
	}

	idx := p.IndexOf(current.ID) + delta
	if idx < 0 || idx >= p.Len() {
		c.setError(boundary.Error())
		return boundary
	}

	return c.PlayTrack(ctx, p.Tracks[idx])
}

// HandleEvent применяет событие плеера к состоянию
func (c *Controller) HandleEvent(ev player.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case player.EventTimeUpdate:
		c.currentTime = ev.Position
		if ev.Duration > 0 {
			c.duration = ev.Duration
		}
	case player.EventDurationKnown:
		c.duration = ev.Duration
		c.isLoading = false
		c.err = ""
	case player.EventEnded:
		c.isPlaying = false
		c.currentTime = 0
	case player.EventLoadError:
		c.err = "ошибка загрузки трека"
		c.isLoading = false
		c.isPlaying = false
	}
}

// WaitEvent ждёт одно событие плеера и применяет его.
// ok == false, если плеер закрыт или контекст завершён.
func (c *Controller) WaitEvent(ctx context.Context) (ev player.Event, ok bool) {
	select {
	case ev, ok = <-c.audio.Events():
		if ok {
			c.HandleEvent(ev)
		}
		return ev, ok
	case <-ctx.Done():
		return player.Event{}, false
	}
}

// Close останавливает воспроизведение и закрывает плеер
func (c *Controller) Close() error {
	c.Stop()
	return c.audio.Close()
}

// ClearError очищает сообщение об ошибке
func (c *Controller) ClearError() {
	c.setError("")
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	c.err = msg
	c.mu.Unlock()
}
