// Package player содержит компоненты для воспроизведения превью треков
package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/hazadus/go-portfolio/internal/streaming"
)

// Ошибки плеера
var (
	ErrNotLoaded    = errors.New("источник не загружен")
	ErrLoadCanceled = errors.New("загрузка источника отменена")
)

// EventType определяет тип события плеера
type EventType int

// Типы событий
const (
	EventTimeUpdate EventType = iota
	EventDurationKnown
	EventEnded
	EventLoadError
)

func (t EventType) String() string {
	switch t {
	case EventTimeUpdate:
		return "time_update"
	case EventDurationKnown:
		return "duration_known"
	case EventEnded:
		return "ended"
	case EventLoadError:
		return "load_error"
	default:
		return "unknown"
	}
}

// Event сообщает об изменении состояния воспроизведения
type Event struct {
	Type     EventType
	Position time.Duration
	Duration time.Duration
	Err      error
}

// Audio возможность воспроизведения, которой пользуется контроллер музыки
type Audio interface {
	LoadSource(url string) error
	Play(ctx context.Context) error
	Pause()
	Seek(position time.Duration) error
	SetVolume(volume float64)
	Events() <-chan Event
	Close() error
}

// BeepPlayer воспроизводит mp3 превью через динамики с помощью beep
type BeepPlayer struct {
	events chan Event
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mutex         sync.RWMutex
	isInitialized bool
	sampleRate    beep.SampleRate
	format        beep.Format
	source        string
	level         float64
	queued        bool
	playing       atomic.Bool
	finished      atomic.Bool
	stopMonitor   context.CancelFunc
	cancelLoad    context.CancelFunc
	loadSeq       uint64

	emitMu sync.Mutex
	closed bool

	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	preload  *streaming.Source
}

// NewBeepPlayer создает новый экземпляр плеера
func NewBeepPlayer(logger *zap.Logger) *BeepPlayer {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BeepPlayer{
		events: make(chan Event, 16),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		level:  1,
	}
}

var _ Audio = (*BeepPlayer)(nil)

// Events возвращает канал событий плеера
func (p *BeepPlayer) Events() <-chan Event {
	return p.events
}

// LoadSource загружает превью по URL; воспроизведение не начинается.
// Загрузка идёт без блокировки плеера, новый LoadSource или Close её отменяют.
func (p *BeepPlayer) LoadSource(url string) error {
	p.mutex.Lock()
	p.stopInternal()
	p.source = url
	seq := p.loadSeq
	loadCtx, cancel := context.WithCancel(p.ctx)
	p.cancelLoad = cancel
	p.mutex.Unlock()
	defer cancel()

	src, err := streaming.Preload(loadCtx, url, streaming.DefaultPreloadLimit)
	if err != nil {
		if loadCtx.Err() != nil {
			return fmt.Errorf("%w: %s", ErrLoadCanceled, url)
		}
		err = fmt.Errorf("ошибка загрузки превью: %w", err)
		p.emit(Event{Type: EventLoadError, Err: err})
		return err
	}

	streamer, format, err := mp3.Decode(src)
	if err != nil {
		err = fmt.Errorf("ошибка декодирования MP3: %w", err)
		p.emit(Event{Type: EventLoadError, Err: err})
		return err
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if seq != p.loadSeq {
		streamer.Close()
		src.Close()
		return fmt.Errorf("%w: %s", ErrLoadCanceled, url)
	}
	p.cancelLoad = nil

	p.preload = src
	p.streamer = streamer
	p.format = format

	var s beep.Streamer = streamer
	if p.isInitialized && format.SampleRate != p.sampleRate {
		s = beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
	}

	p.ctrl = &beep.Ctrl{Streamer: s, Paused: true}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2}
	p.applyVolume()

	duration := format.SampleRate.D(streamer.Len())
	p.emit(Event{Type: EventDurationKnown, Duration: duration})

	p.logger.Debug("Превью загружено", zap.String("url", url), zap.Duration("duration", duration))
	return nil
}

// Play начинает или возобновляет воспроизведение
func (p *BeepPlayer) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctrl == nil {
		return ErrNotLoaded
	}

	// Инициализируем speaker (только один раз)
	if !p.isInitialized {
		if err := speaker.Init(p.format.SampleRate, p.format.SampleRate.N(time.Second/5)); err != nil {
			return fmt.Errorf("ошибка инициализации динамиков: %w", err)
		}
		p.sampleRate = p.format.SampleRate
		p.isInitialized = true
	}

	if !p.queued || p.finished.Load() {
		if p.finished.Load() {
			if err := p.streamer.Seek(0); err != nil {
				return fmt.Errorf("ошибка перемотки в начало: %w", err)
			}
		}
		speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
			// вызывается под блокировкой speaker: никаких speaker.Lock и p.mutex здесь
			p.playing.Store(false)
			p.finished.Store(true)
			p.emit(Event{Type: EventEnded})
		})))
		p.queued = true
		p.finished.Store(false)
	}

	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.playing.Store(true)

	if p.stopMonitor == nil {
		monitorCtx, stop := context.WithCancel(p.ctx)
		p.stopMonitor = stop
		go p.monitorProgress(monitorCtx, p.streamer, p.format)
	}

	return nil
}

// Pause приостанавливает воспроизведение
func (p *BeepPlayer) Pause() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctrl == nil {
		return
	}
	if p.isInitialized {
		speaker.Lock()
		p.ctrl.Paused = true
		speaker.Unlock()
	} else {
		p.ctrl.Paused = true
	}
	p.playing.Store(false)
}

// Seek перематывает на указанную позицию
func (p *BeepPlayer) Seek(position time.Duration) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.streamer == nil {
		return ErrNotLoaded
	}

	n := p.format.SampleRate.N(position)
	if n < 0 {
		n = 0
	}
	if length := p.streamer.Len(); length > 0 && n >= length {
		n = length - 1
	}

	if p.isInitialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	if err := p.streamer.Seek(n); err != nil {
		return fmt.Errorf("ошибка перемотки: %w", err)
	}
	// доигравший поток снова ставится в очередь при следующем Play
	if p.finished.Load() && n < p.streamer.Len() {
		p.finished.Store(false)
		p.queued = false
	}

	p.emit(Event{
		Type:     EventTimeUpdate,
		Position: p.format.SampleRate.D(n),
		Duration: p.format.SampleRate.D(p.streamer.Len()),
	})
	return nil
}

// SetVolume задаёт громкость в диапазоне 0..1
func (p *BeepPlayer) SetVolume(volume float64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.level = math.Max(0, math.Min(1, volume))
	if p.volume == nil {
		return
	}
	if p.isInitialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	p.applyVolume()
}

// Volume возвращает текущую громкость
func (p *BeepPlayer) Volume() float64 {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.level
}

// IsPlaying возвращает true, если трек воспроизводится
func (p *BeepPlayer) IsPlaying() bool {
	return p.playing.Load()
}

// Source возвращает URL загруженного источника
func (p *BeepPlayer) Source() string {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.source
}

// Close закрывает плеер и освобождает ресурсы
func (p *BeepPlayer) Close() error {
	p.cancel()

	p.mutex.Lock()
	p.stopInternal()
	p.mutex.Unlock()

	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.events)
	}
	return nil
}

// applyVolume переводит громкость 0..1 в логарифмическую шкалу effects.Volume
func (p *BeepPlayer) applyVolume() {
	if p.level <= 0 {
		p.volume.Silent = true
		return
	}
	p.volume.Silent = false
	p.volume.Volume = math.Log2(p.level)
}

// stopInternal внутренний метод остановки (должен вызываться под мьютексом)
func (p *BeepPlayer) stopInternal() {
	p.loadSeq++
	if p.cancelLoad != nil {
		p.cancelLoad()
		p.cancelLoad = nil
	}

	if p.stopMonitor != nil {
		p.stopMonitor()
		p.stopMonitor = nil
	}

	if p.queued {
		speaker.Clear()
		p.queued = false
	}

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}

	if p.preload != nil {
		p.preload.Close()
		p.preload = nil
	}

	p.ctrl = nil
	p.volume = nil
	p.playing.Store(false)
	p.finished.Store(false)
}

// emit отправляет событие, не блокируясь на медленном получателе
func (p *BeepPlayer) emit(ev Event) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	if p.closed {
		return
	}
	select {
	case p.events <- ev:
	default:
		p.logger.Debug("Событие плеера пропущено", zap.Stringer("type", ev.Type))
	}
}

// monitorProgress раз в секунду сообщает текущую позицию
func (p *BeepPlayer) monitorProgress(ctx context.Context, streamer beep.StreamSeekCloser, format beep.Format) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.playing.Load() {
				continue
			}

			speaker.Lock()
			current := format.SampleRate.D(streamer.Position())
			total := format.SampleRate.D(streamer.Len())
			speaker.Unlock()

			p.emit(Event{Type: EventTimeUpdate, Position: current, Duration: total})
		}
	}
}
