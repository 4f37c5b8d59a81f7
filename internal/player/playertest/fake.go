// Package playertest содержит поддельный плеер для тестов
package playertest

import (
	"context"
	"sync"
	"time"

	"github.com/hazadus/go-portfolio/internal/player"
)

// Fake реализует player.Audio без вывода звука
type Fake struct {
	mu        sync.Mutex
	events    chan player.Event
	closeOnce sync.Once

	loadGate    chan struct{}
	loadStarted chan string

	Loaded  []string
	Plays   int
	Pauses  int
	Volume  float64
	LoadErr error
}

var _ player.Audio = (*Fake)(nil)

// New создает поддельный плеер
func New() *Fake {
	return &Fake{events: make(chan player.Event, 16)}
}

// BlockLoads заставляет LoadSource ждать вызова release.
// В started приходит URL каждой начатой загрузки.
func (f *Fake) BlockLoads() (started <-chan string, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	gate := make(chan struct{})
	ch := make(chan string, 8)
	f.loadGate, f.loadStarted = gate, ch

	var once sync.Once
	return ch, func() { once.Do(func() { close(gate) }) }
}

// LoadSource запоминает URL
func (f *Fake) LoadSource(url string) error {
	f.mu.Lock()
	gate, started := f.loadGate, f.loadStarted
	f.mu.Unlock()

	if gate != nil {
		started <- url
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LoadErr != nil {
		return f.LoadErr
	}
	f.Loaded = append(f.Loaded, url)
	return nil
}

// Play считает вызовы
func (f *Fake) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Loaded) == 0 {
		return player.ErrNotLoaded
	}
	f.Plays++
	return nil
}

// Pause считает вызовы
func (f *Fake) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pauses++
}

// Seek принимает любую позицию
func (f *Fake) Seek(position time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Loaded) == 0 {
		return player.ErrNotLoaded
	}
	return nil
}

// SetVolume запоминает громкость
func (f *Fake) SetVolume(volume float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Volume = volume
}

// Events возвращает канал событий
func (f *Fake) Events() <-chan player.Event {
	return f.events
}

// Emit отправляет событие подписчикам
func (f *Fake) Emit(ev player.Event) {
	f.events <- ev
}

// Close закрывает канал событий
func (f *Fake) Close() error {
	f.closeOnce.Do(func() { close(f.events) })
	return nil
}

// PlayCount возвращает число вызовов Play
func (f *Fake) PlayCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Plays
}

// LoadedURLs возвращает копию списка загруженных URL
func (f *Fake) LoadedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Loaded...)
}
