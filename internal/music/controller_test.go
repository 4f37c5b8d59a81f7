package music

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hazadus/go-portfolio/internal/player"
	"github.com/hazadus/go-portfolio/internal/player/playertest"
	"github.com/hazadus/go-portfolio/internal/playlist"
)

type fakeAudio struct {
	mu       sync.Mutex
	events   chan player.Event
	loaded   []string
	plays    int
	pauses   int
	seeks    []time.Duration
	volume   float64
	loadErr  error
	playErr  error
	seekErr  error
	hasTrack bool
	closed   bool
}

func newFakeAudio() *fakeAudio {
	return &fakeAudio{events: make(chan player.Event, 8)}
}

func (f *fakeAudio) LoadSource(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = append(f.loaded, url)
	f.hasTrack = true
	return nil
}

func (f *fakeAudio) Play(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return f.playErr
	}
	f.plays++
	return nil
}

func (f *fakeAudio) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
}

func (f *fakeAudio) Seek(position time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seekErr != nil {
		return f.seekErr
	}
	if !f.hasTrack {
		return player.ErrNotLoaded
	}
	f.seeks = append(f.seeks, position)
	return nil
}

func (f *fakeAudio) SetVolume(volume float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = volume
}

func (f *fakeAudio) Events() <-chan player.Event { return f.events }

func (f *fakeAudio) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type fakeSource struct {
	playlist *playlist.Playlist
	err      error
	calls    int
	resets   int
}

func (s *fakeSource) GetPlaylist(ctx context.Context) (*playlist.Playlist, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.playlist, nil
}

func (s *fakeSource) ResetState() { s.resets++ }

func samplePlaylist() *playlist.Playlist {
	return &playlist.Playlist{
		ID:   playlist.DefaultPlaylistID,
		Name: playlist.DefaultPlaylistName,
		Tracks: []playlist.Track{
			{ID: "1", Name: "Song 1", Artist: "Artist 1", PreviewURL: "https://example.com/1.mp3"},
			{ID: "2", Name: "Song 2", Artist: "Artist 2"},
			{ID: "3", Name: "Song 3", Artist: "Artist 3", PreviewURL: "https://example.com/3.mp3"},
		},
	}
}

func newController(t *testing.T) (*Controller, *fakeAudio, *fakeSource) {
	t.Helper()
	audio := newFakeAudio()
	source := &fakeSource{playlist: samplePlaylist()}
	return NewController(audio, source, zaptest.NewLogger(t)), audio, source
}

func TestNewControllerDefaults(t *testing.T) {
	c, audio, _ := newController(t)

	state := c.Snapshot()
	assert.Equal(t, DefaultVolume, state.Volume)
	assert.Equal(t, DefaultVolume, audio.volume)
	assert.False(t, state.IsPlaying)
	assert.Nil(t, state.CurrentTrack)
}

func TestRefreshSelectsFirstTrack(t *testing.T) {
	c, audio, source := newController(t)

	require.NoError(t, c.Refresh(context.Background()))

	state := c.Snapshot()
	require.NotNil(t, state.CurrentTrack)
	assert.Equal(t, "1", state.CurrentTrack.ID)
	assert.Equal(t, 3, state.Playlist.Len())
	assert.False(t, state.IsLoading)
	assert.Equal(t, 1, source.calls)
	assert.Empty(t, audio.loaded, "выбор трека не должен загружать аудио")
}

func TestRefreshFailureSetsError(t *testing.T) {
	c, _, source := newController(t)
	source.err = fmt.Errorf("%w: 30s", playlist.ErrTimeout)

	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, playlist.ErrTimeout)

	state := c.Snapshot()
	assert.False(t, state.IsLoading)
	assert.Equal(t, "Бэкенд не ответил вовремя. Попробуйте ещё раз.", state.Error)
	assert.Nil(t, state.Playlist)
}

func TestRetryResetsSource(t *testing.T) {
	c, _, source := newController(t)
	source.err = errors.New("boom")
	require.Error(t, c.Refresh(context.Background()))

	source.err = nil
	require.NoError(t, c.Retry(context.Background()))

	assert.Equal(t, 1, source.resets)
	assert.Equal(t, 2, source.calls)
	assert.Empty(t, c.Snapshot().Error)
}

func TestLoadTrackWithoutPreview(t *testing.T) {
	c, audio, _ := newController(t)

	err := c.LoadTrack(playlist.Track{ID: "2", Name: "Song 2"})
	require.ErrorIs(t, err, ErrNoPreview)
	assert.Equal(t, ErrNoPreview.Error(), c.Snapshot().Error)
	assert.Empty(t, audio.loaded)
}

func TestLoadTrackFailure(t *testing.T) {
	c, audio, _ := newController(t)
	audio.loadErr = errors.New("network down")

	err := c.LoadTrack(samplePlaylist().Tracks[0])
	require.Error(t, err)

	state := c.Snapshot()
	assert.False(t, state.IsLoading)
	assert.Equal(t, "ошибка загрузки трека", state.Error)
}

func TestPlayWithoutTrack(t *testing.T) {
	c, audio, _ := newController(t)

	err := c.Play(context.Background())
	require.ErrorIs(t, err, ErrNoTrack)
	assert.Equal(t, 0, audio.plays)
}

func TestPlayLoadsSelectedTrack(t *testing.T) {
	c, audio, _ := newController(t)
	c.LoadPlaylist(samplePlaylist())

	require.NoError(t, c.Play(context.Background()))
	require.NoError(t, c.Play(context.Background()))

	assert.Equal(t, []string{"https://example.com/1.mp3"}, audio.loaded)
	assert.Equal(t, 2, audio.plays)
	assert.True(t, c.Snapshot().IsPlaying)
}

func TestPlayFailure(t *testing.T) {
	c, audio, _ := newController(t)
	c.LoadPlaylist(samplePlaylist())
	audio.playErr = errors.New("no device")

	require.Error(t, c.Play(context.Background()))

	state := c.Snapshot()
	assert.False(t, state.IsPlaying)
	assert.Equal(t, "ошибка воспроизведения трека", state.Error)
}

func TestTogglePlayPause(t *testing.T) {
	c, audio, _ := newController(t)
	c.LoadPlaylist(samplePlaylist())

	require.NoError(t, c.TogglePlayPause(context.Background()))
	assert.True(t, c.Snapshot().IsPlaying)

	require.NoError(t, c.TogglePlayPause(context.Background()))
	assert.False(t, c.Snapshot().IsPlaying)
	assert.Equal(t, 1, audio.pauses)
}

func TestStopRewinds(t *testing.T) {
	c, audio, _ := newController(t)
	c.LoadPlaylist(samplePlaylist())
	require.NoError(t, c.Play(context.Background()))
	require.NoError(t, c.Seek(10*time.Second))

	c.Stop()

	state := c.Snapshot()
	assert.False(t, state.IsPlaying)
	assert.Zero(t, state.CurrentTime)
	assert.Equal(t, []time.Duration{10 * time.Second, 0}, audio.seeks)
}

func waitLoad(t *testing.T, started <-chan string) string {
	t.Helper()
	select {
	case url := <-started:
		return url
	case <-time.After(time.Second):
		t.Fatal("Загрузка превью не началась")
		return ""
	}
}

func waitResult(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(time.Second):
		t.Fatal("PlayTrack не завершился")
		return nil
	}
}

func TestStopDuringLoadPreventsPlayback(t *testing.T) {
	audio := playertest.New()
	c := NewController(audio, &fakeSource{playlist: samplePlaylist()}, zaptest.NewLogger(t))
	started, release := audio.BlockLoads()
	defer release()

	track := samplePlaylist().Tracks[0]
	done := make(chan error, 1)
	go func() {
		done <- c.PlayTrack(context.Background(), track)
	}()

	waitLoad(t, started)
	assert.True(t, c.Snapshot().IsLoading)

	c.Stop()
	assert.False(t, c.Snapshot().IsLoading)

	release()
	require.ErrorIs(t, waitResult(t, done), ErrInterrupted)

	assert.Equal(t, 0, audio.PlayCount())
	state := c.Snapshot()
	assert.False(t, state.IsPlaying)
	assert.Empty(t, state.Error)
}

func TestNewLoadSupersedesPendingOne(t *testing.T) {
	audio := playertest.New()
	c := NewController(audio, &fakeSource{playlist: samplePlaylist()}, zaptest.NewLogger(t))
	started, release := audio.BlockLoads()
	defer release()

	tracks := samplePlaylist().Tracks
	first := make(chan error, 1)
	go func() {
		first <- c.PlayTrack(context.Background(), tracks[0])
	}()
	waitLoad(t, started)

	second := make(chan error, 1)
	go func() {
		second <- c.PlayTrack(context.Background(), tracks[2])
	}()
	waitLoad(t, started)

	release()
	assert.ErrorIs(t, waitResult(t, first), ErrInterrupted)
	require.NoError(t, waitResult(t, second))

	assert.Equal(t, 1, audio.PlayCount())
	state := c.Snapshot()
	assert.True(t, state.IsPlaying)
	assert.Equal(t, "3", state.CurrentTrack.ID)
}

func TestPlayAfterStopStartsAgain(t *testing.T) {
	c, audio, _ := newController(t)
	c.LoadPlaylist(samplePlaylist())
	require.NoError(t, c.Play(context.Background()))

	c.Stop()
	require.NoError(t, c.Play(context.Background()))

	assert.Equal(t, 2, audio.plays)
	assert.Len(t, audio.loaded, 1)
	assert.True(t, c.Snapshot().IsPlaying)
}

func TestStopWithoutSource(t *testing.T) {
	c, _, _ := newController(t)
	assert.NotPanics(t, c.Stop)
}

func TestCloseStopsAndClosesAudio(t *testing.T) {
	audio := newFakeAudio()
	c := NewController(audio, &fakeSource{playlist: samplePlaylist()}, nil)
	require.NoError(t, c.Refresh(context.Background()))
	require.NoError(t, c.Play(context.Background()))

	require.NoError(t, c.Close())
	assert.False(t, c.Snapshot().IsPlaying)
	assert.True(t, audio.closed)
}

func TestSetVolumeClamps(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"в диапазоне", 0.3, 0.3},
		{"больше единицы", 1.5, 1},
		{"отрицательная", -0.2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, audio, _ := newController(t)
			c.SetVolume(tt.in)
			assert.Equal(t, tt.want, c.Snapshot().Volume)
			assert.Equal(t, tt.want, audio.volume)
		})
	}
}

func TestNextSkipsToFollowingTrack(t *testing.T) {
	c, audio, _ := newController(t)
	c.LoadPlaylist(samplePlaylist())

	// второй трек без превью
	err := c.Next(context.Background())
	require.ErrorIs(t, err, ErrNoPreview)

	c.LoadPlaylist(samplePlaylist())
	require.NoError(t, c.LoadTrack(samplePlaylist().Tracks[2]))
	err = c.Next(context.Background())
	require.ErrorIs(t, err, ErrNoNext)
	assert.Equal(t, ErrNoNext.Error(), c.Snapshot().Error)

	require.NoError(t, c.LoadTrack(samplePlaylist().Tracks[0]))
	audio.loaded = nil
	err = c.Previous(context.Background())
	require.ErrorIs(t, err, ErrNoPrevious)
	assert.Empty(t, audio.loaded)
}

func TestPreviousPlaysTrack(t *testing.T) {
	c, audio, _ := newController(t)
	p := samplePlaylist()
	p.Tracks[1].PreviewURL = "https://example.com/2.mp3"
	c.LoadPlaylist(p)
	require.NoError(t, c.LoadTrack(p.Tracks[2]))

	require.NoError(t, c.Previous(context.Background()))

	state := c.Snapshot()
	assert.Equal(t, "2", state.CurrentTrack.ID)
	assert.True(t, state.IsPlaying)
	assert.Equal(t, "https://example.com/2.mp3", audio.loaded[len(audio.loaded)-1])
}

func TestNextWithoutPlaylist(t *testing.T) {
	c, _, _ := newController(t)

	assert.ErrorIs(t, c.Next(context.Background()), ErrNoPlaylist)
	assert.ErrorIs(t, c.Previous(context.Background()), ErrNoPlaylist)
}

func TestHandleEvent(t *testing.T) {
	c, _, _ := newController(t)
	c.LoadPlaylist(samplePlaylist())
	require.NoError(t, c.Play(context.Background()))

	c.HandleEvent(player.Event{Type: player.EventDurationKnown, Duration: 30 * time.Second})
	assert.Equal(t, 30*time.Second, c.Snapshot().Duration)

	c.HandleEvent(player.Event{Type: player.EventTimeUpdate, Position: 12 * time.Second})
	assert.Equal(t, 12*time.Second, c.Snapshot().CurrentTime)

	c.HandleEvent(player.Event{Type: player.EventEnded})
	state := c.Snapshot()
	assert.False(t, state.IsPlaying)
	assert.Zero(t, state.CurrentTime)

	c.HandleEvent(player.Event{Type: player.EventLoadError, Err: errors.New("bad")})
	assert.Equal(t, "ошибка загрузки трека", c.Snapshot().Error)

	c.ClearError()
	assert.Empty(t, c.Snapshot().Error)
}

func TestWaitEvent(t *testing.T) {
	c, audio, _ := newController(t)

	audio.events <- player.Event{Type: player.EventDurationKnown, Duration: 29 * time.Second}
	ev, ok := c.WaitEvent(context.Background())
	require.True(t, ok)
	assert.Equal(t, player.EventDurationKnown, ev.Type)
	assert.Equal(t, 29*time.Second, c.Snapshot().Duration)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok = c.WaitEvent(ctx)
	assert.False(t, ok)

	close(audio.events)
	_, ok = c.WaitEvent(context.Background())
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"таймаут", playlist.ErrTimeout, "Бэкенд не ответил вовремя. Попробуйте ещё раз."},
		{"транспорт", &playlist.TransportError{URL: "http://x", Err: errors.New("refused")}, "Бэкенд недоступен. Проверьте соединение."},
		{"статус", &playlist.StatusError{StatusCode: 502, StatusText: "Bad Gateway"}, "Бэкенд ответил ошибкой 502 (Bad Gateway)."},
		{"декодирование", &playlist.DecodeError{Err: errors.New("eof")}, "Бэкенд вернул некорректный плейлист."},
		{"прочее", errors.New("что-то"), "что-то"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}
