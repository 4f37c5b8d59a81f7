package playlist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const sampleBody = `[{"id":"1","name":"T","artist":"A","album":"Al","spotifyUrl":"u"}]`

// newTestClient создает клиент, направленный на тестовый сервер
func newTestClient(t *testing.T, srv *httptest.Server, timeout time.Duration) *Client {
	t.Helper()

	client, err := New(Config{BaseURL: srv.URL, Timeout: timeout},
		WithHTTPClient(srv.Client()),
		WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGetPlaylist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/getMylist", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		fmt.Fprint(w, sampleBody)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, time.Second)

	playlist, err := client.GetPlaylist(context.Background())
	require.NoError(t, err)

	assert.Equal(t, DefaultPlaylistID, playlist.ID)
	assert.Equal(t, DefaultPlaylistName, playlist.Name)
	require.Len(t, playlist.Tracks, 1)
	assert.Equal(t, "T", playlist.Tracks[0].Name)
	assert.Equal(t, "A", playlist.Tracks[0].Artist)
	assert.Equal(t, "Al", playlist.Tracks[0].Album)
	assert.Equal(t, "u", playlist.Tracks[0].SpotifyURL)
	assert.False(t, playlist.Tracks[0].HasPreview())
	assert.False(t, client.IsLoading())
}

func TestGetPlaylistDeduplicatesConcurrentCalls(t *testing.T) {
	const callers = 8

	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		fmt.Fprint(w, sampleBody)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 5*time.Second)

	results := make([]*Playlist, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = client.GetPlaylist(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool {
		return client.State().Waiters == callers
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, client.IsLoading())

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
	assert.False(t, client.IsLoading())
}

func TestGetPlaylistSharesFailure(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 5*time.Second)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := client.GetPlaylist(context.Background())
			errs <- err
		}()
	}

	require.Eventually(t, func() bool {
		return client.State().Waiters == 2
	}, 2*time.Second, 5*time.Millisecond)
	close(release)

	first, second := <-errs, <-errs
	assert.Same(t, first, second)
	assert.Equal(t, KindHTTPStatus, KindOf(first))
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetPlaylistRefetchesAfterSettle(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, sampleBody)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, time.Second)

	_, err := client.GetPlaylist(context.Background())
	require.Error(t, err)
	assert.False(t, client.IsLoading())

	first, err := client.GetPlaylist(context.Background())
	require.NoError(t, err)
	assert.False(t, client.IsLoading())

	second, err := client.GetPlaylist(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(3), hits.Load())
	assert.NotSame(t, first, second)
}

func TestGetPlaylistTimeout(t *testing.T) {
	canceled := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		close(canceled)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 50*time.Millisecond)

	_, err := client.GetPlaylist(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.False(t, client.IsLoading())

	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatal("запрос не был отменён по таймауту")
	}
}

func TestGetPlaylistHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, time.Second)

	playlist, err := client.GetPlaylist(context.Background())
	require.Error(t, err)
	assert.Nil(t, playlist)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 500, statusErr.StatusCode)
	assert.Equal(t, "Internal Server Error", statusErr.StatusText)
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, KindHTTPStatus, KindOf(err))
}

func TestGetPlaylistTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client, err := New(Config{BaseURL: baseURL, Timeout: 2 * time.Second}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.GetPlaylist(context.Background())
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.False(t, client.IsLoading())
}

func TestGetPlaylistMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind Kind
	}{
		{name: "not json", body: `{not json`, kind: KindDecode},
		{name: "object instead of array", body: `{"id":"1"}`, kind: KindDecode},
		{name: "missing id", body: `[{"name":"T"}]`, kind: KindInvalid},
		{name: "missing name", body: `[{"id":"1"}]`, kind: KindInvalid},
		{name: "duplicate id", body: `[{"id":"1","name":"A"},{"id":"1","name":"B"}]`, kind: KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			client := newTestClient(t, srv, time.Second)

			playlist, err := client.GetPlaylist(context.Background())
			require.Error(t, err)
			assert.Nil(t, playlist)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestGetPlaylistNullBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "null")
	}))
	defer srv.Close()

	client := newTestClient(t, srv, time.Second)

	playlist, err := client.GetPlaylist(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, playlist.Tracks)
	assert.Equal(t, 0, playlist.Len())
}

func TestResetStateWhilePending(t *testing.T) {
	var hits atomic.Int32
	releaseFirst := make(chan struct{})
	releaseSecond := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		release := releaseSecond
		if n == 1 {
			release = releaseFirst
		}
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		fmt.Fprintf(w, `[{"id":"%d","name":"track %d"}]`, n, n)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 5*time.Second)

	type result struct {
		playlist *Playlist
		err      error
	}
	fetch := func() <-chan result {
		ch := make(chan result, 1)
		go func() {
			p, err := client.GetPlaylist(context.Background())
			ch <- result{p, err}
		}()
		return ch
	}

	first := fetch()
	require.Eventually(t, func() bool { return hits.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.True(t, client.IsLoading())

	client.ResetState()
	assert.False(t, client.IsLoading())
	assert.Equal(t, RequestState{}, client.State())

	second := fetch()
	require.Eventually(t, func() bool { return hits.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	require.True(t, client.IsLoading())

	// завершение первого запроса не должно сбросить состояние второго
	close(releaseFirst)
	res := <-first
	require.NoError(t, res.err)
	assert.Equal(t, "track 1", res.playlist.Tracks[0].Name)
	assert.True(t, client.IsLoading())

	close(releaseSecond)
	res = <-second
	require.NoError(t, res.err)
	assert.Equal(t, "track 2", res.playlist.Tracks[0].Name)
	assert.False(t, client.IsLoading())
}

func TestCallerContextDoesNotCancelSharedRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		fmt.Fprint(w, sampleBody)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 5*time.Second)

	done := make(chan error, 1)
	go func() {
		_, err := client.GetPlaylist(context.Background())
		done <- err
	}()
	require.Eventually(t, client.IsLoading, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.GetPlaylist(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrAbandoned)
	assert.True(t, client.IsLoading())

	close(release)
	require.NoError(t, <-done)
	assert.False(t, client.IsLoading())
}

func TestCallerDeadlineIsNotClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.GetPlaylist(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, KindCanceled, KindOf(err))

	// общий запрос продолжается до закрытия клиента
	assert.True(t, client.IsLoading())

	require.NoError(t, client.Close())
	require.Eventually(t, func() bool { return !client.IsLoading() }, 2*time.Second, 5*time.Millisecond)
}

func TestAbandonedCallersLeaveWaiters(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		fmt.Fprint(w, sampleBody)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 5*time.Second)

	done := make(chan error, 1)
	go func() {
		_, err := client.GetPlaylist(context.Background())
		done <- err
	}()
	require.Eventually(t, client.IsLoading, 2*time.Second, 5*time.Millisecond)

	for i := 0; i < 4; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.GetPlaylist(ctx)
		require.ErrorIs(t, err, ErrAbandoned)
	}
	assert.Equal(t, 1, client.State().Waiters)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, RequestState{}, client.State())
}

func TestCloseCancelsPendingRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 5*time.Second)

	done := make(chan error, 1)
	go func() {
		_, err := client.GetPlaylist(context.Background())
		done <- err
	}()
	require.Eventually(t, client.IsLoading, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, client.Close())

	err := <-done
	assert.Equal(t, KindCanceled, KindOf(err))
	assert.False(t, client.IsLoading())

	_, err = client.GetPlaylist(context.Background())
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "not a url"})
	assert.Error(t, err)

	client, err := New(Config{BaseURL: "https://api.example.com/", Endpoint: "getMylist"})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "https://api.example.com/getMylist", client.URL())
	assert.Equal(t, DefaultTimeout, client.cfg.Timeout)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindUnknown},
		{fmt.Errorf("wrap: %w", ErrTimeout), KindTimeout},
		{context.DeadlineExceeded, KindTimeout},
		{ErrClosed, KindCanceled},
		{fmt.Errorf("%w: %w", ErrAbandoned, context.DeadlineExceeded), KindCanceled},
		{&TransportError{URL: "u", Err: errors.New("refused")}, KindTransport},
		{&StatusError{StatusCode: 404, StatusText: "Not Found"}, KindHTTPStatus},
		{&DecodeError{Err: errors.New("eof")}, KindDecode},
		{&ValidationError{Index: 0, Reason: "пустой id"}, KindInvalid},
		{errors.New("other"), KindUnknown},
	}

	for _, test := range tests {
		if got := KindOf(test.err); got != test.want {
			t.Errorf("KindOf(%v) = %s; expected %s", test.err, got, test.want)
		}
	}
}
