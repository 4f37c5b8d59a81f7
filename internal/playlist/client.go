package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Значения конфигурации по умолчанию
const (
	DefaultEndpoint     = "/getMylist"
	DefaultTimeout      = 30 * time.Second
	DefaultPlaylistID   = "marcos-playlist"
	DefaultPlaylistName = "Playlist de Marcos"
)

// Config содержит настройки клиента плейлиста
type Config struct {
	BaseURL      string
	Endpoint     string
	Timeout      time.Duration
	PlaylistID   string
	PlaylistName string
}

// Option настраивает клиент
type Option func(*Client)

// WithHTTPClient задаёт HTTP клиент для запросов
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger задаёт логгер
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// RequestState снимок состояния запроса к бэкенду
type RequestState struct {
	Loading   bool
	Waiters   int // сколько вызовов ждут текущий запрос
	StartedAt time.Time
}

// pendingRequest описывает запрос, который ещё не завершился
type pendingRequest struct {
	key       string
	startedAt time.Time
	waiters   int
	fn        func() (interface{}, error)
}

// Client получает плейлист с бэкенда; одновременно в полёте не больше одного запроса
type Client struct {
	cfg        Config
	url        string
	httpClient *http.Client
	logger     *zap.Logger
	group      singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc

	// pending != nil тогда и только тогда, когда loading == true
	mu         sync.Mutex
	loading    bool
	pending    *pendingRequest
	generation uint64
	closed     bool
}

// New создает новый клиент плейлиста
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("не задан адрес бэкенда")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("неверный адрес бэкенда: %w", err)
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if !strings.HasPrefix(cfg.Endpoint, "/") {
		cfg.Endpoint = "/" + cfg.Endpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PlaylistID == "" {
		cfg.PlaylistID = DefaultPlaylistID
	}
	if cfg.PlaylistName == "" {
		cfg.PlaylistName = DefaultPlaylistName
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		cfg:        cfg,
		url:        strings.TrimRight(cfg.BaseURL, "/") + cfg.Endpoint,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// URL возвращает адрес, по которому клиент запрашивает плейлист
func (c *Client) URL() string {
	return c.url
}

// GetPlaylist возвращает плейлист. Если запрос уже выполняется, вызов
// присоединяется к нему и получает тот же результат или ту же ошибку.
// Отмена ctx прекращает ожидание, но не отменяет общий запрос.
func (c *Client) GetPlaylist(ctx context.Context) (*Playlist, error) {
	ch, p, err := c.acquire()
	if err != nil {
		return nil, err
	}

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Playlist), nil
	case <-ctx.Done():
		c.leave(p)
		return nil, fmt.Errorf("%w: %w", ErrAbandoned, ctx.Err())
	}
}

// acquire присоединяется к текущему запросу или запускает новый
func (c *Client) acquire() (<-chan singleflight.Result, *pendingRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, nil, ErrClosed
	}

	if c.loading {
		p := c.pending
		p.waiters++
		c.logger.Debug("Запрос плейлиста уже выполняется, ожидаем его",
			zap.String("key", p.key),
			zap.Int("waiters", p.waiters))
		return c.group.DoChan(p.key, p.fn), p, nil
	}

	c.generation++
	p := &pendingRequest{
		key:       "playlist#" + strconv.FormatUint(c.generation, 10),
		startedAt: time.Now(),
		waiters:   1,
	}
	p.fn = func() (interface{}, error) {
		return c.run(p)
	}
	c.loading = true
	c.pending = p

	c.logger.Info("Запрашиваем плейлист",
		zap.String("url", c.url),
		zap.Duration("timeout", c.cfg.Timeout))

	return c.group.DoChan(p.key, p.fn), p, nil
}

// leave снимает вызывающего, переставшего ждать, со счёта ожидающих
func (c *Client) leave(p *pendingRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == p && p.waiters > 0 {
		p.waiters--
	}
}

// run выполняет запрос и всегда возвращает состояние в исходное
func (c *Client) run(p *pendingRequest) (interface{}, error) {
	defer c.settle(p)

	playlist, err := c.fetch(c.ctx)
	elapsed := time.Since(p.startedAt)
	if err != nil {
		c.logger.Error("Не удалось получить плейлист",
			zap.String("kind", KindOf(err).String()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, err
	}

	c.logger.Info("Плейлист получен",
		zap.Int("tracks", playlist.Len()),
		zap.Duration("elapsed", elapsed))
	return playlist, nil
}

// settle сбрасывает состояние, если его не перехватил более новый запрос
func (c *Client) settle(p *pendingRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == p {
		c.loading = false
		c.pending = nil
	}
}

// fetch выполняет HTTP запрос с ограничением по времени
func (c *Client) fetch(parent context.Context) (*Playlist, error) {
	ctx, cancel := context.WithTimeout(parent, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := c.contextError(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
		}
	}

	var tracks []Track
	if err := json.NewDecoder(resp.Body).Decode(&tracks); err != nil {
		if ctxErr := c.contextError(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &DecodeError{Err: err}
	}
	if tracks == nil {
		tracks = []Track{}
	}

	if err := validateTracks(tracks); err != nil {
		return nil, err
	}

	return &Playlist{
		ID:     c.cfg.PlaylistID,
		Name:   c.cfg.PlaylistName,
		Tracks: tracks,
	}, nil
}

// contextError переводит завершение контекста в ошибку клиента
func (c *Client) contextError(ctx context.Context) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: бэкенд не ответил за %s", ErrTimeout, c.cfg.Timeout)
	case ctx.Err() != nil:
		return fmt.Errorf("%w: запрос отменён", ErrClosed)
	}
	return nil
}

// IsLoading возвращает true, если запрос в полёте
func (c *Client) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// State возвращает снимок состояния запроса
func (c *Client) State() RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loading {
		return RequestState{}
	}
	return RequestState{
		Loading:   true,
		Waiters:   c.pending.waiters,
		StartedAt: c.pending.startedAt,
	}
}

// ResetState безусловно переводит клиент в состояние "свободен".
// Следующий вызов GetPlaylist выполнит новый запрос, даже если прежний
// ещё не завершился; завершение прежнего на новое состояние не влияет.
func (c *Client) ResetState() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		c.group.Forget(c.pending.key)
	}
	c.loading = false
	c.pending = nil

	c.logger.Info("Состояние клиента плейлиста сброшено")
}

// Close отменяет выполняемый запрос; последующие вызовы возвращают ErrClosed
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	return nil
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
