// Package player содержит модель экрана воспроизведения для TUI
package player

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-portfolio/internal/music"
	"github.com/hazadus/go-portfolio/internal/player"
	"github.com/hazadus/go-portfolio/internal/playlist"
	"github.com/hazadus/go-portfolio/internal/utils"
)

const (
	seekStep   = 5 * time.Second
	volumeStep = 0.1
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1db954")).
			MarginBottom(1)

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1).
			MarginBottom(1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)
)

// GoBackMsg отправляется для возврата к списку треков
type GoBackMsg struct{}

// EventMsg доставляет событие аудиоплеера в модель
type EventMsg struct {
	Event player.Event
}

// PlaybackStartedMsg отправляется после начала воспроизведения
type PlaybackStartedMsg struct{}

// PlaybackErrorMsg отправляется при ошибке воспроизведения
type PlaybackErrorMsg struct {
	Error error
}

// ListenEvents ждёт следующее событие плеера; после закрытия плеера возвращает nil
func ListenEvents(ctx context.Context, controller *music.Controller) tea.Cmd {
	return func() tea.Msg {
		ev, ok := controller.WaitEvent(ctx)
		if !ok {
			return nil
		}
		return EventMsg{Event: ev}
	}
}

// Model представляет модель экрана воспроизведения
type Model struct {
	ctx         context.Context
	track       playlist.Track
	controller  *music.Controller
	progressBar progress.Model
	state       music.State
	err         error
	width       int
	height      int
}

// NewModel создает новую модель плеера для выбранного трека
func NewModel(ctx context.Context, track playlist.Track, controller *music.Controller) *Model {
	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	return &Model{
		ctx:         ctx,
		track:       track,
		controller:  controller,
		progressBar: prog,
		state:       controller.Snapshot(),
	}
}

// Init запускает воспроизведение выбранного трека
func (m *Model) Init() tea.Cmd {
	track := m.track
	return m.run(func(ctx context.Context, c *music.Controller) error {
		return c.PlayTrack(ctx, track)
	})
}

// run выполняет действие контроллера в команде и сообщает результат
func (m *Model) run(action func(ctx context.Context, c *music.Controller) error) tea.Cmd {
	ctx := m.ctx
	controller := m.controller
	return func() tea.Msg {
		if err := action(ctx, controller); err != nil {
			return PlaybackErrorMsg{Error: err}
		}
		return PlaybackStartedMsg{}
	}
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = min(60, msg.Width-10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			// Останавливаем плеер и возвращаемся к списку треков
			m.controller.Stop()
			return m, func() tea.Msg {
				return GoBackMsg{}
			}

		case " ":
			return m, m.run(func(ctx context.Context, c *music.Controller) error {
				return c.TogglePlayPause(ctx)
			})

		case "s":
			m.controller.Stop()
			return m, m.refresh()

		case "n":
			return m, m.run(func(ctx context.Context, c *music.Controller) error {
				return c.Next(ctx)
			})

		case "p":
			return m, m.run(func(ctx context.Context, c *music.Controller) error {
				return c.Previous(ctx)
			})

		case "right":
			_ = m.controller.Seek(m.controller.Snapshot().CurrentTime + seekStep)
			return m, m.refresh()

		case "left":
			_ = m.controller.Seek(m.controller.Snapshot().CurrentTime - seekStep)
			return m, m.refresh()

		case "+", "=":
			m.controller.SetVolume(m.controller.Snapshot().Volume + volumeStep)
			return m, m.refresh()

		case "-":
			m.controller.SetVolume(m.controller.Snapshot().Volume - volumeStep)
			return m, m.refresh()
		}

	case PlaybackStartedMsg:
		m.err = nil
		return m, m.refresh()

	case PlaybackErrorMsg:
		if !errors.Is(msg.Error, music.ErrInterrupted) {
			m.err = msg.Error
		}
		return m, m.refresh()

	case EventMsg:
		if msg.Event.Type == player.EventLoadError && msg.Event.Err != nil {
			m.err = msg.Event.Err
		}
		return m, m.refresh()

	case progress.FrameMsg:
		progressModel, cmd := m.progressBar.Update(msg)
		m.progressBar = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// refresh перечитывает состояние контроллера и обновляет прогресс-бар
func (m *Model) refresh() tea.Cmd {
	m.state = m.controller.Snapshot()
	if m.state.CurrentTrack != nil {
		m.track = *m.state.CurrentTrack
	}
	return m.progressBar.SetPercent(utils.Progress(m.state.CurrentTime, m.state.Duration))
}

// View отображает модель
func (m *Model) View() string {
	title := titleStyle.Render("🎵 Воспроизведение")

	album := m.track.Album
	if album == "" {
		album = "-"
	}
	trackInfo := trackInfoStyle.Render(fmt.Sprintf(
		"🎤 %s\n🎵 %s\n💿 %s",
		m.track.Artist,
		m.track.Name,
		album,
	))

	var statusIcon string
	switch {
	case m.state.IsLoading:
		statusIcon = "⏳"
	case m.state.IsPlaying:
		statusIcon = "▶️"
	default:
		statusIcon = "⏸️"
	}
	statusText := statusStyle.Render(fmt.Sprintf("%s %s", statusIcon, formatStatus(m.state)))

	timeText := fmt.Sprintf(
		"%s / %s   🔊 %d%%",
		utils.FormatDuration(m.state.CurrentTime),
		utils.FormatDuration(m.state.Duration),
		int(m.state.Volume*100+0.5),
	)

	view := fmt.Sprintf(
		"%s\n\n%s\n\n%s\n\n%s\n%s",
		title,
		trackInfo,
		statusText,
		m.progressBar.View(),
		timeText,
	)

	errText := m.state.Error
	if m.err != nil {
		errText = m.err.Error()
	}
	if errText != "" {
		view += "\n\n" + errorStyle.Render("❌ "+errText)
	}

	if m.track.SpotifyURL != "" {
		view += "\n\n" + trackInfoStyle.Render("Spotify: "+m.track.SpotifyURL)
	}

	controls := controlsStyle.Render(
		"Пробел: пауза • n/p: следующий/предыдущий • ←/→: перемотка • +/-: громкость • s: стоп • q/esc: назад",
	)

	return view + "\n\n" + controls
}

// Track возвращает отображаемый трек
func (m *Model) Track() playlist.Track {
	return m.track
}

func formatStatus(state music.State) string {
	switch {
	case state.IsLoading:
		return "Загрузка"
	case state.IsPlaying:
		return "Воспроизведение"
	default:
		return "Пауза"
	}
}
