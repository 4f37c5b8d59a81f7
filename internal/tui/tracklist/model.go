// Package tracklist содержит модель экрана списка треков плейлиста для TUI
package tracklist

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-portfolio/internal/music"
	"github.com/hazadus/go-portfolio/internal/playlist"
	"github.com/hazadus/go-portfolio/internal/utils"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	currentItemStyle  = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("42"))
	disabledItemStyle = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("240"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")).Bold(true).MarginLeft(2)
	statusStyle       = lipgloss.NewStyle().MarginLeft(2)
)

// TrackSelectedMsg отправляется при выборе трека для воспроизведения
type TrackSelectedMsg struct {
	Track playlist.Track
}

// PlaylistLoadedMsg отправляется после успешной загрузки плейлиста
type PlaylistLoadedMsg struct {
	Playlist *playlist.Playlist
}

// PlaylistErrorMsg отправляется при ошибке загрузки плейлиста
type PlaylistErrorMsg struct {
	Err error
}

// trackItem реализует интерфейс list.Item для трека
type trackItem struct {
	number  int
	track   playlist.Track
	current bool
}

func (i trackItem) FilterValue() string {
	return fmt.Sprintf("%s %s", i.track.Artist, i.track.Name)
}

// trackItemDelegate реализует отображение элементов списка
type trackItemDelegate struct{}

func (d trackItemDelegate) Height() int                             { return 1 }
func (d trackItemDelegate) Spacing() int                            { return 0 }
func (d trackItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d trackItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(trackItem)
	if !ok {
		return
	}

	// Номер | Исполнитель | Название | Альбом
	marker := " "
	if i.current {
		marker = "♪"
	}
	str := fmt.Sprintf("%s %-3d %-20s %-40s %s",
		marker,
		i.number,
		utils.TruncateString(i.track.Artist, 20),
		utils.TruncateString(i.track.Name, 40),
		utils.TruncateString(i.track.Album, 30))

	fn := itemStyle.Render
	switch {
	case index == m.Index():
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	case !i.track.HasPreview():
		fn = disabledItemStyle.Render
	case i.current:
		fn = currentItemStyle.Render
	}

	fmt.Fprint(w, fn(str))
}

// Model представляет модель экрана списка треков
type Model struct {
	ctx        context.Context
	controller *music.Controller
	list       list.Model
	spinner    spinner.Model
	loading    bool
	err        string
}

// NewModel создает новую модель списка треков
func NewModel(ctx context.Context, controller *music.Controller) *Model {
	l := list.New(nil, trackItemDelegate{}, 0, 0)
	l.Title = "Плейлист"
	l.SetShowStatusBar(false)
	l.SetShowTitle(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle
	l.KeyMap.Quit.SetEnabled(false)

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &Model{
		ctx:        ctx,
		controller: controller,
		list:       l,
		spinner:    s,
	}
	m.RefreshData()
	return m
}

// Init запускает загрузку плейлиста, если он ещё не загружен
func (m *Model) Init() tea.Cmd {
	if m.controller.Snapshot().Playlist != nil {
		return nil
	}
	return m.load(false)
}

// Loading возвращает true, пока плейлист загружается
func (m *Model) Loading() bool {
	return m.loading
}

// Err возвращает сообщение о последней ошибке загрузки
func (m *Model) Err() string {
	return m.err
}

// FilterState возвращает состояние фильтра списка
func (m *Model) FilterState() list.FilterState {
	return m.list.FilterState()
}

// RefreshData обновляет элементы списка из состояния контроллера
func (m *Model) RefreshData() {
	state := m.controller.Snapshot()
	if state.Playlist == nil {
		m.list.SetItems(nil)
		return
	}

	currentID := ""
	if state.CurrentTrack != nil {
		currentID = state.CurrentTrack.ID
	}

	items := make([]list.Item, len(state.Playlist.Tracks))
	for i, t := range state.Playlist.Tracks {
		items[i] = trackItem{number: i + 1, track: t, current: t.ID == currentID}
	}
	m.list.SetItems(items)
	m.list.Title = state.Playlist.Name
}

// load загружает плейлист; retry сбрасывает незавершённый запрос
func (m *Model) load(retry bool) tea.Cmd {
	m.loading = true
	m.err = ""

	ctx := m.ctx
	controller := m.controller
	fetch := func() tea.Msg {
		var err error
		if retry {
			err = controller.Retry(ctx)
		} else {
			err = controller.Refresh(ctx)
		}
		if err != nil {
			return PlaylistErrorMsg{Err: err}
		}
		return PlaylistLoadedMsg{Playlist: controller.Snapshot().Playlist}
	}

	return tea.Batch(m.spinner.Tick, fetch)
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 6) // Оставляем место для навигации и справки
		return m, nil

	case PlaylistLoadedMsg:
		m.loading = false
		m.err = ""
		m.RefreshData()
		return m, nil

	case PlaylistErrorMsg:
		m.loading = false
		m.err = music.Describe(msg.Err)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "r":
			if m.loading {
				return m, nil
			}
			return m, m.load(true)

		case "enter":
			selectedItem := m.list.SelectedItem()
			if item, ok := selectedItem.(trackItem); ok {
				if !item.track.HasPreview() {
					m.err = music.ErrNoPreview.Error()
					return m, nil
				}
				m.err = ""
				return m, func() tea.Msg {
					return TrackSelectedMsg{Track: item.track}
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	if m.loading {
		return statusStyle.Render(fmt.Sprintf("%s Загрузка плейлиста...", m.spinner.View()))
	}

	var b strings.Builder
	if m.controller.Snapshot().Playlist != nil {
		b.WriteString(m.list.View())
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString(errorStyle.Render("❌ " + m.err))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("Enter: воспроизвести • r: перезагрузить • /: поиск"))
	return b.String()
}
