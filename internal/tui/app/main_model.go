// Package app содержит основную логику TUI приложения
package app

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-portfolio/internal/contact"
	"github.com/hazadus/go-portfolio/internal/music"
	"github.com/hazadus/go-portfolio/internal/portfolio"
	"github.com/hazadus/go-portfolio/internal/tui/contactform"
	tuiPlayer "github.com/hazadus/go-portfolio/internal/tui/player"
	"github.com/hazadus/go-portfolio/internal/tui/tracklist"
)

// MusicScreen определяет экран внутри раздела «Музыка»
type MusicScreen int

// Экраны раздела «Музыка»
const (
	// TracklistScreen - экран списка треков
	TracklistScreen MusicScreen = iota
	// PlayerScreen - экран плеера
	PlayerScreen
)

// headerHeight строки, занятые навигацией и подвалом
const headerHeight = 4

// MainModel представляет главную модель TUI
type MainModel struct {
	ctx            context.Context
	content        portfolio.Content
	controller     *music.Controller
	section        portfolio.SectionID
	musicScreen    MusicScreen
	tracklistModel *tracklist.Model
	playerModel    *tuiPlayer.Model
	contactModel   *contactform.Model
	width          int
	height         int
}

// NewMainModel создает новую главную модель
func NewMainModel(ctx context.Context, content portfolio.Content, controller *music.Controller, submitter *contact.Submitter) *MainModel {
	return &MainModel{
		ctx:            ctx,
		content:        content,
		controller:     controller,
		section:        portfolio.SectionHome,
		musicScreen:    TracklistScreen,
		tracklistModel: tracklist.NewModel(ctx, controller),
		contactModel:   contactform.NewModel(ctx, submitter),
	}
}

// Init загружает плейлист и начинает слушать события плеера
func (m *MainModel) Init() tea.Cmd {
	return tea.Batch(
		m.tracklistModel.Init(),
		m.contactModel.Init(),
		tuiPlayer.ListenEvents(m.ctx, m.controller),
	)
}

// Section возвращает активный раздел
func (m *MainModel) Section() portfolio.SectionID {
	return m.section
}

// MusicScreen возвращает активный экран раздела «Музыка»
func (m *MainModel) MusicScreen() MusicScreen {
	return m.musicScreen
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.controller.Stop()
			return m, tea.Quit
		}
		if m.capturesKeys() {
			break
		}
		switch msg.String() {
		case "q":
			m.controller.Stop()
			return m, tea.Quit
		case "tab", "right":
			m.section = portfolio.NextSection(m.section)
			return m, nil
		case "shift+tab", "left":
			m.section = portfolio.PrevSection(m.section)
			return m, nil
		case "1", "2", "3", "4":
			m.section = portfolio.Sections[int(msg.String()[0]-'1')].ID
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - headerHeight}

		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.tracklistModel, cmd = m.tracklistModel.Update(inner)
		cmds = append(cmds, cmd)
		m.contactModel, cmd = m.contactModel.Update(inner)
		cmds = append(cmds, cmd)
		if m.playerModel != nil {
			_, cmd = m.playerModel.Update(inner)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tuiPlayer.EventMsg:
		// Событие применено к контроллеру; продолжаем слушать
		cmds := []tea.Cmd{tuiPlayer.ListenEvents(m.ctx, m.controller)}
		if m.playerModel != nil {
			_, cmd := m.playerModel.Update(msg)
			cmds = append(cmds, cmd)
		}
		m.tracklistModel.RefreshData()
		return m, tea.Batch(cmds...)

	case tracklist.TrackSelectedMsg:
		m.musicScreen = PlayerScreen
		m.playerModel = tuiPlayer.NewModel(m.ctx, msg.Track, m.controller)
		cmds := []tea.Cmd{m.playerModel.Init()}
		if m.width > 0 {
			_, cmd := m.playerModel.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height - headerHeight})
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tuiPlayer.GoBackMsg:
		m.musicScreen = TracklistScreen
		m.playerModel = nil
		m.tracklistModel.RefreshData()
		return m, nil

	case contactform.GoBackMsg:
		m.section = portfolio.SectionHome
		return m, nil

	case tracklist.PlaylistLoadedMsg, tracklist.PlaylistErrorMsg:
		var cmd tea.Cmd
		m.tracklistModel, cmd = m.tracklistModel.Update(msg)
		return m, cmd

	case contactform.SubmitResultMsg, contactform.ResetMsg:
		var cmd tea.Cmd
		m.contactModel, cmd = m.contactModel.Update(msg)
		return m, cmd
	}

	return m, m.updateActive(msg)
}

// capturesKeys возвращает true, если активный экран сам обрабатывает все клавиши
func (m *MainModel) capturesKeys() bool {
	switch m.section {
	case portfolio.SectionContact:
		return true
	case portfolio.SectionMusic:
		if m.musicScreen == PlayerScreen {
			return true
		}
		return m.tracklistModel.FilterState() == list.Filtering
	}
	return false
}

// updateActive передает сообщение активной модели
func (m *MainModel) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.section {
	case portfolio.SectionMusic:
		switch m.musicScreen {
		case TracklistScreen:
			m.tracklistModel, cmd = m.tracklistModel.Update(msg)
		case PlayerScreen:
			if m.playerModel != nil {
				_, cmd = m.playerModel.Update(msg)
			}
		}
	case portfolio.SectionContact:
		m.contactModel, cmd = m.contactModel.Update(msg)
	default:
		// спиннер загрузки плейлиста крутится и вне раздела «Музыка»
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			m.tracklistModel, cmd = m.tracklistModel.Update(msg)
		}
	}
	return cmd
}

// View отображает интерфейс
func (m *MainModel) View() string {
	var body string
	switch m.section {
	case portfolio.SectionHome:
		body = renderHome(m.content, m.controller.Snapshot())
	case portfolio.SectionAbout:
		body = renderAbout(m.content)
	case portfolio.SectionMusic:
		switch m.musicScreen {
		case PlayerScreen:
			if m.playerModel != nil {
				body = m.playerModel.View()
			} else {
				body = "Ошибка: модель плеера не инициализирована"
			}
		default:
			body = m.tracklistModel.View()
		}
	case portfolio.SectionContact:
		body = m.contactModel.View() + "\n\n" + renderSocial(m.content)
	default:
		return "Неизвестный раздел"
	}

	return renderNavigation(m.section) + "\n\n" + body + "\n" + renderFooter(m.section)
}

// Close закрывает ресурсы главной модели
func (m *MainModel) Close() {
	m.controller.Stop()
}
