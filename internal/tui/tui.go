// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-portfolio/internal/contact"
	"github.com/hazadus/go-portfolio/internal/music"
	"github.com/hazadus/go-portfolio/internal/portfolio"
	"github.com/hazadus/go-portfolio/internal/tui/app"
)

// App представляет основное TUI приложение
type App struct {
	content    portfolio.Content
	controller *music.Controller
	submitter  *contact.Submitter
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(content portfolio.Content, controller *music.Controller, submitter *contact.Submitter) *App {
	return &App{
		content:    content,
		controller: controller,
		submitter:  submitter,
	}
}

// Run запускает TUI приложение и блокируется до выхода
func (tuiApp *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := app.NewMainModel(ctx, tuiApp.content, tuiApp.controller, tuiApp.submitter)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()

	// Останавливаем воспроизведение после завершения программы
	model.Close()

	return err
}
