package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-portfolio/internal/music"
	"github.com/hazadus/go-portfolio/internal/portfolio"
)

var (
	navStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	activeNavStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Underline(true).Padding(0, 1)
	nameStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginLeft(2)
	roleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#1db954")).MarginLeft(2)
	textStyle      = lipgloss.NewStyle().MarginLeft(2).Width(80)
	headingStyle   = lipgloss.NewStyle().Bold(true).MarginLeft(2).MarginTop(1)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginLeft(2)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginLeft(2)
)

func renderNavigation(active portfolio.SectionID) string {
	items := make([]string, 0, len(portfolio.Sections))
	for i, s := range portfolio.Sections {
		label := fmt.Sprintf("%d %s", i+1, s.Label)
		if s.ID == active {
			items = append(items, activeNavStyle.Render(label))
		} else {
			items = append(items, navStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, items...)
}

func renderFooter(section portfolio.SectionID) string {
	switch section {
	case portfolio.SectionContact:
		return footerStyle.Render("Esc: к навигации • Ctrl+C: выход")
	case portfolio.SectionMusic:
		return footerStyle.Render("Tab/←/→: разделы (в списке) • q: выход")
	}
	return footerStyle.Render("Tab/←/→ или 1-4: разделы • q: выход")
}

func renderHome(content portfolio.Content, state music.State) string {
	var b strings.Builder
	b.WriteString(nameStyle.Render(content.Owner))
	b.WriteString("\n")
	b.WriteString(roleStyle.Render(content.Role))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render(content.Summary))
	b.WriteString("\n")

	if state.CurrentTrack != nil && state.IsPlaying {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("♪ Сейчас играет: %s - %s", state.CurrentTrack.Artist, state.CurrentTrack.Name)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderAbout(content portfolio.Content) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Обо мне"))
	b.WriteString("\n")
	b.WriteString(textStyle.Render(content.About))
	b.WriteString("\n")

	groups := content.GroupTechnologies()
	if len(groups) == 0 {
		return b.String()
	}

	b.WriteString(headingStyle.Render("Технологии"))
	b.WriteString("\n")
	for _, g := range groups {
		b.WriteString(roleStyle.Render(g.Category.Label()))
		b.WriteString("\n")
		for _, tech := range g.Technologies {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  %-24s %s %s",
				tech.Name, tech.Proficiency.Bar(), tech.Proficiency)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderSocial(content portfolio.Content) string {
	if len(content.Social) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(headingStyle.Render("Я в сети"))
	b.WriteString("\n")
	for _, link := range content.Social {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-10s @%s  %s", link.Platform, link.Username, link.URL)))
		b.WriteString("\n")
	}
	return b.String()
}
