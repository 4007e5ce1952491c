package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuimemo/internal/engine"
	statsPkg "github.com/verte-zerg/tuimemo/internal/stats"
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	ghostStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cursorStyle      = lipgloss.NewStyle().Underline(true)
	flashCursorStyle = lipgloss.NewStyle().Underline(true).Background(lipgloss.Color("#5C1F20"))
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	referenceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C8C8C8")).Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.ctrl == nil {
		return "No cards to practice. Add one with `tuimemo card add`.\n"
	}
	var body string
	var keys help.KeyMap
	switch m.phase {
	case phaseTyping:
		body = m.typingView()
		keys = typingKeys
	case phaseComplete:
		body = m.completeView()
		keys = completeKeys
	default:
		body = m.studyView()
		keys = studyKeys
	}
	if m.status != "" {
		body += "\n\n" + statusStyle.Render(m.status)
	}
	footer := m.renderFooter()
	helpLine := m.help.View(keys)
	if m.width == 0 || m.height == 0 {
		return body + "\n\n" + footer + "\n" + helpLine
	}
	content := lipgloss.NewStyle().Width(m.contentWidth()).Render(body)
	if m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 2
	placed := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	helpRow := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpLine)
	return placed + "\n" + footerLine + "\n" + helpRow
}

func (m *Model) header() string {
	return titleStyle.Render(joinNonEmpty(" · ", m.card.Title, m.deck, cardPosition(m.seq)))
}

func (m *Model) studyContent() string {
	width := m.contentWidth()
	if m.width == 0 {
		return m.ctrl.Reference()
	}
	return lipgloss.NewStyle().Width(width).Render(m.ctrl.Reference())
}

func (m *Model) studyView() string {
	text := m.ctrl.Reference()
	if m.width > 0 && m.height > 0 {
		text = m.study.View()
	}
	return m.header() + "\n\n" + text
}

func (m *Model) typingView() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	if m.peeking {
		b.WriteString(referenceStyle.Render(m.ctrl.Reference()))
		b.WriteString("\n\n")
	}
	runes := buildStyledRunes(m.trace, m.ghost, m.flash)
	if m.width == 0 {
		b.WriteString(renderStyledRunes(runes))
	} else {
		b.WriteString(wrapStyledRunes(runes, m.contentWidth()))
	}
	return b.String()
}

func (m *Model) completeView() string {
	if m.record == nil {
		return m.header()
	}
	rec := *m.record
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	wpm, _ := statsPkg.SessionMetrics(len([]rune(m.ctrl.Reference())), rec.Time)
	b.WriteString(fmt.Sprintf("Completed in %s · %.1f WPM", statsPkg.FormatSeconds(rec.Time), wpm))
	if p := m.ctrl.Attempt().PenaltySeconds; p > 0 {
		b.WriteString(fmt.Sprintf(" · penalty +%ds", p))
	}
	if assists := statsPkg.Assists(rec); assists != "-" {
		b.WriteString(" · " + assists)
	}
	switch {
	case m.rank == 1:
		b.WriteString("\nNew personal best!")
	case m.rank > 1:
		b.WriteString(fmt.Sprintf("\nRanked #%d of your best times.", m.rank))
	}
	if len(m.best) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(statsPkg.BestTimesLines(m.best), "\n"))
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	if m.ctrl == nil {
		return ""
	}
	segments := []string{"Time " + statsPkg.FormatSeconds(m.ctrl.Elapsed())}
	if p := m.ctrl.Attempt().PenaltySeconds; p > 0 {
		segments = append(segments, fmt.Sprintf("Penalty +%ds", p))
	}
	if m.phase == phaseTyping {
		segments = append(segments, fmt.Sprintf("Accuracy %.1f%%", m.ctrl.Accuracy()))
	}
	if m.ctrl.EasyMode() {
		segments = append(segments, "Easy")
	}
	if len(m.best) > 0 {
		segments = append(segments, "Best "+statsPkg.FormatSeconds(m.best[0].Time))
	}
	if m.phase == phaseTyping && engine.HasMistake(m.trace) {
		segments = append(segments, "ctrl+b to fix")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
