// Package statsui provides the Bubble Tea personal-best browser.
package statsui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuimemo/internal/model"
	"github.com/verte-zerg/tuimemo/internal/stats"
	"github.com/verte-zerg/tuimemo/internal/store"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	detailStyle = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
)

// Entry is a card with its ranked personal bests.
type Entry struct {
	Card model.Card
	Best []model.TimingRecord
}

// Load reads the cards to browse. A non-empty deck limits them to that deck.
func Load(ctx context.Context, st *store.Store, deck string) ([]Entry, error) {
	lib, err := st.LoadLibrary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}
	cards := lib.Cards()
	if deck != "" {
		d, err := lib.FindDeck(deck)
		if err != nil {
			return nil, err
		}
		cards = lib.DeckCards(d)
	}
	return loadEntries(ctx, st, cards)
}

func loadEntries(ctx context.Context, st *store.Store, cards []model.Card) ([]Entry, error) {
	entries := make([]Entry, 0, len(cards))
	for _, card := range cards {
		best, err := st.BestTimes(ctx, card.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to load best times for %s: %w", card.Title, err)
		}
		entries = append(entries, Entry{Card: card, Best: best})
	}
	return entries, nil
}

// Model implements the Bubble Tea personal-best browser.
type Model struct {
	entries []Entry
	visible []Entry
	query   string

	table  table.Model
	detail viewport.Model

	filterMode bool
	filter     textinput.Model

	width  int
	height int
	errMsg string
}

// NewModel constructs a browser over entries.
func NewModel(entries []Entry) *Model {
	m := &Model{
		entries: entries,
		table:   buildTable(nil, 0, 1),
		detail:  viewport.New(0, 0),
		filter:  newFilterInput("title: "),
	}
	m.applyQuery("")
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "/":
			m.filterMode = true
			m.filter.SetValue(m.query)
			m.filter.CursorEnd()
			return m, m.filter.Focus()
		case "g", "home":
			m.table.GotoTop()
			m.renderDetail()
			return m, nil
		case "G", "end":
			m.table.GotoBottom()
			m.renderDetail()
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		m.renderDetail()
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filter.Blur()
		return m, nil
	case tea.KeyEnter:
		m.filterMode = false
		m.filter.Blur()
		m.applyQuery(m.filter.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m *Model) applyQuery(query string) {
	m.query = strings.TrimSpace(query)
	lower := strings.ToLower(m.query)
	m.visible = m.visible[:0]
	for _, e := range m.entries {
		if lower == "" || strings.Contains(strings.ToLower(e.Card.Title), lower) {
			m.visible = append(m.visible, e)
		}
	}
	m.errMsg = ""
	if len(m.visible) == 0 {
		m.errMsg = "no cards match"
	}
	m.table.SetRows(buildRows(m.visible))
	m.table.GotoTop()
	m.renderDetail()
}

// Selected returns the highlighted entry.
func (m *Model) Selected() (Entry, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return Entry{}, false
	}
	return m.visible[idx], true
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	tableHeight, detailHeight := m.layoutHeights()
	header := headerStyle.Render(m.renderHeader())
	body := fitLines(m.table.View(), m.width, tableHeight)
	detail := fitLines(detailStyle.Render(m.detail.View()), m.width, detailHeight)
	footer := headerStyle.Render(truncateLine("↑/↓ select  / filter  pgup/pgdown scroll  q quit", m.width))
	if m.filterMode {
		footer = m.filter.View()
	} else if m.errMsg != "" {
		footer = errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return strings.Join([]string{header, body, detail, footer}, "\n")
}

func (m *Model) renderHeader() string {
	summary := fmt.Sprintf("%d cards", len(m.visible))
	if m.query != "" {
		summary += fmt.Sprintf(" matching %q", m.query)
	}
	return summary
}

func (m *Model) layoutHeights() (tableHeight, detailHeight int) {
	available := m.height - 2
	if available < 2 {
		return 1, 1
	}
	tableHeight = available / 2
	detailHeight = available - tableHeight
	return tableHeight, detailHeight
}

func (m *Model) updateLayout() {
	tableHeight, detailHeight := m.layoutHeights()
	m.table.SetWidth(m.width)
	m.table.SetHeight(maxInt(1, tableHeight-1))
	frameW, frameH := detailStyle.GetFrameSize()
	m.detail.Width = maxInt(1, m.width-frameW)
	m.detail.Height = maxInt(1, detailHeight-frameH)
	m.filter.Width = maxInt(1, m.width-len(m.filter.Prompt)-1)
	m.renderDetail()
}

func (m *Model) renderDetail() {
	entry, ok := m.Selected()
	if !ok {
		m.detail.SetContent("")
		return
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(entry.Card.Title))
	b.WriteString("\n")
	if len(entry.Best) == 0 {
		b.WriteString("No personal bests yet.")
	} else {
		b.WriteString(strings.Join(stats.BestTimesLines(entry.Best), "\n"))
	}
	b.WriteString("\n\n")
	text := entry.Card.Text
	if m.detail.Width > 0 {
		text = lipgloss.NewStyle().Width(m.detail.Width).Render(text)
	}
	b.WriteString(text)
	m.detail.SetContent(b.String())
	m.detail.GotoTop()
}

func buildTable(rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Title", Width: 32},
			{Title: "Best", Width: 8},
			{Title: "Kept", Width: 4},
			{Title: "Last", Width: 10},
			{Title: "Assists", Width: 16},
		}),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
		table.WithFocused(true),
	)
	t.SetWidth(width)
	t.SetStyles(tableStyles())
	return t
}

func buildRows(entries []Entry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		best, last, assists := "-", "-", "-"
		if len(e.Best) > 0 {
			best = stats.FormatSeconds(e.Best[0].Time)
			assists = stats.Assists(e.Best[0])
			last = latest(e.Best).DateTime().Local().Format("2006-01-02")
		}
		rows = append(rows, table.Row{
			truncateLine(e.Card.Title, 32),
			best,
			fmt.Sprintf("%d", len(e.Best)),
			last,
			assists,
		})
	}
	return rows
}

func latest(records []model.TimingRecord) model.TimingRecord {
	sorted := append([]model.TimingRecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})
	return sorted[0]
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
