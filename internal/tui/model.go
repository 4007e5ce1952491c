package tui

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/verte-zerg/tuimemo/internal/engine"
	"github.com/verte-zerg/tuimemo/internal/library"
	"github.com/verte-zerg/tuimemo/internal/model"
	"github.com/verte-zerg/tuimemo/internal/session"
	statsPkg "github.com/verte-zerg/tuimemo/internal/stats"
	"github.com/verte-zerg/tuimemo/internal/store"
)

type phase int

const (
	phaseStudy phase = iota
	phaseTyping
	phaseComplete
)

type (
	ghostMsg    session.GhostHint
	tickMsg     struct{ gen int }
	flashOffMsg struct{ seq int }
)

// Options configures the recall UI.
type Options struct {
	Config model.Config
	Store  *store.Store
	Cards  *library.Sequence
	Deck   string
	Prefs  model.Preferences
	Logger *zap.Logger
	Clock  session.Clock
}

// Model implements the Bubble Tea recall UI.
type Model struct {
	config model.Config
	store  *store.Store
	seq    *library.Sequence
	deck   string
	prefs  model.Preferences
	logger *zap.Logger
	clock  session.Clock

	width  int
	height int
	phase  phase

	card    model.Card
	ctrl    *session.Controller
	ghostCh chan session.GhostHint

	trace    []engine.CharResult
	ghost    string
	peeking  bool
	flash    bool
	flashSeq int
	tickGen  int

	best   []model.TimingRecord
	record *model.TimingRecord
	rank   int
	status string

	study viewport.Model
	help  help.Model
}

// NewModel constructs the recall UI positioned on the sequence's current card.
func NewModel(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = session.SystemClock{}
	}
	m := &Model{
		config:  opts.Config,
		store:   opts.Store,
		seq:     opts.Cards,
		deck:    opts.Deck,
		prefs:   opts.Prefs,
		logger:  opts.Logger,
		clock:   opts.Clock,
		ghostCh: make(chan session.GhostHint, 1),
		study:   viewport.New(0, 0),
		help:    help.New(),
	}
	m.loadCard()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return waitForGhost(m.ghostCh)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeStudy()
		return m, nil
	case ghostMsg:
		if m.phase == phaseTyping && m.ctrl != nil {
			if text := m.ctrl.ApplyGhost(session.GhostHint(msg)); text != "" {
				m.ghost = engine.GhostWindow(text, m.config.GhostWindow)
			}
		}
		return m, waitForGhost(m.ghostCh)
	case tickMsg:
		if msg.gen != m.tickGen || m.phase != phaseTyping {
			return m, nil
		}
		return m, tickAfter(m.tickGen)
	case flashOffMsg:
		if msg.seq == m.flashSeq {
			m.flash = false
		}
		return m, nil
	case tea.KeyMsg:
		if m.ctrl == nil {
			if msg.Type == tea.KeyCtrlC || msg.String() == "q" || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}
		switch m.phase {
		case phaseTyping:
			return m.updateTyping(msg)
		case phaseComplete:
			return m.updateComplete(msg)
		default:
			return m.updateStudy(msg)
		}
	default:
		return m, nil
	}
}

func (m *Model) updateStudy(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, studyKeys.Quit):
		m.ctrl.Close()
		return m, tea.Quit
	case key.Matches(msg, studyKeys.Start):
		m.startAttempt()
		return m, nil
	case key.Matches(msg, studyKeys.Easy):
		easy := !m.ctrl.EasyMode()
		if m.ctrl.SetEasyMode(easy) {
			m.prefs.EasyMode = easy
			m.savePreferences()
		}
		return m, nil
	case key.Matches(msg, studyKeys.Next):
		m.nextCard()
		return m, nil
	}
	var cmd tea.Cmd
	m.study, cmd = m.study.Update(msg)
	return m, cmd
}

func (m *Model) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, typingKeys.Quit):
		m.ctrl.Close()
		return m, tea.Quit
	case key.Matches(msg, typingKeys.Back):
		m.ctrl.Abandon()
		m.enterStudy()
		return m, nil
	case key.Matches(msg, typingKeys.Reveal):
		if err := m.ctrl.Reveal(); err != nil {
			m.status = "Start typing before peeking."
			return m, nil
		}
		m.peeking = true
		m.status = ""
		return m, nil
	case key.Matches(msg, typingKeys.Revert):
		return m, m.edit(func() session.Update {
			return m.ctrl.Revert(context.Background())
		})
	case key.Matches(msg, typingKeys.DeleteWord):
		return m, m.setInput(deleteLastWord(m.ctrl.Input()))
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		input := []rune(m.ctrl.Input())
		if len(input) == 0 {
			return m, nil
		}
		return m, m.setInput(string(input[:len(input)-1]))
	case tea.KeySpace:
		return m, m.setInput(m.ctrl.Input() + " ")
	case tea.KeyRunes:
		return m, m.setInput(m.ctrl.Input() + string(msg.Runes))
	default:
		return m, nil
	}
}

func (m *Model) updateComplete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, completeKeys.Quit):
		m.ctrl.Close()
		return m, tea.Quit
	case key.Matches(msg, completeKeys.Retry):
		m.startAttempt()
	case key.Matches(msg, completeKeys.Study):
		m.enterStudy()
	case key.Matches(msg, completeKeys.Next):
		m.nextCard()
	}
	return m, nil
}

func (m *Model) setInput(input string) tea.Cmd {
	return m.edit(func() session.Update {
		return m.ctrl.SetInput(context.Background(), input)
	})
}

// edit applies an input change and schedules the timer and flash ticks it
// calls for.
func (m *Model) edit(apply func() session.Update) tea.Cmd {
	before := m.ctrl.Attempt().State
	prevLen := len(m.trace)
	upd := apply()

	m.trace = upd.Trace
	m.ghost = ""
	m.peeking = false
	m.status = ""
	if upd.Record != nil {
		m.finish(upd)
		return nil
	}

	var cmds []tea.Cmd
	if before == session.Idle && m.ctrl.Attempt().State == session.Typing {
		m.tickGen++
		cmds = append(cmds, tickAfter(m.tickGen))
	}
	if n := len(upd.Trace); n > prevLen && !upd.Trace[n-1].Correct {
		m.flashSeq++
		m.flash = true
		cmds = append(cmds, flashAfter(m.config.FlashDelay, m.flashSeq))
	}
	return tea.Batch(cmds...)
}

func (m *Model) finish(upd session.Update) {
	m.phase = phaseComplete
	m.tickGen++
	m.flash = false
	m.record = upd.Record
	m.rank = 0
	if upd.Best == nil {
		m.status = "Could not save this time."
		return
	}
	m.best = upd.Best
	m.rank = statsPkg.RankOf(upd.Best, *upd.Record)
}

func (m *Model) startAttempt() {
	m.ctrl.Begin()
	m.phase = phaseTyping
	m.trace = nil
	m.ghost = ""
	m.peeking = false
	m.flash = false
	m.record = nil
	m.rank = 0
	m.status = ""
	m.tickGen++
}

func (m *Model) enterStudy() {
	m.ctrl.Begin()
	m.phase = phaseStudy
	m.trace = nil
	m.ghost = ""
	m.peeking = false
	m.flash = false
	m.record = nil
	m.tickGen++
	m.study.GotoTop()
}

func (m *Model) nextCard() {
	if m.seq == nil || !m.seq.Next() {
		m.status = "No more cards."
		return
	}
	m.loadCard()
}

func (m *Model) loadCard() {
	if m.ctrl != nil {
		m.ctrl.Close()
	}
	m.ctrl = nil
	m.best = nil
	if m.seq == nil {
		return
	}
	card, ok := m.seq.Current()
	if !ok {
		return
	}
	m.card = card
	var saver session.BestTimeSaver
	if m.store != nil {
		saver = m.store
	}
	ch := m.ghostCh
	m.ctrl = session.NewController(session.Options{
		Reference:  card.Text,
		EasyMode:   m.prefs.EasyMode,
		GhostDelay: m.config.GhostDelay,
		Clock:      m.clock,
		Saver:      saver,
		Logger:     m.logger.With(zap.String("card_id", card.ID)),
		OnGhost: func(h session.GhostHint) {
			select {
			case ch <- h:
			default:
			}
		},
	})
	m.loadBestTimes()
	m.prefs.LastCardID = card.ID
	m.savePreferences()
	m.study.SetContent(m.studyContent())
	m.enterStudy()
}

func (m *Model) loadBestTimes() {
	if m.store == nil {
		return
	}
	best, err := m.store.BestTimes(context.Background(), m.ctrl.Reference())
	if err != nil {
		m.logger.Error("failed to load personal bests", zap.Error(err))
		return
	}
	m.best = best
}

func (m *Model) savePreferences() {
	if m.store == nil {
		return
	}
	if err := m.store.SavePreferences(context.Background(), m.prefs); err != nil {
		m.logger.Error("failed to save preferences", zap.Error(err))
	}
}

func (m *Model) resizeStudy() {
	m.study.Width = m.contentWidth()
	height := m.height - 6
	if height < 1 {
		height = 1
	}
	m.study.Height = height
	if m.ctrl != nil {
		m.study.SetContent(m.studyContent())
	}
}

func (m *Model) contentWidth() int {
	width := int(float64(m.width) * 0.70)
	if width < 1 {
		width = 1
	}
	return width
}

// Preferences returns the preferences as last saved by the UI.
func (m *Model) Preferences() model.Preferences {
	return m.prefs
}

func deleteLastWord(input string) string {
	runes := []rune(input)
	end := len(runes)
	for end > 0 && unicode.IsSpace(runes[end-1]) {
		end--
	}
	for end > 0 && !unicode.IsSpace(runes[end-1]) {
		end--
	}
	return string(runes[:end])
}

func waitForGhost(ch <-chan session.GhostHint) tea.Cmd {
	return func() tea.Msg {
		return ghostMsg(<-ch)
	}
}

func tickAfter(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func flashAfter(d time.Duration, seq int) tea.Cmd {
	if d <= 0 {
		d = 500 * time.Millisecond
	}
	return tea.Tick(d, func(time.Time) tea.Msg {
		return flashOffMsg{seq: seq}
	})
}

func cardPosition(seq *library.Sequence) string {
	if seq == nil || seq.Len() <= 1 {
		return ""
	}
	return fmt.Sprintf("%d/%d", seq.Position()+1, seq.Len())
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
