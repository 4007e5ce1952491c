package tui

import "github.com/charmbracelet/bubbles/key"

type studyKeyMap struct {
	Start  key.Binding
	Easy   key.Binding
	Next   key.Binding
	Scroll key.Binding
	Quit   key.Binding
}

func (k studyKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Easy, k.Next, k.Scroll, k.Quit}
}

func (k studyKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type typingKeyMap struct {
	Reveal     key.Binding
	Revert     key.Binding
	DeleteWord key.Binding
	Back       key.Binding
	Quit       key.Binding
}

func (k typingKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reveal, k.Revert, k.DeleteWord, k.Back, k.Quit}
}

func (k typingKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type completeKeyMap struct {
	Retry key.Binding
	Study key.Binding
	Next  key.Binding
	Quit  key.Binding
}

func (k completeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Retry, k.Study, k.Next, k.Quit}
}

func (k completeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var (
	studyKeys = studyKeyMap{
		Start:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start typing")),
		Easy:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "toggle easy mode")),
		Next:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next card")),
		Scroll: key.NewBinding(key.WithKeys("up", "down", "pgup", "pgdown"), key.WithHelp("↑/↓", "scroll")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	typingKeys = typingKeyMap{
		Reveal:     key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "peek (+60s)")),
		Revert:     key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "back to last correct")),
		DeleteWord: key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "delete word")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "study")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
	completeKeys = completeKeyMap{
		Retry: key.NewBinding(key.WithKeys("r", "enter"), key.WithHelp("r", "retry")),
		Study: key.NewBinding(key.WithKeys("s", "esc"), key.WithHelp("s", "study")),
		Next:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next card")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
)
