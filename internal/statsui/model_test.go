package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuimemo/internal/model"
	"github.com/verte-zerg/tuimemo/internal/store"
)

func sampleEntries() []Entry {
	return []Entry{
		{
			Card: model.Card{ID: "1", Title: "Psalm 23", Text: "The Lord is my shepherd"},
			Best: []model.TimingRecord{{Time: 42, Date: 2000}, {Time: 61, Date: 3000, EasyMode: true}},
		},
		{
			Card: model.Card{ID: "2", Title: "The Road Not Taken", Text: "Two roads diverged"},
		},
	}
}

func TestBuildRows(t *testing.T) {
	rows := buildRows(sampleEntries())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "0:42" || rows[0][2] != "2" || rows[0][4] != "-" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][1] != "-" || rows[1][2] != "0" {
		t.Fatalf("unexpected second row: %v", rows[1])
	}
}

func TestLatestRecord(t *testing.T) {
	got := latest([]model.TimingRecord{{Time: 10, Date: 5}, {Time: 20, Date: 9}, {Time: 30, Date: 1}})
	if got.Time != 20 {
		t.Fatalf("expected most recent record, got %+v", got)
	}
}

func TestSelectionMovesDetail(t *testing.T) {
	m := NewModel(sampleEntries())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	entry, ok := m.Selected()
	if !ok || entry.Card.ID != "1" {
		t.Fatalf("expected first card selected, got %+v", entry)
	}
	if !strings.Contains(m.detail.View(), "Psalm 23") {
		t.Fatalf("detail should show the selected card")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	entry, _ = m.Selected()
	if entry.Card.ID != "2" {
		t.Fatalf("expected second card after down, got %+v", entry)
	}
	if !strings.Contains(m.detail.View(), "No personal bests yet.") {
		t.Fatalf("detail should show missing bests")
	}
}

func TestFilterByTitle(t *testing.T) {
	m := NewModel(sampleEntries())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("road")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter mode to end")
	}
	if len(m.visible) != 1 || m.visible[0].Card.ID != "2" {
		t.Fatalf("unexpected filter result: %+v", m.visible)
	}
	if !strings.Contains(m.View(), `matching "road"`) {
		t.Fatalf("header should show the query")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("zzz")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.visible) != 0 || m.errMsg == "" {
		t.Fatalf("expected no matches with an error message")
	}
	if _, ok := m.Selected(); ok {
		t.Fatalf("expected no selection")
	}
}

func TestLoadFromStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tuimemo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	ctx := context.Background()
	lib, err := st.LoadLibrary(ctx)
	if err != nil {
		t.Fatalf("load library: %v", err)
	}
	card, err := lib.AddCard("Psalm 23", "The Lord is my shepherd", time.Now())
	if err != nil {
		t.Fatalf("add card: %v", err)
	}
	if err := st.SaveLibrary(ctx, lib); err != nil {
		t.Fatalf("save library: %v", err)
	}
	if _, err := st.SavePersonalBestTime(ctx, card.Text, model.TimingRecord{Time: 30}); err != nil {
		t.Fatalf("save best: %v", err)
	}

	entries, err := Load(ctx, st, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 || len(entries[0].Best) != 1 || entries[0].Best[0].Time != 30 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if _, err := Load(ctx, st, "missing"); err == nil {
		t.Fatalf("expected unknown deck error")
	}
}
