package library

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuimemo/internal/model"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func seeded(t *testing.T) (*Library, model.Card, model.Card) {
	t.Helper()
	lib := New(nil, nil)
	psalm, err := lib.AddCard("Psalm 23", "The Lord is my shepherd;\nI shall not want.", now)
	require.NoError(t, err)
	poem, err := lib.AddCard("", "Two roads diverged in a yellow wood, and sorry I could not travel both", now)
	require.NoError(t, err)
	return lib, psalm, poem
}

func TestAddCard(t *testing.T) {
	lib, psalm, poem := seeded(t)
	assert.Len(t, lib.Cards(), 2)
	assert.Equal(t, "Psalm 23", psalm.Title)
	assert.NotEmpty(t, psalm.ID)
	assert.Equal(t, "Two roads diverged in a yellow…", poem.Title)

	_, err := lib.AddCard("blank", " \n\t ", now)
	require.ErrorIs(t, err, ErrEmptyText)
}

func TestAddCardRejectsInvalidUTF8(t *testing.T) {
	lib := New(nil, nil)
	// Latin-1 "café".
	_, err := lib.AddCard("", "caf\xe9", now)
	require.ErrorIs(t, err, ErrInvalidText)
	_, err = lib.AddCard("caf\xe9", "café", now)
	require.ErrorIs(t, err, ErrInvalidText)
	assert.Empty(t, lib.Cards())

	card, err := lib.AddCard("", "café", now)
	require.NoError(t, err)
	assert.Equal(t, "café", card.Text)
}

func TestSharesReference(t *testing.T) {
	lib, psalm, _ := seeded(t)
	assert.True(t, lib.SharesReference("the lord is my  shepherd; I shall not want."))
	assert.False(t, lib.SharesReference("The Lord is my shepherd"))

	_, err := lib.RemoveCard(psalm.ID)
	require.NoError(t, err)
	assert.False(t, lib.SharesReference(psalm.Text))
}

func TestFindCard(t *testing.T) {
	lib, psalm, poem := seeded(t)

	got, err := lib.FindCard(psalm.ID)
	require.NoError(t, err)
	assert.Equal(t, psalm, got)

	got, err = lib.FindCard(poem.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, poem, got)

	got, err = lib.FindCard("psalm 23")
	require.NoError(t, err)
	assert.Equal(t, psalm, got)

	got, err = lib.FindCard("two")
	require.NoError(t, err)
	assert.Equal(t, poem, got)

	_, err = lib.FindCard("missing")
	require.ErrorIs(t, err, ErrCardNotFound)

	_, err = lib.AddCard("Psalm 24", "The earth is the Lord's", now)
	require.NoError(t, err)
	_, err = lib.FindCard("psalm")
	require.ErrorIs(t, err, ErrAmbiguous)
	// An exact title still wins over prefix matches.
	got, err = lib.FindCard("Psalm 23")
	require.NoError(t, err)
	assert.Equal(t, psalm.ID, got.ID)
}

func TestUpdateCard(t *testing.T) {
	lib, psalm, _ := seeded(t)
	updated, err := lib.UpdateCard(psalm.ID, "", "New text")
	require.NoError(t, err)
	assert.Equal(t, "Psalm 23", updated.Title)
	assert.Equal(t, "New text", updated.Text)

	_, err = lib.UpdateCard("nope", "x", "y")
	require.ErrorIs(t, err, ErrCardNotFound)

	_, err = lib.UpdateCard(psalm.ID, "", "caf\xe9")
	require.ErrorIs(t, err, ErrInvalidText)
	got, err := lib.FindCard(psalm.ID)
	require.NoError(t, err)
	assert.Equal(t, "New text", got.Text)
}

func TestDecks(t *testing.T) {
	lib, psalm, poem := seeded(t)
	_, err := lib.CreateDeck("Morning", now)
	require.NoError(t, err)
	_, err = lib.CreateDeck("morning", now)
	require.ErrorIs(t, err, ErrDeckExists)

	_, err = lib.AddToDeck("MORNING", "two")
	require.NoError(t, err)
	_, err = lib.AddToDeck("morning", psalm.ID)
	require.NoError(t, err)
	_, err = lib.AddToDeck("morning", psalm.ID)
	require.ErrorIs(t, err, ErrCardInDeck)
	_, err = lib.AddToDeck("evening", psalm.ID)
	require.ErrorIs(t, err, ErrDeckNotFound)

	deck, err := lib.FindDeck("Morning")
	require.NoError(t, err)
	assert.Equal(t, []model.Card{poem, psalm}, lib.DeckCards(deck))

	_, err = lib.RemoveCard(poem.ID)
	require.NoError(t, err)
	deck, err = lib.FindDeck("Morning")
	require.NoError(t, err)
	assert.Equal(t, []string{psalm.ID}, deck.CardIDs)

	_, err = lib.RemoveFromDeck("Morning", psalm.ID)
	require.NoError(t, err)
	_, err = lib.RemoveFromDeck("Morning", psalm.ID)
	require.ErrorIs(t, err, ErrCardNotFound)

	_, err = lib.RemoveDeck("morning")
	require.NoError(t, err)
	assert.Empty(t, lib.Decks())
	assert.Len(t, lib.Cards(), 1)
}

func TestDecksReturnsCopies(t *testing.T) {
	lib, psalm, _ := seeded(t)
	_, err := lib.CreateDeck("d", now)
	require.NoError(t, err)
	_, err = lib.AddToDeck("d", psalm.ID)
	require.NoError(t, err)

	decks := lib.Decks()
	decks[0].CardIDs[0] = "changed"
	deck, err := lib.FindDeck("d")
	require.NoError(t, err)
	assert.Equal(t, psalm.ID, deck.CardIDs[0])
}

func TestSequence(t *testing.T) {
	cards := []model.Card{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	seq := NewSequence(cards)
	var seen []string
	for {
		card, ok := seq.Current()
		require.True(t, ok)
		seen = append(seen, card.ID)
		if !seq.Next() {
			break
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, seen)
	assert.False(t, seq.HasNext())
	assert.Equal(t, 2, seq.Position())

	_, ok := NewSequence(nil).Current()
	assert.False(t, ok)
}

func TestShuffledSequenceKeepsAllCards(t *testing.T) {
	cards := []model.Card{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	seq := NewShuffledSequenceRand(cards, rand.New(rand.NewSource(1)))
	require.Equal(t, 4, seq.Len())
	got := map[string]bool{}
	for i := 0; i < seq.Len(); i++ {
		card, _ := seq.Current()
		got[card.ID] = true
		seq.Next()
	}
	assert.Len(t, got, 4)
	assert.Equal(t, "a", cards[0].ID)
}
