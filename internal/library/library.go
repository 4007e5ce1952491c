// Package library manages the card and deck collections.
package library

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuimemo/internal/engine"
	"github.com/verte-zerg/tuimemo/internal/model"
)

var (
	// ErrCardNotFound is returned when no card matches a query.
	ErrCardNotFound = errors.New("card not found")
	// ErrDeckNotFound is returned when no deck matches a query.
	ErrDeckNotFound = errors.New("deck not found")
	// ErrDeckExists is returned when creating a deck with a taken name.
	ErrDeckExists = errors.New("deck already exists")
	// ErrAmbiguous is returned when a query matches more than one card.
	ErrAmbiguous = errors.New("query matches more than one card")
	// ErrEmptyText is returned for cards without any text to memorize.
	ErrEmptyText = errors.New("card text is empty")
	// ErrCardInDeck is returned when adding a card a deck already holds.
	ErrCardInDeck = errors.New("card already in deck")
	// ErrInvalidText is returned for a card title or text that is not valid UTF-8.
	ErrInvalidText = errors.New("card text is not valid UTF-8")
)

const (
	minIDPrefix   = 4
	autoTitleRune = 32
)

// Library holds cards and decks in insertion order.
type Library struct {
	cards []model.Card
	decks []model.Deck
}

// New returns a library over copies of cards and decks.
func New(cards []model.Card, decks []model.Deck) *Library {
	return &Library{
		cards: append([]model.Card(nil), cards...),
		decks: append([]model.Deck(nil), decks...),
	}
}

// Cards returns all cards.
func (l *Library) Cards() []model.Card {
	return append([]model.Card(nil), l.cards...)
}

// Decks returns all decks.
func (l *Library) Decks() []model.Deck {
	out := make([]model.Deck, len(l.decks))
	for i, d := range l.decks {
		d.CardIDs = append([]string(nil), d.CardIDs...)
		out[i] = d
	}
	return out
}

// AddCard creates a card. An empty title is derived from the text.
func (l *Library) AddCard(title, text string, now time.Time) (model.Card, error) {
	if err := checkText(text); err != nil {
		return model.Card{}, err
	}
	if !utf8.ValidString(title) {
		return model.Card{}, ErrInvalidText
	}
	text = strings.TrimSpace(text)
	title = strings.TrimSpace(title)
	if title == "" {
		title = autoTitle(text)
	}
	card := model.Card{
		ID:        uuid.NewString(),
		Title:     title,
		Text:      text,
		CreatedAt: now,
	}
	l.cards = append(l.cards, card)
	return card, nil
}

// UpdateCard replaces a card's title and text. Empty values keep the current ones.
func (l *Library) UpdateCard(id, title, text string) (model.Card, error) {
	idx := l.cardIndex(id)
	if idx < 0 {
		return model.Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	if !utf8.ValidString(text) || !utf8.ValidString(title) {
		return model.Card{}, ErrInvalidText
	}
	card := &l.cards[idx]
	if t := strings.TrimSpace(text); t != "" {
		card.Text = t
	}
	if t := strings.TrimSpace(title); t != "" {
		card.Title = t
	}
	return *card, nil
}

// SharesReference reports whether any card's text maps to the same best-times
// list as text.
func (l *Library) SharesReference(text string) bool {
	key := engine.ReferenceKey(text)
	for _, c := range l.cards {
		if engine.ReferenceKey(c.Text) == key {
			return true
		}
	}
	return false
}

// RemoveCard deletes a card and drops it from every deck.
func (l *Library) RemoveCard(id string) (model.Card, error) {
	idx := l.cardIndex(id)
	if idx < 0 {
		return model.Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	card := l.cards[idx]
	l.cards = append(l.cards[:idx], l.cards[idx+1:]...)
	for i := range l.decks {
		l.decks[i].CardIDs = removeString(l.decks[i].CardIDs, id)
	}
	return card, nil
}

// FindCard resolves a card by ID, ID prefix, title, or unique title prefix.
// Title matching ignores case.
func (l *Library) FindCard(query string) (model.Card, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.Card{}, ErrCardNotFound
	}
	if idx := l.cardIndex(query); idx >= 0 {
		return l.cards[idx], nil
	}
	lower := strings.ToLower(query)
	var byTitle, byPrefix []model.Card
	for _, c := range l.cards {
		title := strings.ToLower(c.Title)
		switch {
		case title == lower:
			byTitle = append(byTitle, c)
		case strings.HasPrefix(title, lower),
			len(query) >= minIDPrefix && strings.HasPrefix(c.ID, lower):
			byPrefix = append(byPrefix, c)
		}
	}
	for _, matches := range [][]model.Card{byTitle, byPrefix} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return model.Card{}, fmt.Errorf("%w: %q", ErrAmbiguous, query)
		}
	}
	return model.Card{}, fmt.Errorf("%w: %q", ErrCardNotFound, query)
}

// CreateDeck adds an empty deck. Names are unique ignoring case.
func (l *Library) CreateDeck(name string, now time.Time) (model.Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Deck{}, fmt.Errorf("deck name is empty")
	}
	if l.deckIndex(name) >= 0 {
		return model.Deck{}, fmt.Errorf("%w: %s", ErrDeckExists, name)
	}
	deck := model.Deck{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
	}
	l.decks = append(l.decks, deck)
	return deck, nil
}

// FindDeck resolves a deck by ID or case-insensitive name.
func (l *Library) FindDeck(name string) (model.Deck, error) {
	idx := l.deckIndex(strings.TrimSpace(name))
	if idx < 0 {
		return model.Deck{}, fmt.Errorf("%w: %s", ErrDeckNotFound, name)
	}
	d := l.decks[idx]
	d.CardIDs = append([]string(nil), d.CardIDs...)
	return d, nil
}

// RemoveDeck deletes a deck. Its cards stay in the library.
func (l *Library) RemoveDeck(name string) (model.Deck, error) {
	idx := l.deckIndex(strings.TrimSpace(name))
	if idx < 0 {
		return model.Deck{}, fmt.Errorf("%w: %s", ErrDeckNotFound, name)
	}
	deck := l.decks[idx]
	l.decks = append(l.decks[:idx], l.decks[idx+1:]...)
	return deck, nil
}

// AddToDeck appends the card matching cardQuery to the deck.
func (l *Library) AddToDeck(deckName, cardQuery string) (model.Card, error) {
	idx := l.deckIndex(strings.TrimSpace(deckName))
	if idx < 0 {
		return model.Card{}, fmt.Errorf("%w: %s", ErrDeckNotFound, deckName)
	}
	card, err := l.FindCard(cardQuery)
	if err != nil {
		return model.Card{}, err
	}
	for _, id := range l.decks[idx].CardIDs {
		if id == card.ID {
			return model.Card{}, fmt.Errorf("%w: %s", ErrCardInDeck, card.Title)
		}
	}
	l.decks[idx].CardIDs = append(l.decks[idx].CardIDs, card.ID)
	return card, nil
}

// RemoveFromDeck drops the card matching cardQuery from the deck.
func (l *Library) RemoveFromDeck(deckName, cardQuery string) (model.Card, error) {
	idx := l.deckIndex(strings.TrimSpace(deckName))
	if idx < 0 {
		return model.Card{}, fmt.Errorf("%w: %s", ErrDeckNotFound, deckName)
	}
	card, err := l.FindCard(cardQuery)
	if err != nil {
		return model.Card{}, err
	}
	before := len(l.decks[idx].CardIDs)
	l.decks[idx].CardIDs = removeString(l.decks[idx].CardIDs, card.ID)
	if len(l.decks[idx].CardIDs) == before {
		return model.Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, card.Title)
	}
	return card, nil
}

// DeckCards returns the deck's cards in deck order, skipping dangling IDs.
func (l *Library) DeckCards(deck model.Deck) []model.Card {
	out := make([]model.Card, 0, len(deck.CardIDs))
	for _, id := range deck.CardIDs {
		if idx := l.cardIndex(id); idx >= 0 {
			out = append(out, l.cards[idx])
		}
	}
	return out
}

func (l *Library) cardIndex(id string) int {
	for i, c := range l.cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (l *Library) deckIndex(name string) int {
	for i, d := range l.decks {
		if d.ID == name || strings.EqualFold(d.Name, name) {
			return i
		}
	}
	return -1
}

// checkText rejects text that cannot be typed back exactly. Invalid UTF-8
// decodes to U+FFFD, which never compares equal to the stored bytes.
func checkText(text string) error {
	if !utf8.ValidString(text) {
		return ErrInvalidText
	}
	if engine.NormalizeText(text) == "" {
		return ErrEmptyText
	}
	return nil
}

func autoTitle(text string) string {
	runes := []rune(engine.NormalizeText(text))
	if len(runes) <= autoTitleRune {
		return string(runes)
	}
	cut := string(runes[:autoTitleRune])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
