package library

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/tuimemo/internal/model"
)

// Sequence walks through a deck's cards one at a time.
type Sequence struct {
	cards []model.Card
	pos   int
}

// NewSequence returns a sequence over cards in the given order.
func NewSequence(cards []model.Card) *Sequence {
	return &Sequence{cards: append([]model.Card(nil), cards...)}
}

// NewShuffledSequence returns a sequence over cards in random order, seeded
// with the current time.
func NewShuffledSequence(cards []model.Card) *Sequence {
	return NewShuffledSequenceRand(cards, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewShuffledSequenceRand shuffles with the provided source.
func NewShuffledSequenceRand(cards []model.Card, rnd *rand.Rand) *Sequence {
	s := NewSequence(cards)
	rnd.Shuffle(len(s.cards), func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	})
	return s
}

// Len returns the number of cards.
func (s *Sequence) Len() int { return len(s.cards) }

// Position returns the 0-based index of the current card.
func (s *Sequence) Position() int { return s.pos }

// Current returns the current card. ok is false for an empty sequence.
func (s *Sequence) Current() (card model.Card, ok bool) {
	if s.pos >= len(s.cards) {
		return model.Card{}, false
	}
	return s.cards[s.pos], true
}

// HasNext reports whether another card follows the current one.
func (s *Sequence) HasNext() bool {
	return s.pos+1 < len(s.cards)
}

// Next advances to the following card and reports whether there was one.
func (s *Sequence) Next() bool {
	if !s.HasNext() {
		return false
	}
	s.pos++
	return true
}
