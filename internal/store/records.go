package store

import (
	"context"
	"fmt"

	"github.com/verte-zerg/tuimemo/internal/engine"
	"github.com/verte-zerg/tuimemo/internal/library"
	"github.com/verte-zerg/tuimemo/internal/model"
	"github.com/verte-zerg/tuimemo/internal/stats"
)

const (
	keyCards       = "cards"
	keyDecks       = "decks"
	keyPreferences = "preferences"
	keyBestPrefix  = "best:"
)

// BestTimesKey returns the key under which best times for reference live.
func BestTimesKey(reference string) string {
	return keyBestPrefix + engine.ReferenceKey(reference)
}

// LoadLibrary reads all cards and decks.
func (s *Store) LoadLibrary(ctx context.Context) (*library.Library, error) {
	var cards []model.Card
	if _, err := s.Get(ctx, keyCards, &cards); err != nil {
		return nil, err
	}
	var decks []model.Deck
	if _, err := s.Get(ctx, keyDecks, &decks); err != nil {
		return nil, err
	}
	return library.New(cards, decks), nil
}

// SaveLibrary writes all cards and decks.
func (s *Store) SaveLibrary(ctx context.Context, lib *library.Library) error {
	if err := s.Put(ctx, keyCards, lib.Cards()); err != nil {
		return err
	}
	return s.Put(ctx, keyDecks, lib.Decks())
}

// Preferences returns stored preferences, or defaults when none are saved.
func (s *Store) Preferences(ctx context.Context) (model.Preferences, error) {
	var prefs model.Preferences
	if _, err := s.Get(ctx, keyPreferences, &prefs); err != nil {
		return model.Preferences{}, err
	}
	return prefs, nil
}

// SavePreferences stores preferences.
func (s *Store) SavePreferences(ctx context.Context, prefs model.Preferences) error {
	return s.Put(ctx, keyPreferences, prefs)
}

// BestTimes returns the ranked personal bests for reference.
func (s *Store) BestTimes(ctx context.Context, reference string) ([]model.TimingRecord, error) {
	var list []model.TimingRecord
	if _, err := s.Get(ctx, BestTimesKey(reference), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SavePersonalBestTime appends rec to the list for reference, keeps the
// fastest stats.MaxBestTimes entries and returns the stored list.
func (s *Store) SavePersonalBestTime(ctx context.Context, reference string, rec model.TimingRecord) ([]model.TimingRecord, error) {
	list, err := s.BestTimes(ctx, reference)
	if err != nil {
		return nil, err
	}
	list = stats.RankBestTimes(list, rec, stats.MaxBestTimes)
	if err := s.Put(ctx, BestTimesKey(reference), list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteBestTimes drops the personal bests for reference.
func (s *Store) DeleteBestTimes(ctx context.Context, reference string) error {
	return s.Delete(ctx, BestTimesKey(reference))
}

// PruneBestTimes drops every best-times list that none of references maps to
// and returns how many were removed.
func (s *Store) PruneBestTimes(ctx context.Context, references []string) (int, error) {
	keep := make(map[string]bool, len(references))
	for _, ref := range references {
		keep[BestTimesKey(ref)] = true
	}
	keys, err := s.Keys(ctx, keyBestPrefix)
	if err != nil {
		return 0, fmt.Errorf("list best times: %w", err)
	}
	removed := 0
	for _, key := range keys {
		if keep[key] {
			continue
		}
		if err := s.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
