package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuimemo/internal/library"
	"github.com/verte-zerg/tuimemo/internal/model"
	"github.com/verte-zerg/tuimemo/internal/stats"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "tuimemo.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestGetPutDelete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	var prefs model.Preferences
	found, err := st.Get(ctx, "preferences", &prefs)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, st.Put(ctx, "preferences", model.Preferences{EasyMode: true}))
	require.NoError(t, st.Put(ctx, "preferences", model.Preferences{EasyMode: true, LastCardID: "abc"}))
	found, err = st.Get(ctx, "preferences", &prefs)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, model.Preferences{EasyMode: true, LastCardID: "abc"}, prefs)

	require.NoError(t, st.Delete(ctx, "preferences"))
	require.NoError(t, st.Delete(ctx, "preferences"))
	found, err = st.Get(ctx, "preferences", &prefs)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKeysByPrefix(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for _, k := range []string{"best:b", "best:a", "cards", "bestx"} {
		require.NoError(t, st.Put(ctx, k, 1))
	}
	keys, err := st.Keys(ctx, "best:")
	require.NoError(t, err)
	assert.Equal(t, []string{"best:a", "best:b"}, keys)
}

func TestSavePersonalBestTime(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	ref := "The Lord is my shepherd; I shall not want."

	times := []int{50, 20, 90, 10, 70, 30, 80}
	var list []model.TimingRecord
	var err error
	for i, secs := range times {
		list, err = st.SavePersonalBestTime(ctx, ref, model.TimingRecord{Time: secs, Date: int64(i)})
		require.NoError(t, err)
	}
	require.Len(t, list, stats.MaxBestTimes)
	got := make([]int, len(list))
	for i, r := range list {
		got[i] = r.Time
	}
	assert.Equal(t, []int{10, 20, 30, 50, 70}, got)

	// Whitespace and case variants of the reference share one list.
	stored, err := st.BestTimes(ctx, "the lord is my shepherd;\n  I shall not want.")
	require.NoError(t, err)
	assert.Equal(t, list, stored)

	require.NoError(t, st.DeleteBestTimes(ctx, ref))
	stored, err = st.BestTimes(ctx, ref)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestPruneBestTimes(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for _, ref := range []string{"kept passage", "orphan one", "orphan two"} {
		_, err := st.SavePersonalBestTime(ctx, ref, model.TimingRecord{Time: 12})
		require.NoError(t, err)
	}
	require.NoError(t, st.Put(ctx, "cards", []model.Card{}))

	removed, err := st.PruneBestTimes(ctx, []string{"Kept  passage"})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	keys, err := st.Keys(ctx, "best:")
	require.NoError(t, err)
	assert.Equal(t, []string{BestTimesKey("kept passage")}, keys)
	found, err := st.Get(ctx, "cards", &[]model.Card{})
	require.NoError(t, err)
	assert.True(t, found)

	removed, err = st.PruneBestTimes(ctx, []string{"kept passage"})
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestLibraryRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	lib, err := st.LoadLibrary(ctx)
	require.NoError(t, err)
	assert.Empty(t, lib.Cards())

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	card, err := lib.AddCard("Psalm 23", "The Lord is my shepherd", now)
	require.NoError(t, err)
	_, err = lib.CreateDeck("Morning", now)
	require.NoError(t, err)
	_, err = lib.AddToDeck("Morning", card.ID)
	require.NoError(t, err)
	require.NoError(t, st.SaveLibrary(ctx, lib))

	loaded, err := st.LoadLibrary(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Cards(), 1)
	assert.Equal(t, card.ID, loaded.Cards()[0].ID)
	assert.True(t, card.CreatedAt.Equal(loaded.Cards()[0].CreatedAt))
	deck, err := loaded.FindDeck("morning")
	require.NoError(t, err)
	assert.Equal(t, []string{card.ID}, deck.CardIDs)
	assert.IsType(t, &library.Library{}, loaded)
}

func TestPreferencesDefault(t *testing.T) {
	st := openTestStore(t)
	prefs, err := st.Preferences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Preferences{}, prefs)
}
