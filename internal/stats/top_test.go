package stats

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuimemo/internal/model"
)

func TestRankBestTimesSortedAndCapped(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	var list []model.TimingRecord
	for i := 0; i < 40; i++ {
		rec := model.TimingRecord{Time: rnd.Intn(300), Date: int64(i)}
		list = RankBestTimes(list, rec, MaxBestTimes)
		require.LessOrEqual(t, len(list), MaxBestTimes)
		require.True(t, sort.SliceIsSorted(list, func(a, b int) bool { return list[a].Time < list[b].Time }))
	}
	assert.Len(t, list, MaxBestTimes)
}

func TestRankBestTimesKeepsEarlierOnTie(t *testing.T) {
	first := model.TimingRecord{Time: 30, Date: 1}
	second := model.TimingRecord{Time: 30, Date: 2}
	list := RankBestTimes(nil, first, MaxBestTimes)
	list = RankBestTimes(list, second, MaxBestTimes)
	assert.Equal(t, []model.TimingRecord{first, second}, list)
	assert.Equal(t, 2, RankOf(list, second))
}

func TestRankBestTimesDoesNotMutateInput(t *testing.T) {
	list := []model.TimingRecord{{Time: 10}, {Time: 20}}
	out := RankBestTimes(list, model.TimingRecord{Time: 5}, 2)
	assert.Equal(t, []model.TimingRecord{{Time: 10}, {Time: 20}}, list)
	assert.Equal(t, []model.TimingRecord{{Time: 5}, {Time: 10}}, out)
	assert.Equal(t, 0, RankOf(out, model.TimingRecord{Time: 20}))
}

func TestSessionMetrics(t *testing.T) {
	wpm, cpm := SessionMetrics(300, 60)
	assert.InDelta(t, 60.0, wpm, 1e-9)
	assert.InDelta(t, 300.0, cpm, 1e-9)
	wpm, cpm = SessionMetrics(300, 0)
	assert.Zero(t, wpm)
	assert.Zero(t, cpm)
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0:00", FormatSeconds(0))
	assert.Equal(t, "2:10", FormatSeconds(130))
	assert.Equal(t, "1:01:01", FormatSeconds(3661))
	assert.Equal(t, "0:00", FormatSeconds(-4))
}

func TestRenderBestTimes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderBestTimes(&buf, "Psalm 23", nil))
	assert.Equal(t, "Psalm 23\nNo personal bests yet.\n", buf.String())

	buf.Reset()
	records := []model.TimingRecord{
		{Time: 42, Date: 0},
		{Time: 130, Date: 0, EasyMode: true, ReferenceExposed: true, GhostTextUsed: true},
	}
	require.NoError(t, RenderBestTimes(&buf, "", records))
	out := buf.String()
	assert.Contains(t, out, "0:42")
	assert.Contains(t, out, "2:10")
	assert.Contains(t, out, "easy,peek,ghost")
}
