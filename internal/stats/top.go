// Package stats contains personal-best ranking and reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/tuimemo/internal/model"
)

// MaxBestTimes is the number of records kept per reference text.
const MaxBestTimes = 5

// RankBestTimes adds rec to list, sorts ascending by time and keeps the best
// limit entries. Equal times keep the earlier record first. The input slice
// is not modified.
func RankBestTimes(list []model.TimingRecord, rec model.TimingRecord, limit int) []model.TimingRecord {
	out := make([]model.TimingRecord, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, rec)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RankOf returns the 1-based position of rec in a ranked list, or 0 when it
// did not make the list.
func RankOf(list []model.TimingRecord, rec model.TimingRecord) int {
	for i, r := range list {
		if r == rec {
			return i + 1
		}
	}
	return 0
}
