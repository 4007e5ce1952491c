// Package stats contains personal-best ranking and reporting.
package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/tuimemo/internal/model"
)

// RenderBestTimes prints a ranked personal-best table.
func RenderBestTimes(w io.Writer, title string, records []model.TimingRecord) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No personal bests yet.")
		return err
	}
	for _, line := range BestTimesLines(records) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// BestTimesLines formats records as aligned table lines, header first.
func BestTimesLines(records []model.TimingRecord) []string {
	headers := []string{"#", "Time", "Date", "Assists"}
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			FormatSeconds(rec.Time),
			rec.DateTime().Local().Format("2006-01-02 15:04"),
			Assists(rec),
		})
	}
	return formatTable(headers, rows, map[int]bool{0: true, 1: true})
}

// Assists lists the help a record was achieved with, or "-" for none.
func Assists(rec model.TimingRecord) string {
	var parts []string
	if rec.EasyMode {
		parts = append(parts, "easy")
	}
	if rec.ReferenceExposed {
		parts = append(parts, "peek")
	}
	if rec.GhostTextUsed {
		parts = append(parts, "ghost")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
