// Package stats contains personal-best ranking and reporting.
package stats

import "fmt"

// SessionMetrics computes words per minute and characters per minute for a
// passage of the given rune length typed in seconds.
func SessionMetrics(chars, seconds int) (wpm, cpm float64) {
	if seconds <= 0 || chars <= 0 {
		return 0, 0
	}
	minutes := float64(seconds) / 60.0
	cpm = float64(chars) / minutes
	wpm = cpm / 5.0
	return wpm, cpm
}

// FormatSeconds renders a duration in seconds as m:ss, or h:mm:ss past an hour.
func FormatSeconds(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
