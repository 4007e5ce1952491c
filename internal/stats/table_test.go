package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"#", "Time", "Assists"}
	rows := [][]string{
		{"1", "0:42", "-"},
		{"10", "12:05", "easy,peek"},
	}
	rightAlign := map[int]bool{0: true, 1: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != " #  Time Assists" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != " 1  0:42 -" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "10 12:05 easy,peek" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Title", "N"}, [][]string{{"日本", "1"}, {"ab", "2"}}, nil)
	if lines[1] != "日本  1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "ab    2" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}

func TestTruncateWidth(t *testing.T) {
	if got := TruncateWidth("hello world", 6); got != "hello…" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := TruncateWidth("short", 10); got != "short" {
		t.Fatalf("unexpected truncation: %q", got)
	}
}
