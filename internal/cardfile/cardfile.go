// Package cardfile loads passages to memorize from text files.
//
// Passages are separated by one or more blank lines. A passage whose first
// line starts with "# " uses the rest of that line as its title.
package cardfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one passage read from a file.
type Entry struct {
	Title string
	Text  string
}

// Load reads passages from the provided file path.
func Load(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only card file.
			_ = cerr
		}
	}()
	entries, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Parse reads passages from r.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	var title string
	var lines []string
	flush := func() {
		if len(lines) > 0 {
			entries = append(entries, Entry{Title: title, Text: strings.Join(lines, "\n")})
		}
		title = ""
		lines = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if len(lines) == 0 && title == "" && strings.HasPrefix(line, "# ") {
			title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	if len(entries) == 0 {
		return nil, fmt.Errorf("card file is empty")
	}
	return entries, nil
}
