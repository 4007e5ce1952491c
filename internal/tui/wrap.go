// Package tui provides the Bubble Tea recall interface.
package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuimemo/internal/engine"
)

const blockedSpace = '•'

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes renders the typed runes by correctness, then the cursor and
// any ghost text. A mistyped space is drawn as a visible dot.
func buildStyledRunes(trace []engine.CharResult, ghost string, flash bool) []styledRune {
	ghostRunes := []rune(ghost)
	out := make([]styledRune, 0, len(trace)+len(ghostRunes)+1)
	for _, c := range trace {
		displayed := c.Char
		style := correctStyle
		if !c.Correct {
			style = incorrectStyle
			if c.IsSpace {
				displayed = blockedSpace
			}
		}
		out = append(out, styledRune{
			s:       style.Render(string(displayed)),
			width:   runewidth.RuneWidth(displayed),
			isSpace: c.Char == ' ',
		})
	}

	cursor := cursorStyle
	if flash {
		cursor = flashCursorStyle
	}
	if len(ghostRunes) == 0 {
		return append(out, styledRune{s: cursor.Render(" "), width: 1})
	}
	for i, r := range ghostRunes {
		style := ghostStyle
		if i == 0 {
			style = cursor.Inherit(ghostStyle)
		}
		out = append(out, styledRune{
			s:       style.Render(string(r)),
			width:   runewidth.RuneWidth(r),
			isSpace: r == ' ',
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx+1]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
