// Package engine implements typing correctness checks for recall practice.
//
// All functions operate on runes and are pure: they take the reference text,
// the text typed so far and the match mode, and never fail. Degenerate input
// (empty strings, input longer than the reference) yields false, 0 or "".
package engine

import (
	"strings"
	"unicode"
)

// CharResult is the correctness of one typed rune.
type CharResult struct {
	Char    rune
	Correct bool
	IsSpace bool
}

// easyPunct lists reference runes that easy mode accepts whatever is typed.
const easyPunct = `.,;:!?"'[](){}-—–`

// trailingPunct lists the final reference runes easy mode lets the user omit
// at completion. It is narrower than easyPunct.
const trailingPunct = ".,?!"

// IsEasyPunct reports whether easy mode auto-accepts r.
func IsEasyPunct(r rune) bool {
	return strings.ContainsRune(easyPunct, r)
}

// Classify marks each rune of input as correct or incorrect against reference.
// After the first incorrect rune every following rune is incorrect.
func Classify(input, reference string, easyMode bool) []CharResult {
	in := []rune(input)
	ref := []rune(reference)
	out := make([]CharResult, 0, len(in))
	mistakeSeen := false
	for i, u := range in {
		ok := false
		if !mistakeSeen && i < len(ref) {
			ok = runeMatches(u, ref[i], easyMode)
		}
		if !ok {
			mistakeSeen = true
		}
		out = append(out, CharResult{
			Char:    u,
			Correct: ok,
			IsSpace: u == ' ',
		})
	}
	return out
}

func runeMatches(typed, expected rune, easyMode bool) bool {
	if typed == expected {
		return true
	}
	if !easyMode {
		return false
	}
	return unicode.ToLower(typed) == unicode.ToLower(expected) || IsEasyPunct(expected)
}

// HasMistake reports whether any rune in the trace is incorrect.
func HasMistake(trace []CharResult) bool {
	for _, c := range trace {
		if !c.Correct {
			return true
		}
	}
	return false
}

// IsComplete reports whether input satisfies reference. Easy mode also
// accepts input that omits exactly one trailing ".,?!" of the reference.
func IsComplete(input, reference string, easyMode bool) bool {
	if input == "" || reference == "" {
		return false
	}
	if input == reference {
		return true
	}
	if !easyMode {
		return false
	}
	ref := []rune(reference)
	in := []rune(input)
	if len(in) != len(ref)-1 {
		return false
	}
	if input != string(ref[:len(ref)-1]) {
		return false
	}
	return strings.ContainsRune(trailingPunct, ref[len(ref)-1])
}

// LastCorrectIndex returns the number of leading runes of input that equal
// reference exactly. Match mode never applies here.
func LastCorrectIndex(input, reference string) int {
	in := []rune(input)
	ref := []rune(reference)
	n := 0
	for n < len(in) && n < len(ref) && in[n] == ref[n] {
		n++
	}
	return n
}

// TruncateToCorrect cuts input back to its exactly matching prefix.
func TruncateToCorrect(input, reference string) string {
	return string([]rune(input)[:LastCorrectIndex(input, reference)])
}

// GhostText returns the remainder of reference after input, or "" while input
// holds a mistake. The check is exact: easyMode does not relax it.
func GhostText(reference, input string, easyMode bool) string {
	if reference == "" || input == "" {
		return ""
	}
	idx := LastCorrectIndex(input, reference)
	if idx < len([]rune(input)) {
		return ""
	}
	return string([]rune(reference)[idx:])
}

// GhostWindow trims ghost text to at most n runes. n <= 0 keeps everything.
func GhostWindow(ghost string, n int) string {
	if n <= 0 {
		return ghost
	}
	runes := []rune(ghost)
	if len(runes) <= n {
		return ghost
	}
	return string(runes[:n])
}

// Accuracy scores input against reference in percent. A complete input scores
// 100; otherwise positions are compared exactly regardless of easyMode.
func Accuracy(reference, input string, easyMode bool) float64 {
	if reference == "" || input == "" {
		return 0
	}
	if IsComplete(input, reference, easyMode) {
		return 100
	}
	in := []rune(input)
	ref := []rune(reference)
	matched := 0
	for i := 0; i < len(in) && i < len(ref); i++ {
		if in[i] == ref[i] {
			matched++
		}
	}
	return float64(matched) / float64(len(ref)) * 100
}

// Autocorrect rewrites the easy-mode-correct prefix of input with the
// reference runes at the same positions. Runes from the first mistake on are
// kept as typed.
func Autocorrect(input, reference string) string {
	trace := Classify(input, reference, true)
	ref := []rune(reference)
	out := []rune(input)
	for i, c := range trace {
		if !c.Correct {
			break
		}
		out[i] = ref[i]
	}
	return string(out)
}
