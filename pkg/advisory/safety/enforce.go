package safety

import (
	"regexp"
	"strings"
)

// EnforceResult is the outcome of the post-audit guard.
type EnforceResult struct {
	Text string
	// Removed lists chemicals whose recommendations were cut.
	Removed []string
	// Suppressed is true when no usable advice survived and Text is the
	// generic consult-official-guidance response.
	Suppressed bool
}

var sentenceEnd = regexp.MustCompile(`[।.!?]+(\s+|$)`)

// minAdviceRunes is the smallest remainder still worth delivering as advice.
const minAdviceRunes = 40

// Enforce removes every sentence that names a chemical banned for crop outside
// a do-not-use warning about that chemical. When something is removed the
// consult-officer note is appended.
func (t *Table) Enforce(text, crop string) EnforceResult {
	if len(t.Scan(text, crop)) == 0 {
		return EnforceResult{Text: text}
	}

	removed := make(map[string]bool)
	var order []string
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		var b strings.Builder
		for _, sentence := range splitSentences(line) {
			found, _ := t.classify(sentence, crop)
			if len(found) == 0 {
				b.WriteString(sentence)
				continue
			}
			for _, c := range found {
				if !removed[c] {
					removed[c] = true
					order = append(order, c)
				}
			}
		}
		out := strings.TrimRight(b.String(), " ")
		if strings.TrimSpace(out) == "" && strings.TrimSpace(line) != "" {
			continue
		}
		kept = append(kept, out)
	}

	body := strings.TrimSpace(strings.Join(kept, "\n"))
	if len(order) == 0 {
		return EnforceResult{Text: text}
	}
	if len([]rune(t.stripWarnings(body, crop))) < minAdviceRunes {
		return EnforceResult{Text: GenericConsultResponse(crop), Removed: order, Suppressed: true}
	}
	return EnforceResult{
		Text:    body + "\n\n" + ConsultNote(crop),
		Removed: order,
	}
}

// Leaks returns banned chemicals still named outside a do-not-use warning.
func (t *Table) Leaks(text, crop string) []string {
	seen := make(map[string]bool)
	var leaks []string
	for _, line := range strings.Split(text, "\n") {
		for _, sentence := range splitSentences(line) {
			found, _ := t.classify(sentence, crop)
			for _, c := range found {
				if !seen[c] {
					seen[c] = true
					leaks = append(leaks, c)
				}
			}
		}
	}
	return leaks
}

// splitSentences keeps terminators and trailing spaces on each piece so the
// pieces concatenate back to the original line.
func splitSentences(line string) []string {
	idx := sentenceEnd.FindAllStringIndex(line, -1)
	if len(idx) == 0 {
		return []string{line}
	}
	parts := make([]string, 0, len(idx)+1)
	start := 0
	for _, loc := range idx {
		parts = append(parts, line[start:loc[1]])
		start = loc[1]
	}
	if start < len(line) {
		parts = append(parts, line[start:])
	}
	return parts
}

func (t *Table) stripWarnings(text, crop string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		for _, sentence := range splitSentences(line) {
			if !t.IsWarning(sentence, crop) {
				b.WriteString(sentence)
			}
		}
	}
	return strings.TrimSpace(b.String())
}
