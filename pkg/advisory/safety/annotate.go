package safety

import (
	"fmt"

	"kisan-advisory-be/pkg/store"
)

// Annotate returns a copy of evidence where every passage carries the banned
// chemicals it mentions for crop. Existing warnings are replaced, not merged,
// so annotating twice yields the same result as annotating once.
func (t *Table) Annotate(evidence []store.RAGResult, crop string) []store.RAGResult {
	out := make([]store.RAGResult, len(evidence))
	for i, ev := range evidence {
		ev.SafetyWarnings = t.Scan(ev.PassageText, crop)
		out[i] = ev
	}
	return out
}

// WarningLines renders the generation-stage warnings for a set of chemicals.
func (t *Table) WarningLines(chemicals []string, crop string) []string {
	lines := make([]string, 0, len(chemicals))
	for _, c := range chemicals {
		reason := "Not approved"
		if r, ok := t.Rule(c); ok {
			reason = r.Reason()
		}
		lines = append(lines, fmt.Sprintf(
			"⚠️ BANNED: %s is banned for %s per CIB&RC India. Reason: %s. Do NOT recommend this chemical; if it is the only grounded option, say it is restricted and must be avoided.",
			c, crop, reason,
		))
	}
	return lines
}
