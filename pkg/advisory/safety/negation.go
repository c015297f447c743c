package safety

import "regexp"

// A mention is a warning only when the negation governs that chemical in the
// same clause: "do not use X", "X is banned", "X का प्रयोग न करें". A marker
// elsewhere in the sentence ("avoid spraying before rain") covers nothing.
var (
	// preNegation must end right where the chemical (or list of chemicals) starts.
	preNegation = compileFolded(
		`(?i)\b(?:do\s+not|don't|never|must\s+not|should\s+not)\s+(?:use|spray|apply|mix)(?:\s+(?:the|any))?\s*:?\s*$`,
		`(?i)\bavoid(?:\s+(?:using|applying|spraying))?\s*$`,
		`(?i)\b(?:banned|prohibited|restricted)(?:\s+(?:chemicals?|pesticides?|insecticides?|fungicides?|products?))?(?:\s+(?:like|such\s+as|including))?\s*:?\s*$`,
		`(?:प्रतिबंधित|वर्जित)(?:\s+\S+){0,2}\s*:?\s*$`,
	)

	// postNegation must start right after the chemical. The first group, when
	// present, is the gap of Hindi words between name and marker.
	postNegation = compileFolded(
		`(?i)^\s*[(\-:]?\s*(?:(?:is|are|was|were|has\s+been|have\s+been)\s+)?(?:completely\s+|strictly\s+)?(?:banned|prohibited|restricted|not\s+recommended|not\s+allowed|not\s+permitted|not\s+approved)\b`,
		`(?i)^\s*(?:must|should|is|are)\s+not\s+(?:to\s+)?be\s+used\b`,
		`^\s*((?:\S+\s+){0,3})(?:प्रतिबंधित|वर्जित|मना\s+है)`,
		`^\s*((?:\S+\s+){0,3})(?:न|नहीं)\s+(?:करें|डालें|करना|डालना|छिड़कें)`,
		`^\s*((?:\S+\s+){0,3})बचें`,
	)

	// affirmative in the gap means the sentence is recommending the chemical.
	affirmative = regexp.MustCompile(foldText(`[0-9०-९]|करें|डालें|छिड़कें|मिलाएं|मिलाकर|लगाएं`))

	// listJoin is the only text allowed between chemicals sharing one marker.
	listJoin = regexp.MustCompile(`(?i)^[\s,/&]*(?:(?:and|or|और|या|तथा|एवं)[\s,/&]*)?$`)

	clauseBreak = regexp.MustCompile(`(?i)[,;:]|\bbut\b|\bhowever\b|लेकिन|परंतु|किंतु`)

	// "प्रतिबंधित नहीं है" and the like turn the marker around.
	markerDenied = regexp.MustCompile(`(?i)^\s*(?:नहीं|not\b)`)
)

func compileFolded(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(foldText(p))
	}
	return out
}

// mentionGroup is a run of chemicals joined only by list connectors,
// e.g. "Endosulfan, Phorate and DDT".
type mentionGroup struct {
	start, end int
	entries    []*entry
}

func groupMentions(text string, ms []mention) []mentionGroup {
	var groups []mentionGroup
	for _, m := range ms {
		if n := len(groups); n > 0 {
			g := &groups[n-1]
			if m.start < g.end || listJoin.MatchString(text[g.end:m.start]) {
				if m.end > g.end {
					g.end = m.end
				}
				g.entries = append(g.entries, m.entry)
				continue
			}
		}
		groups = append(groups, mentionGroup{start: m.start, end: m.end, entries: []*entry{m.entry}})
	}
	return groups
}

// negated reports whether a do-not-use marker governs the chemicals between
// before and after.
func negated(before, after string) bool {
	if locs := clauseBreak.FindAllStringIndex(before, -1); len(locs) > 0 {
		before = before[locs[len(locs)-1][1]:]
	}
	if loc := clauseBreak.FindStringIndex(after); loc != nil {
		after = after[:loc[0]]
	}
	for _, re := range preNegation {
		if re.MatchString(before) {
			return true
		}
	}
	for _, re := range postNegation {
		m := re.FindStringSubmatch(after)
		if m == nil {
			continue
		}
		if len(m) > 1 && affirmative.MatchString(m[1]) {
			continue
		}
		if markerDenied.MatchString(after[len(m[0]):]) {
			continue
		}
		return true
	}
	return false
}

// classify returns, in rule order, the chemicals the sentence names outside a
// do-not-use warning, and whether it names any banned chemical at all.
func (t *Table) classify(sentence, crop string) (recommended []string, mentioned bool) {
	text := foldText(sentence)
	ms := t.mentions(text, crop)
	if len(ms) == 0 {
		return nil, false
	}
	bad := make(map[*entry]bool)
	for _, g := range groupMentions(text, ms) {
		if negated(text[:g.start], text[g.end:]) {
			continue
		}
		for _, e := range g.entries {
			bad[e] = true
		}
	}
	for _, e := range t.entriesFor(crop) {
		if bad[e] {
			recommended = append(recommended, e.rule.ChemicalName)
		}
	}
	return recommended, true
}

// IsWarning reports whether every banned chemical the sentence names for crop
// is named inside a do-not-use warning. A sentence naming none is not a warning.
func (t *Table) IsWarning(sentence, crop string) bool {
	recommended, mentioned := t.classify(sentence, crop)
	return mentioned && len(recommended) == 0
}
