package safety

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// matcher finds one spelling of a chemical. Spaces and hyphens inside the
// name are interchangeable ("methyl-parathion", "Methyl Parathion") and the
// match must not sit inside a longer word. Letters and combining marks both
// count as word characters so Devanagari aliases get the same boundary rule.
type matcher struct {
	re *regexp.Regexp
}

const (
	wordChars = `\p{L}\p{M}`
	nukta     = '\u093c'
)

// foldText puts text and aliases into one comparable form: NFC, with the
// Devanagari nukta dropped so "मैंकोज़ेब" and "मैंकोजेब" are the same word.
func foldText(s string) string {
	s = norm.NFC.String(s)
	if !strings.ContainsRune(s, nukta) {
		return s
	}
	return strings.ReplaceAll(s, string(nukta), "")
}

func newMatcher(name string) (matcher, error) {
	parts := strings.FieldsFunc(foldText(name), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	if len(parts) == 0 {
		return matcher{}, nil
	}
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	body := strings.Join(parts, `[\s\-_]*`)
	re, err := regexp.Compile(`(?i)(?:^|[^` + wordChars + `])(` + body + `)(?:$|[^` + wordChars + `])`)
	if err != nil {
		return matcher{}, err
	}
	return matcher{re: re}, nil
}

// match expects folded text.
func (m matcher) match(text string) bool {
	return m.re != nil && m.re.MatchString(text)
}

func (e *entry) foundIn(text string) bool {
	for _, m := range e.matchers {
		if m.match(text) {
			return true
		}
	}
	return false
}

// mention is one occurrence of a banned chemical in folded text.
type mention struct {
	start, end int
	entry      *entry
}

// mentions lists every occurrence of a chemical banned for crop, ordered by
// position. text must already be folded.
func (t *Table) mentions(text, crop string) []mention {
	var out []mention
	for _, e := range t.entriesFor(crop) {
		for _, m := range e.matchers {
			for _, loc := range m.re.FindAllStringSubmatchIndex(text, -1) {
				out = append(out, mention{start: loc[2], end: loc[3], entry: e})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].start != out[j].start {
			return out[i].start < out[j].start
		}
		return out[i].end > out[j].end
	})
	return out
}

// Scan returns the canonical names of chemicals banned for crop that appear in
// text, in rule order. Aliases from the rule file are matched as well.
func (t *Table) Scan(text, crop string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	text = foldText(text)
	var found []string
	for _, e := range t.entriesFor(crop) {
		if e.foundIn(text) {
			found = append(found, e.rule.ChemicalName)
		}
	}
	return found
}
