package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var compoundSep = regexp.MustCompile(`(?i)\s+(?:and|also|और|तथा|एवं|साथ ही)\s+|[;?？]+\s*`)

// looksCompound reports whether an issue probably holds more than one question.
func looksCompound(issue string) bool {
	return len(splitCompound(issue)) > 1
}

// splitCompound is the local decomposition fallback: split on conjunctions
// and question marks, keep the order, drop duplicates.
func splitCompound(issue string) []string {
	parts := compoundSep.Split(issue, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(p, ",।. "))
		if utf8.RuneCountInString(p) < 3 {
			continue
		}
		out = append(out, p)
	}
	return out
}

func localDecompose(crop string, issues []string, max int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, is := range issues {
		for _, q := range splitCompound(is) {
			if !mentions(q, crop) {
				q = fmt.Sprintf("%s (%s)", q, crop)
			}
			key := strings.ToLower(q)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, q)
		}
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

func mentions(text, crop string) bool {
	return crop == "" || strings.Contains(strings.ToLower(text), strings.ToLower(crop))
}

// decodeJSON reads a JSON object from a model reply, tolerating code fences
// and chatter around the object.
func decodeJSON(raw string, out interface{}) error {
	b := bytes.TrimSpace([]byte(raw))
	b = bytes.TrimPrefix(b, []byte("```json"))
	b = bytes.TrimPrefix(b, []byte("```"))
	b = bytes.TrimSuffix(b, []byte("```"))
	b = bytes.TrimSpace(b)

	start := bytes.IndexByte(b, '{')
	end := bytes.LastIndexByte(b, '}')
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in model reply")
	}
	return json.Unmarshal(b[start:end+1], out)
}

var (
	markdownBold    = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	markdownHeading = regexp.MustCompile(`(?m)^#{1,6}[ \t]*(.+)$`)
	markdownBullet  = regexp.MustCompile(`(?m)^[ \t]*[-*][ \t]+`)
	blankRuns       = regexp.MustCompile(`\n{3,}`)
)

// Fit applies the channel's rendering limits: WhatsApp emphasis, bullets,
// no markdown headings, and a hard length cap cut at a paragraph or
// sentence boundary.
func Fit(text string, maxLen int) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = markdownBold.ReplaceAllString(text, "*$1*")
	text = markdownHeading.ReplaceAllStringFunc(text, func(h string) string {
		h = strings.TrimSpace(strings.ReplaceAll(strings.TrimLeft(h, "# "), "*", ""))
		return "*" + h + "*"
	})
	text = markdownBullet.ReplaceAllString(text, "• ")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:maxLen-1])
	if i := strings.LastIndex(cut, "\n\n"); i > len(cut)/2 {
		cut = cut[:i]
	} else if i := strings.LastIndexAny(cut, "।.!?\n"); i > len(cut)/2 {
		_, size := utf8.DecodeRuneInString(cut[i:])
		cut = cut[:i+size]
	}
	return strings.TrimSpace(cut) + "…"
}
