package postprocess

import (
	"strings"
	"unicode"

	"github.com/xhad/compligen/internal/models"
)

var bulletPrefixes = []string{"* ", "- ", "• ", "+ ", "# "}

// sanitize flattens a leaf to one line of plain text: line breaks become
// spaces, leading markdown bullets and heading marks go, whitespace collapses.
func sanitize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for {
		trimmed := strings.TrimLeft(s, "#")
		if trimmed != s && strings.HasPrefix(trimmed, " ") {
			s = strings.TrimSpace(trimmed)
			continue
		}
		stripped := false
		for _, p := range bulletPrefixes {
			if strings.HasPrefix(s, p) {
				s = strings.TrimSpace(s[len(p):])
				stripped = true
				break
			}
		}
		if !stripped {
			return s
		}
	}
}

// removeAll deletes every exact occurrence of each phrase, repeating until
// none is left (removal can join two halves into a new occurrence).
func removeAll(s string, phrases []string) string {
	for {
		prev := s
		for _, p := range phrases {
			if p != "" {
				s = strings.ReplaceAll(s, p, "")
			}
		}
		if s == prev {
			return s
		}
	}
}

// splitSentences splits after '.', '!' or '?' when followed by whitespace.
func splitSentences(s string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(s)
	for i, r := range runes {
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			out = append(out, strings.TrimSpace(string(runes[start:i+1])))
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		out = append(out, rest)
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// dropSentences removes every sentence that mentions one of phrases,
// case-insensitively.
func dropSentences(s string, phrases []string) string {
	if len(phrases) == 0 {
		return s
	}
	hit := func(sentence string) bool {
		for _, p := range phrases {
			if p != "" && containsFold(sentence, p) {
				return true
			}
		}
		return false
	}
	if !hit(s) {
		return s
	}

	var kept []string
	for _, sentence := range splitSentences(s) {
		if !hit(sentence) {
			kept = append(kept, sentence)
		}
	}
	return strings.Join(kept, " ")
}

// isBlank reports whether a cleaned leaf carries no content.
func isBlank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, models.NotSpecified) || strings.Trim(s, ".,;:-–— ") == ""
}

// SplitList splits a free-text list on any of seps, trimming items and
// dropping blanks and the sentinel.
func SplitList(s string, seps string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); !isBlank(f) {
			out = append(out, f)
		}
	}
	return out
}
