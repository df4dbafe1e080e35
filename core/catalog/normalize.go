package catalog

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var separatorRun = regexp.MustCompile(`[/_\-]+`)

// NormalizeQuery turns raw user input into the canonical search string:
// emoji and their modifiers removed, NFC form, runs of '/', '_' and '-'
// replaced by a single space, whitespace collapsed and trimmed.
// NormalizeQuery(NormalizeQuery(s)) == NormalizeQuery(s).
func NormalizeQuery(raw string) string {
	// Strip before composing: a removed selector may sit between a letter and
	// its combining mark.
	s := norm.NFC.String(stripEmoji(raw))
	s = separatorRun.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// BuildPattern returns the case-insensitive pattern for raw: each token is
// regex escaped and the tokens are joined with ".*", so every token must
// appear in order. An empty result means "no text filter".
func BuildPattern(raw string) string {
	normalized := NormalizeQuery(raw)
	tokens := strings.Split(normalized, " ")

	escaped := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok != "" {
			escaped = append(escaped, regexp.QuoteMeta(tok))
		}
	}
	if len(escaped) == 0 {
		return regexp.QuoteMeta(normalized)
	}
	return strings.Join(escaped, ".*")
}

func stripEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isEmojiRune(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isEmojiRune reports emoji pictographs and the code points that only make
// sense attached to one (ZWJ, variation selectors, keycap, skin tones,
// regional indicators, tags). ASCII digits, '#' and '*' are never stripped
// even though they can start a keycap sequence.
func isEmojiRune(r rune) bool {
	if r < 0x80 {
		return false
	}
	switch r {
	case 0x200D, // zero width joiner
		0x20E3,         // combining enclosing keycap
		0xFE0E, 0xFE0F, // variation selectors 15/16
		0x00A9, 0x00AE, 0x203C, 0x2049, 0x2122, 0x2139, 0x24C2,
		0x3030, 0x303D, 0x3297, 0x3299:
		return true
	}
	switch {
	case r >= 0x2194 && r <= 0x21AA: // arrows
		return true
	case r >= 0x2300 && r <= 0x23FF: // misc technical: ⌚ ⏰ ⏩
		return true
	case r >= 0x25AA && r <= 0x25FE: // geometric shapes used as emoji
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2934 && r <= 0x2935:
		return true
	case r >= 0x2B05 && r <= 0x2B55: // ⬅ ⬛ ⭐ ⭕
		return true
	case r >= 0x1F000 && r <= 0x1FAFF: // tiles, cards, regional indicators, pictographs, skin tones
		return true
	case r >= 0xE0020 && r <= 0xE007F: // tag characters
		return true
	}
	return false
}
