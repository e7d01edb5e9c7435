package coverage

import "strings"

// SplitRules splits stylesheet text into its top-level rules in a single
// linear pass. A rule is a maximal substring whose brace nesting starts and
// ends at depth 0, trimmed of surrounding whitespace. The scanner only
// tracks depth; it does not understand comments or strings, so a brace
// inside either still moves the counter. Content after the last balanced
// closing brace is dropped: the buffer only flushes at depth 0.
func SplitRules(text string) []string {
	var rules []string
	var buf strings.Builder
	depth := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		buf.WriteByte(c)
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				if rule := strings.TrimSpace(buf.String()); rule != "" {
					rules = append(rules, rule)
				}
				buf.Reset()
			}
		}
	}

	return rules
}

// Selector returns the selector part of a rule: everything before the first
// opening brace, trimmed. A rule without a brace is returned whole.
func Selector(rule string) string {
	if i := strings.IndexByte(rule, '{'); i >= 0 {
		return strings.TrimSpace(rule[:i])
	}
	return strings.TrimSpace(rule)
}
