package coverage

import "strings"

// ruleSpan locates a rule inside its stylesheet by first occurrence of its
// exact text. Returns ok=false when the text is absent (possible because
// rules are trimmed before matching), in which case the rule classifies as
// unused — the classifier fails closed.
//
// First-occurrence matching is a deliberate approximation: two rules with
// byte-identical text resolve to the same span, so usage of one is
// attributed to both. Disambiguating by occurrence order would require the
// segmenter to carry positions through; the current contract keeps it
// returning plain substrings.
func ruleSpan(rule, text string) (start, end int, ok bool) {
	idx := strings.Index(text, rule)
	if idx < 0 {
		return 0, 0, false
	}
	return idx, idx + len(rule), true
}

// ruleUsed reports whether the rule's span in text is fully contained in at
// least one coverage range. Partial overlap does not count as used.
func ruleUsed(rule, text string, ranges []Range) bool {
	start, end, ok := ruleSpan(rule, text)
	if !ok {
		return false
	}
	for _, r := range ranges {
		if start >= r.Start && end <= r.End {
			return true
		}
	}
	return false
}
