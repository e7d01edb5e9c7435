// Package coverage implements the CSS coverage analysis engine: it segments
// raw stylesheet text into rules, classifies each rule as used or unused
// against rendering-engine coverage ranges, and aggregates byte-level usage
// statistics per stylesheet and per page.
//
// The engine is pure and synchronous. It holds no state between calls and is
// safe to invoke concurrently for independent stylesheets. Acquisition of
// the stylesheet text and the coverage ranges belongs to the collect
// package; presentation belongs to the web package.
//
// Usage:
//
//	res := coverage.Analyze(sheets)
//	fmt.Printf("%.1f%% of %d bytes used\n", res.UsagePercent, res.TotalBytes)
package coverage

// Inline is the identifier recorded for stylesheets that have no URL of
// their own, i.e. inline <style> blocks.
const Inline = "inline"

// Range is a half-open byte interval [Start, End) within one stylesheet's
// text, reported by the rendering engine as exercised during page render.
// Ranges for a stylesheet are an unordered set: not necessarily sorted and
// not guaranteed disjoint by this package (the instrumentation source emits
// them disjoint).
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Stylesheet is one CSS origin on a page: an external file or an inline
// style block, with the text exactly as served and the coverage ranges the
// instrumentation reported for it. Immutable once produced.
type Stylesheet struct {
	URL    string  `json:"url"`
	Text   string  `json:"text"`
	Ranges []Range `json:"ranges"`
}

// RuleUsage is the classification of a single top-level rule.
type RuleUsage struct {
	Selector string `json:"selector"`
	Used     bool   `json:"used"`
	Bytes    int    `json:"bytes"`
}

// FileResult is the per-stylesheet outcome. TotalBytes and UsedBytes come
// from range arithmetic; UnusedRules comes from rule-level classification.
// The two are computed independently and are not required to be numerically
// consistent with each other (see ruleSpan for the classifier's caveat).
type FileResult struct {
	URL         string      `json:"url"`
	TotalBytes  int         `json:"total_bytes"`
	UsedBytes   int         `json:"used_bytes"`
	UnusedRules []RuleUsage `json:"unused_rules"`
}

// Result is the terminal artifact for one analyzed page: global totals plus
// per-stylesheet results in the order the stylesheets were observed.
type Result struct {
	TotalBytes   int          `json:"total_bytes"`
	UsedBytes    int          `json:"used_bytes"`
	UsagePercent float64      `json:"usage_percent"`
	Files        []FileResult `json:"files"`
}
