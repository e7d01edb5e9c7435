package coverage

// AnalyzeSheet produces the per-stylesheet result. Byte totals come straight
// from range arithmetic: TotalBytes is the text length, UsedBytes the sum of
// range widths as reported by the instrumentation (overlapping ranges would
// double-count; the source emits them disjoint and this is not enforced
// here). Independently, every top-level rule is classified and the unused
// ones collected in segmentation order.
func AnalyzeSheet(s Stylesheet) FileResult {
	fr := FileResult{
		URL:        s.URL,
		TotalBytes: len(s.Text),
	}
	for _, r := range s.Ranges {
		fr.UsedBytes += r.End - r.Start
	}
	for _, rule := range SplitRules(s.Text) {
		if ruleUsed(rule, s.Text, s.Ranges) {
			continue
		}
		fr.UnusedRules = append(fr.UnusedRules, RuleUsage{
			Selector: Selector(rule),
			Used:     false,
			Bytes:    len(rule),
		})
	}
	return fr
}

// Aggregate sums per-file results into the page-level result, preserving
// file order. UsagePercent is 0 when there are no bytes at all, never NaN.
func Aggregate(files []FileResult) Result {
	res := Result{Files: files}
	for _, f := range files {
		res.TotalBytes += f.TotalBytes
		res.UsedBytes += f.UsedBytes
	}
	if res.TotalBytes > 0 {
		res.UsagePercent = float64(res.UsedBytes) / float64(res.TotalBytes) * 100
	}
	return res
}

// Analyze runs the full pipeline over the stylesheets of one page.
func Analyze(sheets []Stylesheet) Result {
	files := make([]FileResult, 0, len(sheets))
	for _, s := range sheets {
		files = append(files, AnalyzeSheet(s))
	}
	return Aggregate(files)
}
