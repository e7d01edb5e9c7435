package coverage

import (
	"encoding/json"
	"testing"
)

func TestAnalyzeSheetPartialCoverage(t *testing.T) {
	// Range covers ".a{color:red}" exactly.
	s := Stylesheet{
		URL:    "https://example.com/app.css",
		Text:   ".a{color:red}.b{color:blue}",
		Ranges: []Range{{Start: 0, End: 13}},
	}

	fr := AnalyzeSheet(s)

	if fr.TotalBytes != 27 {
		t.Fatalf("TotalBytes = %d, want 27", fr.TotalBytes)
	}
	if fr.UsedBytes != 13 {
		t.Fatalf("UsedBytes = %d, want 13", fr.UsedBytes)
	}
	if len(fr.UnusedRules) != 1 {
		t.Fatalf("UnusedRules = %#v, want exactly the .b rule", fr.UnusedRules)
	}
	ru := fr.UnusedRules[0]
	if ru.Selector != ".b" || ru.Used || ru.Bytes != len(".b{color:blue}") {
		t.Fatalf("unexpected classification: %#v", ru)
	}
}

func TestAnalyzeSheetEmpty(t *testing.T) {
	fr := AnalyzeSheet(Stylesheet{URL: Inline})
	if fr.TotalBytes != 0 || fr.UsedBytes != 0 || len(fr.UnusedRules) != 0 {
		t.Fatalf("empty stylesheet should yield zero result, got %#v", fr)
	}
}

func TestAnalyzeSheetNoCoverage(t *testing.T) {
	fr := AnalyzeSheet(Stylesheet{
		URL:  "https://example.com/unused.css",
		Text: ".only{margin:0}",
	})
	if fr.UsedBytes != 0 {
		t.Fatalf("UsedBytes = %d, want 0", fr.UsedBytes)
	}
	if len(fr.UnusedRules) != 1 || fr.UnusedRules[0].Selector != ".only" {
		t.Fatalf("rule should land in UnusedRules, got %#v", fr.UnusedRules)
	}
}

func TestAnalyzeSheetInvariants(t *testing.T) {
	sheets := []Stylesheet{
		{URL: "a.css", Text: ".a{x:1}", Ranges: []Range{{0, 7}}},
		{URL: "b.css", Text: ".b{y:2}.c{z:3}", Ranges: []Range{{0, 7}}},
		{URL: Inline, Text: ""},
	}
	for _, s := range sheets {
		fr := AnalyzeSheet(s)
		if fr.TotalBytes != len(s.Text) {
			t.Errorf("%s: TotalBytes = %d, want len(text) = %d", s.URL, fr.TotalBytes, len(s.Text))
		}
		if fr.UsedBytes < 0 || fr.UsedBytes > fr.TotalBytes {
			t.Errorf("%s: UsedBytes %d out of [0, %d]", s.URL, fr.UsedBytes, fr.TotalBytes)
		}
		for _, ru := range fr.UnusedRules {
			if ru.Used {
				t.Errorf("%s: used rule %q in UnusedRules", s.URL, ru.Selector)
			}
		}
	}
}

func TestAggregate(t *testing.T) {
	files := []FileResult{
		{URL: "a.css", TotalBytes: 50, UsedBytes: 50},
		{URL: "b.css", TotalBytes: 30, UsedBytes: 0},
	}

	res := Aggregate(files)

	if res.TotalBytes != 80 || res.UsedBytes != 50 {
		t.Fatalf("totals = %d/%d, want 80/50", res.TotalBytes, res.UsedBytes)
	}
	if res.UsagePercent != 62.5 {
		t.Fatalf("UsagePercent = %v, want 62.5", res.UsagePercent)
	}
	if res.Files[0].URL != "a.css" || res.Files[1].URL != "b.css" {
		t.Fatalf("file order not preserved: %#v", res.Files)
	}
}

func TestAggregateZeroTotal(t *testing.T) {
	res := Aggregate([]FileResult{{URL: Inline}})
	if res.UsagePercent != 0 {
		t.Fatalf("UsagePercent = %v, want 0 for zero total bytes", res.UsagePercent)
	}

	res = Aggregate(nil)
	if res.UsagePercent != 0 || res.TotalBytes != 0 {
		t.Fatalf("empty aggregate should be all-zero, got %#v", res)
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	res := Analyze([]Stylesheet{
		{
			URL:    "https://example.com/app.css",
			Text:   ".a{color:red}.b{color:blue}",
			Ranges: []Range{{Start: 0, End: 13}},
		},
		{URL: Inline, Text: "", Ranges: nil},
	})

	if res.TotalBytes != 27 || res.UsedBytes != 13 {
		t.Fatalf("totals = %d/%d, want 27/13", res.TotalBytes, res.UsedBytes)
	}
	if len(res.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(res.Files))
	}
	if got := res.Files[1]; got.TotalBytes != 0 || got.UsedBytes != 0 || len(got.UnusedRules) != 0 {
		t.Fatalf("empty sheet result = %#v", got)
	}
}

// Result must round-trip through JSON unchanged: the web and history layers
// both marshal it.
func TestResultSerializable(t *testing.T) {
	res := Analyze([]Stylesheet{
		{URL: "a.css", Text: ".a{x:1}.b{y:2}", Ranges: []Range{{0, 7}}},
	})

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}

	var back Result
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.TotalBytes != res.TotalBytes || back.UsagePercent != res.UsagePercent {
		t.Fatalf("round-trip mismatch: %#v vs %#v", back, res)
	}
	if len(back.Files) != 1 || len(back.Files[0].UnusedRules) != 1 {
		t.Fatalf("files lost in round-trip: %#v", back.Files)
	}
}
