package history

import (
	"context"
	"testing"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/lannv1101/css-checker/coverage"
)

func sampleResult() coverage.Result {
	return coverage.Result{
		TotalBytes:   80,
		UsedBytes:    50,
		UsagePercent: 62.5,
		Files: []coverage.FileResult{
			{URL: "https://example.com/app.css", TotalBytes: 50, UsedBytes: 50},
			{
				URL: "https://example.com/unused.css", TotalBytes: 30,
				UnusedRules: []coverage.RuleUsage{{Selector: ".dead", Bytes: 30}},
			},
		},
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	if err := s.Record(ctx, "https://example.com", sampleResult()); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, "https://other.example", coverage.Result{}); err != nil {
		t.Fatal(err)
	}

	recs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}

	// Newest first.
	if recs[0].URL != "https://other.example" {
		t.Errorf("recs[0].URL = %q", recs[0].URL)
	}

	got := recs[1]
	if got.TotalBytes != 80 || got.UsedBytes != 50 || got.UsagePercent != 62.5 {
		t.Errorf("totals = %#v", got)
	}
	if len(got.Files) != 2 || len(got.Files[1].UnusedRules) != 1 {
		t.Errorf("files did not survive the round-trip: %#v", got.Files)
	}
	if got.Files[1].UnusedRules[0].Selector != ".dead" {
		t.Errorf("unused rule = %#v", got.Files[1].UnusedRules[0])
	}
	if got.CreatedAt.IsZero() || time.Since(got.CreatedAt) > time.Minute {
		t.Errorf("CreatedAt = %v", got.CreatedAt)
	}
}

func TestRecentLimit(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Record(ctx, "https://example.com", coverage.Result{}); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("limit ignored: got %d records", len(recs))
	}
}

func TestRecentEmpty(t *testing.T) {
	s := OpenMemory(t)

	recs, err := s.Recent(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no records, got %#v", recs)
	}
}

func TestLatestFor(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	if _, ok, err := s.LatestFor(ctx, "https://example.com"); err != nil || ok {
		t.Fatalf("LatestFor on empty store = ok=%v err=%v", ok, err)
	}

	if err := s.Record(ctx, "https://example.com", coverage.Result{TotalBytes: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, "https://example.com", sampleResult()); err != nil {
		t.Fatal(err)
	}

	rec, ok, err := s.LatestFor(ctx, "https://example.com")
	if err != nil || !ok {
		t.Fatalf("LatestFor = ok=%v err=%v", ok, err)
	}
	if rec.TotalBytes != 80 {
		t.Fatalf("expected the newest record, got %#v", rec)
	}
}
