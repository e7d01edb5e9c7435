package collect

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"

	"github.com/lannv1101/css-checker/coverage"
)

func TestUsedRanges(t *testing.T) {
	usage := []*proto.CSSRuleUsage{
		{StyleSheetID: "s1", StartOffset: 0, EndOffset: 13, Used: true},
		{StyleSheetID: "s1", StartOffset: 13, EndOffset: 27, Used: false},
		{StyleSheetID: "s2", StartOffset: 5.0, EndOffset: 9.0, Used: true},
		nil,
	}

	m := usedRanges(usage)

	if len(m) != 2 {
		t.Fatalf("expected ranges for 2 sheets, got %d", len(m))
	}
	if got := m["s1"]; len(got) != 1 || got[0] != (coverage.Range{Start: 0, End: 13}) {
		t.Errorf("s1 ranges = %#v", got)
	}
	if got := m["s2"]; len(got) != 1 || got[0] != (coverage.Range{Start: 5, End: 9}) {
		t.Errorf("s2 ranges = %#v", got)
	}
}

func TestSheetURL(t *testing.T) {
	tests := []struct {
		name   string
		header *proto.CSSCSSStyleSheetHeader
		want   string
	}{
		{
			name:   "external sheet keeps its source url",
			header: &proto.CSSCSSStyleSheetHeader{SourceURL: "https://example.com/app.css"},
			want:   "https://example.com/app.css",
		},
		{
			name:   "inline style block",
			header: &proto.CSSCSSStyleSheetHeader{SourceURL: "https://example.com/", IsInline: true},
			want:   coverage.Inline,
		},
		{
			name:   "constructed sheet without url",
			header: &proto.CSSCSSStyleSheetHeader{},
			want:   coverage.Inline,
		},
		{
			name:   "nil header",
			header: nil,
			want:   coverage.Inline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sheetURL(tt.header); got != tt.want {
				t.Fatalf("sheetURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.defaults()

	if o.NavRetries != 3 {
		t.Errorf("NavRetries = %d", o.NavRetries)
	}
	if o.NavBackoff.Seconds() != 2 {
		t.Errorf("NavBackoff = %v", o.NavBackoff)
	}
	if o.Logger == nil {
		t.Error("Logger should default to slog.Default()")
	}
}
