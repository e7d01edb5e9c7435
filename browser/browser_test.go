package browser

import "testing"

func TestParseStealthLevel(t *testing.T) {
	tests := []struct {
		in   string
		want StealthLevel
	}{
		{"http", LevelHTTP},
		{"headless", LevelHeadless},
		{"headful", LevelHeadful},
		{"", LevelHeadless},
		{"bogus", LevelHeadless},
	}
	for _, tt := range tests {
		if got := ParseStealthLevel(tt.in); got != tt.want {
			t.Errorf("ParseStealthLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestShouldBlock(t *testing.T) {
	set := map[string]bool{"images": true, "fonts": true}

	if !shouldBlock(set, "Image") {
		t.Error("Image should map to images")
	}
	if !shouldBlock(set, "Font") {
		t.Error("Font should map to fonts")
	}
	if shouldBlock(set, "Stylesheet") {
		t.Error("Stylesheet must never be blocked")
	}
	if shouldBlock(set, "Document") {
		t.Error("Document is not in the block set")
	}
}

func TestConfigDefaultsStripStylesheets(t *testing.T) {
	cfg := Config{BlockedResources: []string{"images", "stylesheets", "fonts"}}
	cfg.defaults()

	for _, r := range cfg.BlockedResources {
		if r == "stylesheets" {
			t.Fatal("stylesheets must be stripped from the block list")
		}
	}
	if len(cfg.BlockedResources) != 2 {
		t.Fatalf("BlockedResources = %v", cfg.BlockedResources)
	}
	if cfg.MemoryLimit != 1<<30 {
		t.Fatalf("MemoryLimit default = %d", cfg.MemoryLimit)
	}
}
