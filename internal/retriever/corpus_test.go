package retriever

import (
	"strings"
	"testing"
)

func TestDefaultCorpus(t *testing.T) {
	c, err := DefaultCorpus()
	if err != nil {
		t.Fatalf("Failed to load corpus: %v", err)
	}
	if len(c.Seeds) != 14 {
		t.Errorf("Expected 14 seeds, got %d", len(c.Seeds))
	}
	if len(c.Themes) != 7 {
		t.Errorf("Expected 7 themes, got %d", len(c.Themes))
	}

	themes := map[string]bool{}
	for _, th := range c.Themes {
		themes[th.ID] = true
	}
	for _, seed := range c.Seeds {
		if !themes[seed.Theme] {
			t.Errorf("Seed tagged with unknown theme %q", seed.Theme)
		}
	}

	mystery, ok := c.Theme("mystery")
	if !ok || mystery.Name != "ลึกลับ" {
		t.Errorf("Expected mystery theme, got %+v (found=%v)", mystery, ok)
	}
}

func TestParseCorpusRejectsEmpty(t *testing.T) {
	if _, err := ParseCorpus([]byte("themes: []\nseeds: []\n")); err == nil {
		t.Fatal("expected error for corpus without seeds")
	}
	if _, err := ParseCorpus([]byte("seeds: [")); err == nil || !strings.Contains(err.Error(), "corpus YAML") {
		t.Fatalf("expected YAML error, got %v", err)
	}
}
