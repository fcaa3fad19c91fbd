package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSources(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing sources file: %v", err)
	}
	return path
}

func TestLoadSources(t *testing.T) {
	path := writeSources(t, `sources:
  - name: BBC News
    url: https://feeds.bbci.co.uk/news/rss.xml
  - name: NPR
    url: https://feeds.npr.org/1001/rss.php
`)

	sources, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Name != "BBC News" || sources[1].URL != "https://feeds.npr.org/1001/rss.php" {
		t.Errorf("unexpected sources: %+v", sources)
	}
}

func TestLoadSources_MissingFile(t *testing.T) {
	if _, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Sources:              []Source{{Name: "A", URL: "https://a.com/rss"}},
			MaxArticlesPerSource: 6,
			FinalArticleCount:    15,
			GeminiAPIKey:         "key",
		}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	c := base()
	c.Sources = nil
	if err := c.Validate(); err == nil {
		t.Errorf("empty source list should be rejected")
	}

	c = base()
	c.GeminiAPIKey = ""
	if err := c.Validate(); err == nil {
		t.Errorf("missing API key should be rejected")
	}
	c.SummariesDisabled = true
	if err := c.Validate(); err != nil {
		t.Errorf("disabled summaries should not need an API key: %v", err)
	}

	c = base()
	c.Sources = []Source{{Name: "", URL: "https://a.com"}}
	if err := c.Validate(); err == nil {
		t.Errorf("source without a name should be rejected")
	}
}
