package seed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/linkdeck/linkdeck/internal/domain"
)

func TestLoaderLoad(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "bookmarks.yaml")

	yamlContent := `---
links:
  - url: https://example.com
    title: Example
groups:
  - name: Reading
    links:
      - url: https://blog.example.com
`

	err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644)
	if err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	loader := NewLoader(yamlPath)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Links) != 1 || len(cfg.Groups) != 1 {
		t.Errorf("Load() = %d links / %d groups, want 1/1", len(cfg.Links), len(cfg.Groups))
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	loader := NewLoader("/nonexistent/path/bookmarks.yaml")
	_, err := loader.Load()
	if err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestLoaderLoadInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "bookmarks.yaml")
	if err := os.WriteFile(yamlPath, []byte("links: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loader := NewLoader(yamlPath)
	if _, err := loader.Load(); err == nil {
		t.Error("Load() with invalid YAML should return error")
	}
}

func newTestMapper() *Mapper {
	m := NewMapper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }
	return m
}

func TestMapItems(t *testing.T) {
	m := newTestMapper()
	cfg := &Config{
		Links: []Entry{
			{URL: "example.com", Title: ""},
		},
		Groups: []Group{
			{
				Name: "Reading",
				Links: []Entry{
					{URL: "https://blog.example.com", Title: "Blog"},
				},
			},
		},
	}

	items, err := m.MapItems(cfg)
	if err != nil {
		t.Fatalf("MapItems() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("MapItems() = %d items, want 3", len(items))
	}

	link := items[0]
	if link.Kind != domain.KindLink || link.URL != "https://example.com" {
		t.Errorf("root link not normalized: %+v", link)
	}
	if link.Title != "example.com" {
		t.Errorf("Title = %q, want hostname fallback", link.Title)
	}

	group := items[1]
	if group.Kind != domain.KindGroup || group.Name != "Reading" || !group.IsExpanded {
		t.Errorf("group not mapped: %+v", group)
	}

	child := items[2]
	if child.ParentID == nil || *child.ParentID != group.ID {
		t.Errorf("group link not parented to its group")
	}

	// Ids must be pairwise distinct even with a frozen clock.
	seen := make(map[int64]bool)
	for _, it := range items {
		if seen[it.ID] {
			t.Errorf("duplicate id %d in mapped items", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestMapItemsSkipsUnusableURLs(t *testing.T) {
	m := newTestMapper()
	cfg := &Config{
		Links: []Entry{
			{URL: "javascript:alert(1)", Title: "evil"},
			{URL: "https://ok.com", Title: "ok"},
		},
	}

	items, err := m.MapItems(cfg)
	if err != nil {
		t.Fatalf("MapItems() error = %v", err)
	}
	if len(items) != 1 || items[0].URL != "https://ok.com" {
		t.Errorf("unsafe entry not skipped: %+v", items)
	}
}

func TestMapItemsEmptyConfig(t *testing.T) {
	m := newTestMapper()
	if _, err := m.MapItems(&Config{}); err == nil {
		t.Error("MapItems() on empty config should return error")
	}
}
