package seed

import (
	"fmt"
	"time"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/sanitize"
)

// Mapper converts a seed Config to canonical board items.
type Mapper struct {
	now func() time.Time
}

// NewMapper creates a new mapper instance.
func NewMapper() *Mapper {
	return &Mapper{now: time.Now}
}

// MapItems converts a seed config to an ordered item slice: root
// links first, then each group followed by its links. Every value
// goes through the sanitizer; entries without a usable URL are
// skipped rather than imported broken.
func (m *Mapper) MapItems(cfg *Config) ([]*domain.Item, error) {
	now := m.now()
	used := make(map[int64]bool)

	nextID := func() int64 {
		id := now.UnixMilli()
		for used[id] {
			id++
		}
		used[id] = true
		return id
	}

	var items []*domain.Item

	for _, entry := range cfg.Links {
		if it := mapLink(entry, nextID, now, nil); it != nil {
			items = append(items, it)
		}
	}

	for _, group := range cfg.Groups {
		g := &domain.Item{
			ID:         nextID(),
			Kind:       domain.KindGroup,
			Name:       sanitize.String(group.Name, domain.DefaultGroupName),
			IsExpanded: true,
			CreatedAt:  now,
		}
		items = append(items, g)

		for _, entry := range group.Links {
			if it := mapLink(entry, nextID, now, &g.ID); it != nil {
				items = append(items, it)
			}
		}
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid entries found in seed config")
	}

	return items, nil
}

func mapLink(entry Entry, nextID func() int64, now time.Time, parentID *int64) *domain.Item {
	url := sanitize.URL(entry.URL)
	if url == "" {
		// Seed authoring mistake; skip instead of importing broken.
		return nil
	}

	title := sanitize.String(entry.Title, sanitize.Hostname(url))

	return &domain.Item{
		ID:        nextID(),
		Kind:      domain.KindLink,
		ParentID:  parentID,
		URL:       url,
		Title:     title,
		CreatedAt: now,
	}
}
