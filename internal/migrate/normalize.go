// Package migrate repairs persisted board payloads into canonical
// items, whatever historical schema version or corruption produced
// them.
//
// The persisted format went through three incompatible revisions: a
// flat list of links without any discriminator, a hierarchical list
// with a "type" field, and the current one with "kind". On top of
// that, buggy writers stored ids as strings, parent references as the
// literal strings "null" or "undefined", and labels with serialization
// artifacts. Normalize accepts all of it and is safe to re-run on its
// own output.
package migrate

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/sanitize"
)

// Engine normalizes raw persisted payloads into canonical items.
type Engine struct {
	log logger.Logger
	now func() time.Time
}

// NewEngine creates a normalization engine.
func NewEngine(log logger.Logger) *Engine {
	return &Engine{log: log, now: time.Now}
}

// Normalize repairs a raw persisted payload. It returns the canonical
// items and whether any field actually changed, so callers can skip
// the write-back when the data was already canonical.
//
// A payload that is not a JSON array is treated as an empty collection
// and reported unchanged: recovery must never overwrite storage with
// an empty board just because one read failed to parse.
func (e *Engine) Normalize(raw []byte) ([]*domain.Item, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var elements []map[string]any
	if err := json.Unmarshal(raw, &elements); err != nil {
		e.log.Warn("persisted payload is not an item array, loading empty board",
			logger.Error(err))
		return nil, false
	}

	// Pre-hierarchy payloads carried no discriminator at all. One
	// such element marks the whole collection as legacy flat data:
	// everything in it is a root-level link.
	legacyFlat := false
	for _, el := range elements {
		if _, hasKind := el["kind"]; hasKind {
			continue
		}
		if _, hasType := el["type"]; hasType {
			continue
		}
		legacyFlat = true
		break
	}

	changed := false
	usedIDs := make(map[int64]bool, len(elements))
	items := make([]*domain.Item, 0, len(elements))

	for _, el := range elements {
		it, repaired := e.repairItem(el, legacyFlat, usedIDs)
		changed = changed || repaired
		items = append(items, it)
	}

	// Orphaned parent references: a parentId pointing at a missing
	// item, or at a link, is corruption and gets detached to root.
	// A group under an existing group is legacy nesting and is
	// tolerated as-is (displayed, never newly creatable).
	byID := make(map[int64]*domain.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	for _, it := range items {
		if it.ParentID == nil {
			continue
		}
		parent, ok := byID[*it.ParentID]
		if !ok || !parent.IsGroup() {
			e.log.Warn("orphaned parent reference repaired",
				logger.Int64("id", it.ID),
				logger.Int64("parentId", *it.ParentID))
			it.ParentID = nil
			changed = true
		}
	}

	if changed {
		e.log.Info("normalized persisted board data",
			logger.Int("items", len(items)))
	}
	return items, changed
}

// repairItem rebuilds one element into a canonical item, reporting
// whether any field needed repair.
func (e *Engine) repairItem(el map[string]any, legacyFlat bool, usedIDs map[int64]bool) (*domain.Item, bool) {
	changed := false

	id, ok := parseID(el["id"])
	if !ok || usedIDs[id] {
		id = e.freshID(usedIDs)
		changed = true
	} else if _, isNumber := el["id"].(float64); !isNumber {
		// Parseable but stored as a string.
		changed = true
	}
	usedIDs[id] = true

	kind, kindRepaired := parseKind(el, legacyFlat)
	changed = changed || kindRepaired

	parentID, parentRepaired := parseParentID(el["parentId"], legacyFlat)
	changed = changed || parentRepaired

	createdAt, createdRepaired := parseCreatedAt(el["createdAt"], id)
	changed = changed || createdRepaired

	it := &domain.Item{
		ID:        id,
		Kind:      kind,
		ParentID:  parentID,
		CreatedAt: createdAt,
	}

	rawTitle, _ := el["title"].(string)
	rawName, _ := el["name"].(string)

	if kind == domain.KindLink {
		rawURL, _ := el["url"].(string)
		it.URL = sanitize.URL(rawURL)
		if it.URL != rawURL {
			// Sanitized-but-empty URLs are retained: the link stays
			// on the board and renders broken rather than silently
			// disappearing.
			changed = true
		}

		it.Title = labelFor(rawTitle, rawName, linkFallback(it.URL))
		if it.Title != rawTitle {
			changed = true
		}
	} else {
		it.Name = labelFor(rawName, rawTitle, domain.DefaultGroupName)
		if it.Name != rawName {
			changed = true
		}

		if expanded, isBool := el["isExpanded"].(bool); isBool {
			it.IsExpanded = expanded
		} else {
			it.IsExpanded = true
			changed = true
		}
	}

	return it, changed
}

// labelFor picks a display label: the sanitized primary field, the
// sanitized counterpart when the primary is corrupt, the fallback when
// both are.
func labelFor(primary, counterpart, fallback string) string {
	if s := sanitize.String(primary, ""); s != "" {
		return s
	}
	if s := sanitize.String(counterpart, ""); s != "" {
		return s
	}
	return fallback
}

func linkFallback(url string) string {
	if host := sanitize.Hostname(url); host != "" {
		return host
	}
	return domain.DefaultTitle
}

// freshID synthesizes an id for an element whose stored id was
// unparseable or colliding.
func (e *Engine) freshID(usedIDs map[int64]bool) int64 {
	id := e.now().UnixMilli()
	for usedIDs[id] {
		id++
	}
	return id
}

// parseID accepts canonical JSON numbers and legacy stringified ids.
func parseID(v any) (int64, bool) {
	switch val := v.(type) {
	case float64:
		if val != float64(int64(val)) {
			return 0, false
		}
		return int64(val), true
	case string:
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

// parseKind reads the discriminator from "kind" or the legacy "type"
// field, inferring from the presence of a url when neither is usable.
func parseKind(el map[string]any, legacyFlat bool) (domain.Kind, bool) {
	raw, ok := el["kind"].(string)
	if !ok {
		raw, _ = el["type"].(string)
	}
	legacyField := !ok && raw != ""

	switch domain.Kind(raw) {
	case domain.KindLink:
		return domain.KindLink, legacyField
	case domain.KindGroup:
		return domain.KindGroup, legacyField
	}

	if legacyFlat {
		return domain.KindLink, true
	}
	if _, hasURL := el["url"]; hasURL {
		return domain.KindLink, true
	}
	return domain.KindGroup, true
}

// parseParentID normalizes the parent reference: absent values and the
// literal strings "null" and "undefined" all mean root.
func parseParentID(v any, legacyFlat bool) (*int64, bool) {
	if legacyFlat {
		_, had := v.(float64)
		return nil, had
	}

	switch val := v.(type) {
	case nil:
		return nil, false
	case float64:
		if val != float64(int64(val)) {
			return nil, true
		}
		id := int64(val)
		return &id, false
	case string:
		if s := sanitize.String(val, ""); s == "" {
			return nil, true
		}
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, true
		}
		return &id, true
	default:
		return nil, true
	}
}

// parseCreatedAt accepts RFC3339 timestamps and legacy unix
// milliseconds, deriving from the id (itself timestamp-born) when the
// stored value is useless.
func parseCreatedAt(v any, id int64) (time.Time, bool) {
	switch val := v.(type) {
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, val); err == nil {
			return ts, false
		}
		if ts, err := time.Parse(time.RFC3339, val); err == nil {
			return ts, false
		}
	case float64:
		if val > 0 && val == float64(int64(val)) {
			return time.UnixMilli(int64(val)).UTC(), true
		}
	}
	return time.UnixMilli(id).UTC(), true
}
