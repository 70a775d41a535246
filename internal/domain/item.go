package domain

import "time"

// Kind discriminates the two item variants.
type Kind string

const (
	// KindLink is a bookmarked URL.
	KindLink Kind = "link"
	// KindGroup is a named collection of links.
	KindGroup Kind = "group"
)

// Item represents one entry on the board: either a link or a group.
//
// The board is a flat ordered list of items; hierarchy is expressed
// through ParentID pointers, never through nesting. Slice position is
// the display position, there is no separate sort key.
type Item struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier.
	// Derived from the creation timestamp in unix milliseconds.
	// Never reused, never reassigned.
	ID int64 `json:"id"`

	// Kind is the variant discriminator: link or group.
	Kind Kind `json:"kind"`

	// ─────────────────────────────
	// Hierarchy
	// ─────────────────────────────

	// ParentID references the group this item lives under.
	// nil means root level. Only links may have a non-nil parent;
	// groups live at root (legacy data may violate this and is
	// tolerated on load, but never newly created).
	ParentID *int64 `json:"parentId"`

	// ─────────────────────────────
	// Link variant
	// ─────────────────────────────

	// URL is the absolute http/https target, normalized on write
	// (scheme prefixed, tracking parameters stripped).
	// Empty on groups. May be empty on a link whose persisted URL
	// could not be repaired; such links are kept and render broken.
	URL string `json:"url,omitempty"`

	// Title is the display label of a link.
	// Falls back to the URL hostname without the leading www.
	Title string `json:"title,omitempty"`

	// ─────────────────────────────
	// Group variant
	// ─────────────────────────────

	// Name is the display label of a group.
	// Falls back to "Untitled Group".
	Name string `json:"name,omitempty"`

	// IsExpanded is the UI collapse flag of a group.
	// Defaults to true on creation, mutated only by explicit toggle.
	// Not omitempty: a collapsed group must round-trip as false.
	IsExpanded bool `json:"isExpanded"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is the creation timestamp, immutable.
	CreatedAt time.Time `json:"createdAt"`
}

// IsLink reports whether the item is a link.
func (it *Item) IsLink() bool { return it.Kind == KindLink }

// IsGroup reports whether the item is a group.
func (it *Item) IsGroup() bool { return it.Kind == KindGroup }

// Root reports whether the item lives at root level.
func (it *Item) Root() bool { return it.ParentID == nil }

// Clone returns an independent copy of the item.
func (it *Item) Clone() *Item {
	c := *it
	if it.ParentID != nil {
		p := *it.ParentID
		c.ParentID = &p
	}
	return &c
}

// DefaultGroupName is the fallback label for a group whose persisted
// name is missing or corrupt.
const DefaultGroupName = "Untitled Group"

// DefaultTitle is the fallback label for a link when even the URL
// hostname cannot be derived.
const DefaultTitle = "Untitled"
