// Package store owns the canonical in-memory board collection.
//
// The board is an ordered slice of items with an id index on the side.
// Slice order is display order: there is no sort key. All hierarchy
// rules (groups at root, links under at most one group, no cycles) are
// enforced here so callers never re-check them inline.
package store

import (
	"sync"
	"time"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/sanitize"
)

// Board is the single owner of the canonical item collection.
// It is the source of truth for rendering; persistence only ever sees
// snapshots.
type Board struct {
	mu    sync.RWMutex
	items []*domain.Item
	byID  map[int64]*domain.Item
	log   logger.Logger
}

// NewBoard creates an empty board.
func NewBoard(log logger.Logger) *Board {
	return &Board{
		byID: make(map[int64]*domain.Item),
		log:  log,
	}
}

// Get retrieves an item by id.
func (b *Board) Get(id int64) (*domain.Item, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	it, ok := b.byID[id]
	return it, ok
}

// Len returns the number of items on the board.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.items)
}

// NextID returns a fresh unique id derived from now in unix
// milliseconds, bumped past any id already taken.
func (b *Board) NextID(now time.Time) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.nextIDLocked(now)
}

func (b *Board) nextIDLocked(now time.Time) int64 {
	id := now.UnixMilli()
	for {
		if _, taken := b.byID[id]; !taken {
			return id
		}
		id++
	}
}

// Children returns the ordered items whose parent equals parentID.
// nil matches root-level items.
func (b *Board) Children(parentID *int64) []*domain.Item {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*domain.Item
	for _, it := range b.items {
		if sameParent(it.ParentID, parentID) {
			out = append(out, it)
		}
	}
	return out
}

// Descendants returns the ids of all transitive children of id.
//
// The parent graph is supposed to be acyclic, but legacy data has
// shipped with cycles; a visited set stops the walk instead of
// recursing forever, and the cycle is reported as corruption.
func (b *Board) Descendants(id int64) map[int64]struct{} {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.descendantsLocked(id)
}

func (b *Board) descendantsLocked(id int64) map[int64]struct{} {
	visited := map[int64]struct{}{id: {}}
	out := make(map[int64]struct{})

	queue := []int64{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, it := range b.items {
			if it.ParentID == nil || *it.ParentID != current {
				continue
			}
			if _, seen := visited[it.ID]; seen {
				b.log.Warn("cycle detected in parent graph, stopping descent",
					logger.Int64("id", it.ID))
				continue
			}
			visited[it.ID] = struct{}{}
			out[it.ID] = struct{}{}
			queue = append(queue, it.ID)
		}
	}

	return out
}

// InsertRoot prepends a new item at the front of the root sequence.
// New links surface first. A colliding id is bumped so uniqueness
// holds no matter what the caller assigned.
func (b *Board) InsertRoot(it *domain.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.claimIDLocked(it)
	b.items = append([]*domain.Item{it}, b.items...)
	b.byID[it.ID] = it
}

// AppendGroup appends a new group at the end of the sequence.
func (b *Board) AppendGroup(it *domain.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.claimIDLocked(it)
	b.items = append(b.items, it)
	b.byID[it.ID] = it
}

func (b *Board) claimIDLocked(it *domain.Item) {
	if _, taken := b.byID[it.ID]; taken {
		it.ID = b.nextIDLocked(time.UnixMilli(it.ID))
	}
}

// Remove deletes exactly the item with the given id. It does not
// cascade; use RemoveCascade when deleting a group with children.
func (b *Board) Remove(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.removeLocked(id)
}

func (b *Board) removeLocked(id int64) bool {
	if _, ok := b.byID[id]; !ok {
		return false
	}
	delete(b.byID, id)
	for i, it := range b.items {
		if it.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			break
		}
	}
	return true
}

// RemoveCascade deletes the item and every transitive descendant as
// one logical transaction under a single lock. Returns the ids removed.
func (b *Board) RemoveCascade(id int64) []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.byID[id]; !ok {
		return nil
	}

	doomed := b.descendantsLocked(id)
	doomed[id] = struct{}{}

	removed := make([]int64, 0, len(doomed))
	for victim := range doomed {
		if b.removeLocked(victim) {
			removed = append(removed, victim)
		}
	}
	return removed
}

// Move reparents an item, validating in order: existence, the
// groups-at-root rule, target-parent validity, acyclicity, and finally
// whether anything changes at all. On success the item is relocated in
// the backing sequence, immediately before the given sibling when one
// is named, at the end otherwise.
func (b *Board) Move(id int64, newParentID, before *int64) (domain.MoveResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	it, ok := b.byID[id]
	if !ok {
		return domain.NoChange, domain.ErrNotFound
	}

	if it.IsGroup() && newParentID != nil {
		// Groups may only live at root.
		return domain.NoChange, domain.ErrInvalidMove
	}

	if it.IsLink() && newParentID != nil {
		parent, found := b.byID[*newParentID]
		if !found || !parent.IsGroup() {
			return domain.NoChange, domain.ErrInvalidMove
		}
	}

	if newParentID != nil {
		if *newParentID == id {
			return domain.NoChange, domain.ErrCycle
		}
		if _, inSubtree := b.descendantsLocked(id)[*newParentID]; inSubtree {
			return domain.NoChange, domain.ErrCycle
		}
	}

	if sameParent(it.ParentID, newParentID) {
		return domain.NoChange, nil
	}

	it.ParentID = copyID(newParentID)
	b.relocateLocked(it, before)
	return domain.Moved, nil
}

// relocateLocked moves it within the backing sequence: before the
// named sibling if it exists, else to the end.
func (b *Board) relocateLocked(it *domain.Item, before *int64) {
	for i, cur := range b.items {
		if cur.ID == it.ID {
			b.items = append(b.items[:i], b.items[i+1:]...)
			break
		}
	}

	if before != nil {
		for i, cur := range b.items {
			if cur.ID == *before {
				b.items = append(b.items[:i], append([]*domain.Item{it}, b.items[i:]...)...)
				return
			}
		}
	}
	b.items = append(b.items, it)
}

// MoveBy swaps the item with its nearest sibling in the given
// direction (-1 up, +1 down). Reaching the edge is a no-op.
func (b *Board) MoveBy(id int64, delta int) error {
	if delta != -1 && delta != 1 {
		return domain.ErrInvalidMove
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	it, ok := b.byID[id]
	if !ok {
		return domain.ErrNotFound
	}

	pos := -1
	for i, cur := range b.items {
		if cur.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return domain.ErrNotFound
	}

	// Swap with the nearest item sharing the same parent so that a
	// move inside a group never jumps across other groups.
	for i := pos + delta; i >= 0 && i < len(b.items); i += delta {
		if sameParent(b.items[i].ParentID, it.ParentID) {
			b.items[pos], b.items[i] = b.items[i], b.items[pos]
			return nil
		}
	}
	return nil
}

// SetExpanded toggles the collapse flag of a group.
func (b *Board) SetExpanded(id int64, expanded bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	it, ok := b.byID[id]
	if !ok || !it.IsGroup() {
		return domain.ErrNotFound
	}
	it.IsExpanded = expanded
	return nil
}

// Rename updates the display label: title for links with the URL
// hostname as fallback, name for groups with the standard fallback.
// Input always passes through the sanitizer.
func (b *Board) Rename(id int64, raw string) (*domain.Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	it, ok := b.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	if it.IsGroup() {
		it.Name = sanitize.String(raw, domain.DefaultGroupName)
		return it, nil
	}

	fallback := sanitize.Hostname(it.URL)
	if fallback == "" {
		fallback = domain.DefaultTitle
	}
	it.Title = sanitize.String(raw, fallback)
	return it, nil
}

// HasURL reports whether any link already points at url.
func (b *Board) HasURL(url string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, it := range b.items {
		if it.IsLink() && it.URL == url {
			return true
		}
	}
	return false
}

// Clear removes every item.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = nil
	b.byID = make(map[int64]*domain.Item)
}

// Snapshot returns an independent ordered copy of the collection for
// persistence or rendering. Callers never receive live items.
func (b *Board) Snapshot() []*domain.Item {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*domain.Item, 0, len(b.items))
	for _, it := range b.items {
		out = append(out, it.Clone())
	}
	return out
}

// Replace swaps in a whole new collection, typically after load or
// remote sync. Duplicate ids are corruption; later duplicates are
// dropped and reported.
func (b *Board) Replace(items []*domain.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = make([]*domain.Item, 0, len(items))
	b.byID = make(map[int64]*domain.Item, len(items))
	for _, it := range items {
		if _, dup := b.byID[it.ID]; dup {
			b.log.Warn("duplicate item id in loaded data, dropping later copy",
				logger.Int64("id", it.ID))
			continue
		}
		b.items = append(b.items, it)
		b.byID[it.ID] = it
	}
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
