package domain

import "errors"

// Sentinel errors for board operations. Handlers map these onto HTTP
// statuses; the store never wraps them with user-facing text.
var (
	// ErrNotFound means the referenced item id does not exist.
	ErrNotFound = errors.New("item not found")

	// ErrInvalidMove means the move violates hierarchy rules:
	// groups may only live at root, links may only live at root or
	// under an existing group.
	ErrInvalidMove = errors.New("invalid move")

	// ErrCycle means the move would make an item its own ancestor.
	ErrCycle = errors.New("move rejected: would create a cycle")

	// ErrDuplicateURL means a link with the same URL already exists.
	ErrDuplicateURL = errors.New("link already exists")

	// ErrInvalidURL means user input failed URL validation.
	ErrInvalidURL = errors.New("invalid url")
)

// MoveResult reports what a successful Move actually did.
type MoveResult int

const (
	// Moved means the item changed parent and/or position.
	Moved MoveResult = iota
	// NoChange means the requested parent equals the current one.
	NoChange
)

func (m MoveResult) String() string {
	if m == NoChange {
		return "no_change"
	}
	return "moved"
}
