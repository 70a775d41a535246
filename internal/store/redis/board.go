// Package redis mirrors board snapshots to a remote Redis document
// store: one JSON document per user, replaced wholesale on every
// write. There are no partial updates and no cross-document
// transactions; the last writer wins.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ErrNoDocument means no board document exists yet for the user.
var ErrNoDocument = errors.New("no board document for user")

// Document is the remote wire shape of a board.
type Document struct {
	Items       []*domain.Item `json:"items"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// Store handles Redis operations for board documents.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis board store.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// SaveBoard replaces the user's board document with the given
// snapshot, stamping the write time.
func (s *Store) SaveBoard(ctx context.Context, userID string, items []*domain.Item) error {
	if items == nil {
		items = []*domain.Item{}
	}
	doc := Document{
		Items:       items,
		LastUpdated: time.Now().UTC(),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal board document: %w", err)
	}

	// Board documents never expire; the board is the user's data,
	// not a cache.
	if err := s.client.Set(ctx, BoardKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save board document: %w", err)
	}
	return nil
}

// rawDocument mirrors Document with the item array left unparsed, so
// corrupt legacy payloads reach the normalization engine instead of
// failing the decode.
type rawDocument struct {
	Items       json.RawMessage `json:"items"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// LoadBoardRaw fetches the user's board document with the item array
// as raw JSON, for callers that run normalization on it.
func (s *Store) LoadBoardRaw(ctx context.Context, userID string) ([]byte, error) {
	data, err := s.client.Get(ctx, BoardKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to get board document: %w", err)
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board document: %w", err)
	}
	return doc.Items, nil
}

// LoadBoard fetches the user's board document. ErrNoDocument signals a
// first sync (the caller pushes its local snapshot instead).
func (s *Store) LoadBoard(ctx context.Context, userID string) (*Document, error) {
	data, err := s.client.Get(ctx, BoardKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to get board document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board document: %w", err)
	}
	return &doc, nil
}

// DeleteBoard removes the user's board document.
func (s *Store) DeleteBoard(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, BoardKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete board document: %w", err)
	}
	return nil
}
