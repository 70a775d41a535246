// Package scheduler runs the remote mirror loop: best-effort,
// eventually-consistent pushes of the latest board snapshot to the
// remote document store. The local snapshot is always written first by
// the handlers; losing the remote never loses data.
package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/migrate"
	"github.com/linkdeck/linkdeck/internal/persist"
	"github.com/linkdeck/linkdeck/internal/store"
	redisstore "github.com/linkdeck/linkdeck/internal/store/redis"
)

// Mirror pushes board snapshots to the remote document store.
//
// Only the latest snapshot ever travels: a pending push is superseded
// by a newer one, there is no replay log of intermediate states. After
// a failed push the mirror goes degraded and the ticker acts as the
// catch-up retry.
type Mirror struct {
	remote   *redisstore.Store
	board    *store.Board
	local    *persist.File
	engine   *migrate.Engine
	userID   string
	logger   logger.Logger
	interval time.Duration
	dirty    chan struct{}
	stopCh   chan struct{}
	degraded atomic.Bool
}

// NewMirror creates a remote mirror for the given user's board.
func NewMirror(
	remote *redisstore.Store,
	board *store.Board,
	local *persist.File,
	engine *migrate.Engine,
	userID string,
	log logger.Logger,
	interval time.Duration,
) *Mirror {
	return &Mirror{
		remote:   remote,
		board:    board,
		local:    local,
		engine:   engine,
		userID:   userID,
		logger:   log,
		interval: interval,
		dirty:    make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

// MarkDirty signals that the board changed and the remote should catch
// up. Never blocks: a pending signal already covers the new change,
// since pushes always read the latest snapshot.
func (m *Mirror) MarkDirty() {
	select {
	case m.dirty <- struct{}{}:
	default:
	}
}

// Degraded reports whether the last remote operation failed.
func (m *Mirror) Degraded() bool {
	return m.degraded.Load()
}

// Start performs the initial down-sync and launches the mirror loop.
// A failed initial sync degrades the mirror but never fails startup;
// the local snapshot stays authoritative.
func (m *Mirror) Start(ctx context.Context) {
	if err := m.SyncDown(ctx); err != nil {
		m.logger.Warn("initial remote sync failed, continuing with local data",
			logger.Error(err))
	}

	ticker := time.NewTicker(m.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-m.dirty:
				m.push(ctx)
			case <-ticker.C:
				// Catch-up: retry only while degraded, the dirty
				// channel covers the healthy path.
				if m.Degraded() {
					m.push(ctx)
				}
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the mirror loop.
func (m *Mirror) Stop() {
	close(m.stopCh)
}

// SyncDown reconciles the board with the remote document on startup.
// An existing remote document wins and replaces the local collection
// (after normalization); a missing one gets the local snapshot pushed
// up, so the first session to sync seeds the document.
func (m *Mirror) SyncDown(ctx context.Context) error {
	raw, err := m.remote.LoadBoardRaw(ctx, m.userID)
	if err != nil {
		if errors.Is(err, redisstore.ErrNoDocument) {
			m.logger.Info("no remote board document, pushing local snapshot")
			m.push(ctx)
			return nil
		}
		m.degraded.Store(true)
		return err
	}

	items, changed := m.engine.Normalize(raw)
	m.board.Replace(items)
	m.logger.Info("loaded board from remote",
		logger.Int("items", len(items)))

	if err := m.local.Save(m.board.Snapshot()); err != nil {
		m.logger.Warn("failed to write local snapshot after remote sync",
			logger.Error(err))
	}
	if changed {
		// Remote held legacy or corrupt data; write the repaired
		// version back.
		m.push(ctx)
	}

	m.degraded.Store(false)
	return nil
}

// push uploads the latest snapshot, flipping the degraded flag on the
// way out. Failures are recoverable status, never an error to callers.
func (m *Mirror) push(ctx context.Context) {
	if err := m.remote.SaveBoard(ctx, m.userID, m.board.Snapshot()); err != nil {
		if !m.degraded.Swap(true) {
			m.logger.Warn("remote mirror degraded, local data remains authoritative",
				logger.Error(err))
		}
		return
	}
	if m.degraded.Swap(false) {
		m.logger.Info("remote mirror recovered")
	}
}
