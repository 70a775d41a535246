package handlers

import (
	"net/http"

	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/logger"
)

type moveRequest struct {
	ParentID *int64 `json:"parentId"`
	Before   *int64 `json:"before"`
}

type moveResponse struct {
	Result string `json:"result"`
}

// MoveItem reparents an item, optionally placing it before a named
// sibling. The store enforces the hierarchy rules; this handler only
// translates the outcome.
func MoveItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req moveRequest
		if !decodeBody(w, r, &req) {
			return
		}

		result, err := d.Board.Move(id, req.ParentID, req.Before)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		persist(d)
		writeJSON(w, http.StatusOK, moveResponse{Result: result.String()})
	}
}

type positionRequest struct {
	Direction string `json:"direction"` // "up" | "down"
}

// MovePosition swaps an item with its neighboring sibling.
func MovePosition(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req positionRequest
		if !decodeBody(w, r, &req) {
			return
		}

		var delta int
		switch req.Direction {
		case "up":
			delta = -1
		case "down":
			delta = 1
		default:
			writeError(w, http.StatusBadRequest, "direction must be up or down")
			return
		}

		if err := d.Board.MoveBy(id, delta); err != nil {
			writeDomainError(w, err)
			return
		}
		persist(d)
		w.WriteHeader(http.StatusNoContent)
	}
}

type renameRequest struct {
	Title *string `json:"title"`
	Name  *string `json:"name"`
}

// RenameItem updates the display label: title for links, name for
// groups. Either field is accepted; the store routes by kind.
func RenameItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req renameRequest
		if !decodeBody(w, r, &req) {
			return
		}

		label := ""
		switch {
		case req.Title != nil:
			label = *req.Title
		case req.Name != nil:
			label = *req.Name
		}

		item, err := d.Board.Rename(id, label)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		persist(d)
		writeJSON(w, http.StatusOK, item)
	}
}

// DeleteItem removes an item. Deleting a group cascades to every
// transitive descendant as one operation.
func DeleteItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		item, found := d.Board.Get(id)
		if !found {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}

		if item.IsGroup() {
			removed := d.Board.RemoveCascade(id)
			d.Logger.Info("group deleted with descendants",
				logger.Int64("id", id),
				logger.Int("removed", len(removed)))
		} else {
			d.Board.Remove(id)
			d.Logger.Info("link deleted",
				logger.Int64("id", id))
		}

		persist(d)
		w.WriteHeader(http.StatusNoContent)
	}
}
