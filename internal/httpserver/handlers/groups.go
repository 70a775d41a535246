package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/sanitize"
)

type createGroupRequest struct {
	Name string `json:"name"`
}

// CreateGroup creates a named group at the end of the root sequence.
// Groups always start expanded.
func CreateGroup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGroupRequest
		if !decodeBody(w, r, &req) {
			return
		}

		now := d.TimeNow()
		item := &domain.Item{
			ID:         d.Board.NextID(now),
			Kind:       domain.KindGroup,
			Name:       sanitize.String(req.Name, domain.DefaultGroupName),
			IsExpanded: true,
			CreatedAt:  now,
		}

		d.Board.AppendGroup(item)
		persist(d)

		d.Logger.Info("group created",
			logger.Int64("id", item.ID),
			logger.String("name", item.Name))
		writeJSON(w, http.StatusCreated, item)
	}
}

type setExpandedRequest struct {
	Expanded bool `json:"expanded"`
}

// SetExpanded toggles a group's collapse flag.
func SetExpanded(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req setExpandedRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if err := d.Board.SetExpanded(id, req.Expanded); err != nil {
			writeDomainError(w, err)
			return
		}
		persist(d)
		w.WriteHeader(http.StatusNoContent)
	}
}

// pathID parses the {id} URL parameter, rejecting non-numeric ids.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return 0, false
	}
	return id, true
}
