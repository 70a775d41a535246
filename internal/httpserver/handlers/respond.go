package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/utils"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps the board error taxonomy onto HTTP statuses:
// missing items are 404, hierarchy violations 422, cycle rejections
// and duplicates 409.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, domain.ErrInvalidMove):
		writeError(w, http.StatusUnprocessableEntity, "groups may only live at root, links only under a group")
	case errors.Is(err, domain.ErrCycle):
		writeError(w, http.StatusConflict, "move rejected: an item cannot become its own ancestor")
	case errors.Is(err, domain.ErrDuplicateURL):
		writeError(w, http.StatusConflict, "This link already exists!")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// persist writes the board through to the local snapshot and signals
// the remote mirror. Local write failures degrade durability but must
// not fail the user's mutation: the in-memory board already holds the
// new state and rendering continues from it.
func persist(d deps.Deps) {
	if err := d.Local.Save(d.Board.Snapshot()); err != nil {
		d.Logger.Error("failed to write local snapshot",
			logger.Error(err))
	}
	if d.Mirror != nil {
		d.Mirror.MarkDirty()
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer utils.Close(r.Body)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
