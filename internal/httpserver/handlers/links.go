package handlers

import (
	"net/http"
	"strings"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/sanitize"
)

type addLinkRequest struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	ParentID *int64 `json:"parentId"`
}

// AddLink validates and creates a link. Validation errors are the one
// error class that blocks the operation outright and goes back to the
// user as an inline message.
func AddLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addLinkRequest
		if !decodeBody(w, r, &req) {
			return
		}

		raw := strings.TrimSpace(req.URL)
		if raw == "" {
			writeError(w, http.StatusBadRequest, "Please enter a URL")
			return
		}

		url := sanitize.URL(raw)
		if url == "" || !sanitize.IsValidURL(url) {
			writeError(w, http.StatusBadRequest, "Please enter a valid URL (e.g., https://example.com)")
			return
		}

		if d.Board.HasURL(raw) || d.Board.HasURL(url) {
			writeDomainError(w, domain.ErrDuplicateURL)
			return
		}

		if req.ParentID != nil {
			parent, ok := d.Board.Get(*req.ParentID)
			if !ok || !parent.IsGroup() {
				writeDomainError(w, domain.ErrInvalidMove)
				return
			}
		}

		now := d.TimeNow()
		item := &domain.Item{
			ID:        d.Board.NextID(now),
			Kind:      domain.KindLink,
			ParentID:  req.ParentID,
			URL:       url,
			Title:     sanitize.String(req.Title, sanitize.Hostname(url)),
			CreatedAt: now,
		}

		d.Board.InsertRoot(item)
		persist(d)

		d.Logger.Info("link added",
			logger.Int64("id", item.ID),
			logger.String("url", item.URL))
		writeJSON(w, http.StatusCreated, item)
	}
}
