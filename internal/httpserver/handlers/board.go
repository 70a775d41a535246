package handlers

import (
	"net/http"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
)

type boardNode struct {
	*domain.Item
	Children []*domain.Item `json:"children,omitempty"`
}

type boardResponse struct {
	Items []boardNode `json:"items"`
	Count int         `json:"count"`
}

// Board returns the rendering snapshot: ordered root items, each group
// carrying its ordered children. The client never mutates this shape
// directly; it calls the mutation endpoints instead.
func Board(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := d.Board.Snapshot()

		children := make(map[int64][]*domain.Item)
		var roots []*domain.Item
		for _, it := range snapshot {
			if it.ParentID == nil {
				roots = append(roots, it)
				continue
			}
			children[*it.ParentID] = append(children[*it.ParentID], it)
		}

		resp := boardResponse{
			Items: make([]boardNode, 0, len(roots)),
			Count: len(snapshot),
		}
		for _, root := range roots {
			resp.Items = append(resp.Items, boardNode{
				Item:     root,
				Children: children[root.ID],
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// ClearBoard deletes every item.
func ClearBoard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Board.Clear()
		persist(d)
		w.WriteHeader(http.StatusNoContent)
	}
}
