package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/httpserver/handlers"
	"github.com/linkdeck/linkdeck/internal/httpserver/mw"
)

func init() { Register(registerBoard) }

func registerBoard(r chi.Router, d deps.Deps) {
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Route("/api", func(api chi.Router) {
		api.Get("/board", handlers.Board(d))
		api.Delete("/board", handlers.ClearBoard(d))

		api.Post("/links", handlers.AddLink(d))
		api.Post("/groups", handlers.CreateGroup(d))
		api.Patch("/groups/{id}/expanded", handlers.SetExpanded(d))

		api.Patch("/items/{id}/move", handlers.MoveItem(d))
		api.Patch("/items/{id}/position", handlers.MovePosition(d))
		api.Patch("/items/{id}", handlers.RenameItem(d))
		api.Delete("/items/{id}", handlers.DeleteItem(d))
	})
}
