package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/todoreminder/pkg/app"
	"github.com/ghuser/todoreminder/pkg/auth"
	"github.com/ghuser/todoreminder/services/todo/application/handlers"
	appsvcs "github.com/ghuser/todoreminder/services/todo/application/services"
)

// TodoRoutes registers to-do endpoints on the provided chi router. Every
// route requires a session.
func TodoRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(a.SessionStore, a.Logger))
		r.Route("/todos", func(r chi.Router) {
			r.Get("/", handlers.NewListTodosHandler(svcs).Execute)
			r.Post("/", handlers.NewPostTodoHandler(svcs).Execute)
			r.Get("/{id}", handlers.NewGetTodoHandler(svcs).Execute)
			r.Put("/{id}", handlers.NewPutTodoHandler(svcs).Execute)
			r.Delete("/{id}", handlers.NewDeleteTodoHandler(svcs).Execute)
		})
	})
}
