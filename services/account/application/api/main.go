package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/todoreminder/pkg/app"
	"github.com/ghuser/todoreminder/pkg/auth"
	"github.com/ghuser/todoreminder/services/account/application/handlers"
	appsvcs "github.com/ghuser/todoreminder/services/account/application/services"
)

// AccountRoutes registers account endpoints on the provided chi router.
func AccountRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Route("/account", func(r chi.Router) {
		r.Post("/signup", handlers.NewSignupHandler(svcs, a.SessionStore, a.Logger).Execute)
		r.Post("/login", handlers.NewLoginHandler(svcs, a.SessionStore, a.Logger).Execute)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(a.SessionStore, a.Logger))
			r.Post("/logout", handlers.NewLogoutHandler(a.SessionStore, a.Logger).Execute)
			r.Put("/line", handlers.NewPutLineHandler(svcs).Execute)
		})
	})
}
