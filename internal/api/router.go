package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/diary/internal/account"
	"github.com/starford/diary/internal/journal"
)

// NewRouter creates a chi router with all API routes mounted.
// Account status and first-time setup are public; everything else goes
// through AuthMiddleware. sseHandler, if non-nil, is mounted at GET /events
// inside the auth group.
func NewRouter(svc *journal.Service, sess *account.Session, auth Auth, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, sess)

	r := chi.NewRouter()

	// Account status and setup.
	r.Get("/account", h.GetAccount)
	r.Post("/account", h.SetupAccount)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(auth, sess))

		r.Put("/account", h.UpdateAccount)

		// Entries CRUD.
		r.Get("/entries", h.ListEntries)
		r.Post("/entries", h.CreateEntry)
		r.Get("/entries/{id}", h.GetEntry)
		r.Put("/entries/{id}", h.UpdateEntry)
		r.Delete("/entries/{id}", h.DeleteEntry)

		// Calendar.
		r.Get("/calendar", h.Calendar)
		r.Get("/calendar/navigate", h.Navigate)
		r.Get("/calendar/days/{date}", h.Day)

		// Search.
		r.Get("/search", h.Search)

		// SSE endpoint (protected by same auth middleware).
		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
