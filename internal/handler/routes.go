package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitroom-app/backend/spec"
)

// Routes returns the router for the full API surface.
// Middleware (request id, logging, CORS, body limits) is applied by the
// caller so tests can exercise the bare routes.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Route("/api", func(r chi.Router) {
		r.Route("/rooms", func(r chi.Router) {
			r.Post("/create", s.CreateRoom)
			r.Post("/join/{roomId}", s.JoinRoom)
			r.Get("/{roomId}", s.GetRoom)
			r.Post("/{roomId}/upload-receipt", s.UploadReceipt)
			r.Post("/{roomId}/items/{itemRef}/tags", s.SetItemTag)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", NotImplemented)
			r.Post("/login", NotImplemented)
		})

		r.Route("/receipts", func(r chi.Router) {
			r.Post("/upload", NotImplemented)
			r.Put("/{receiptId}/items", NotImplemented)
			r.Get("/{receiptId}", NotImplemented)
		})
	})

	return r
}

// serveOpenAPI serves the embedded OpenAPI document.
func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}
