package handler

import (
	"database/sql"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docviewer/internal/http/middleware"
	"docviewer/internal/service"
	"docviewer/internal/session"
)

// Deps are the collaborators wired into the HTTP routes.
type Deps struct {
	Backend   string
	DB        *sql.DB // optional; enables the extraction history route
	Documents service.DocumentService
	Texts     service.TextService
	// Sessions and Auth are set for the document-site backend. Document routes then
	// require a session.
	Sessions *session.Manager
	Auth     Authenticator
	Logger   *slog.Logger
	Gatherer prometheus.Gatherer // optional; serves /metrics
}

// RegisterRoutes attaches the API plus the operational endpoints to app.
func RegisterRoutes(app *fiber.App, d Deps) {
	RegisterAPI(app.Group("/api"), d)

	app.Get("/healthz", LivenessProbe())
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
}

// RegisterAPI attaches the /api routes to r. Both deployment shapes serve exactly these.
func RegisterAPI(r fiber.Router, d Deps) {
	guarded := func(h fiber.Handler) []fiber.Handler {
		if d.Sessions == nil {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{middleware.RequireSession(d.Sessions), h}
	}

	r.Get("/health", HealthCheck(d.Backend, d.Documents != nil, d.DB))

	if d.Sessions != nil && d.Auth != nil {
		r.Get("/sharepoint-auth", SharePointStatus(d.Sessions))
		r.Post("/sharepoint-auth", SharePointAuth(d.Auth, d.Sessions, d.Logger))
	}

	r.Post("/upload", guarded(UploadDocument(d.Documents))...)
	r.Get("/files", guarded(ListDocuments(d.Documents))...)
	r.Get("/files/:name/download", guarded(DownloadURL(d.Documents))...)
	r.Delete("/files/:name", guarded(DeleteDocument(d.Documents))...)
	r.Post("/extract-text/:name", guarded(ExtractText(d.Texts))...)
	r.Post("/save-edited-text/:name", guarded(SaveEditedText(d.Texts))...)
	if d.DB != nil {
		r.Get("/files/:name/extractions", guarded(ExtractionHistory(d.Texts))...)
	}
}
