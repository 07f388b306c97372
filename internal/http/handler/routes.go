package handler

import (
	"github.com/gofiber/fiber/v2"

	"codereview/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// publicHost is used for share links when a request carries no Host header.
func RegisterRoutes(app *fiber.App, pinger Pinger, svc service.AnalysisService, publicHost string) {
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")
	api.Get("/health", HealthCheck(pinger))

	api.Post("/upload", UploadFiles(svc))
	api.Post("/webhook/process", Webhook(svc))

	a := api.Group("/analysis")
	a.Get("/status/:sessionId", GetStatus(svc))
	a.Get("/results/:sessionId", GetResults(svc))
	a.Post("/reanalyze/:sessionId", Reanalyze(svc))
	a.Post("/share/:sessionId", Share(svc, publicHost))

	api.Get("/shared/:shareId", GetShared(svc))
}
