package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/terraincognita07/calm/internal/services"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(handler.metrics.Handler()))
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api", handler.Authenticate)

	auth := api.Group("/auth")
	auth.Post("/token", handler.IssueToken)
	auth.Post("/logout", handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.Me)

	mountResource(api, "/users", handler.users)
	mountResource(api, "/profiles", handler.profiles)
	mountResource(api, "/assessments", handler.assessments)
	mountResource(api, "/healthdata", handler.healthData)
	mountResource(api, "/feedback", handler.feedback)
	mountResource(api, "/professionals", handler.professionals)
	mountResource(api, "/appointments", handler.appointments)
	mountResource(api, "/clinics", handler.clinics)
}

func mountResource[T ownedRecord, In services.Input](router fiber.Router, prefix string, r *resource[T, In]) {
	group := router.Group(prefix)
	group.Get("", r.List)
	group.Post("", r.Create)
	group.Get("/:id", r.Retrieve)
	group.Put("/:id", r.Update)
	group.Patch("/:id", r.Update)
	group.Delete("/:id", r.Delete)
}
