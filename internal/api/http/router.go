package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workorder-service/internal/api/http/handlers"
	"github.com/spec-kit/workorder-service/internal/auth"
	"github.com/spec-kit/workorder-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Orders         *handlers.OrdersHandler
	Assessments    *handlers.AssessmentsHandler
	Refills        *handlers.RefillsHandler
	Equipment      *handlers.EquipmentHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Users.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle)
	api.Get("/auth/me", cfg.Users.Me)
	api.Post("/auth/password/change", cfg.Users.ChangePassword)

	api.Post("/users", auth.RequireAdmin(), cfg.Users.Register)
	api.Get("/users", auth.RequireAdmin(), cfg.Users.List)

	api.Post("/orders", cfg.Orders.Create)
	api.Get("/orders", cfg.Orders.List)
	api.Get("/orders/worklist", cfg.Orders.Worklist)
	api.Get("/orders/:kind/:number", cfg.Orders.Get)
	api.Put("/orders/:kind/:number", auth.RequireRole(domain.RoleAdmin, domain.RoleClerk), cfg.Orders.UpdateDetails)
	api.Patch("/orders/:kind/:number/status", cfg.Orders.Transition)
	api.Post("/orders/:kind/:number/finish", cfg.Orders.Finish)
	api.Post("/orders/:kind/:number/pickup", auth.RequireRole(domain.RoleAdmin, domain.RoleClerk), cfg.Orders.ConfirmPickup)
	api.Get("/orders/:kind/:number/assessments", cfg.Assessments.ListByOrder)

	api.Post("/assessments", cfg.Assessments.File)
	api.Patch("/assessments/:id", auth.RequireAdmin(), cfg.Assessments.Resolve)

	api.Post("/refills", cfg.Refills.Create)
	api.Get("/refills", cfg.Refills.List)
	api.Get("/refills/printers", cfg.Refills.Printers)
	api.Get("/refills/:id", cfg.Refills.Get)
	api.Put("/refills/:id", cfg.Refills.Update)

	api.Post("/equipment", cfg.Equipment.Create)
	api.Get("/equipment", cfg.Equipment.List)
	api.Get("/equipment/:id", cfg.Equipment.Get)
	api.Put("/equipment/:id", cfg.Equipment.Update)
	api.Delete("/equipment/:id", auth.RequireAdmin(), cfg.Equipment.Delete)

	api.Get("/dashboard", cfg.Dashboard.Summary)
}
