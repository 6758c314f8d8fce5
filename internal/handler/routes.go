package handler

import (
	"github.com/gofiber/fiber/v2"
)

// Routes holds everything RegisterRoutes mounts.
type Routes struct {
	Health  *HealthHandler
	Metrics fiber.Handler
	Slots   *SlotHandler
	Config  *ConfigHandler
	Auth    *AuthHandler
	Admins  *AdminHandler
	Push    *PushHandler
	// RequireAdmin guards every /api/admin route and the session routes.
	RequireAdmin fiber.Handler
}

// RegisterRoutes mounts the public and administrator routes on app.
func RegisterRoutes(app *fiber.App, r Routes) {
	app.Get("/health", r.Health.Check)
	if r.Metrics != nil {
		app.Get("/metrics", r.Metrics)
	}

	api := app.Group("/api")

	// Public routes
	api.Get("/config", r.Config.Get)
	api.Get("/config/stream", r.Config.Stream)

	api.Get("/slots", r.Slots.List)
	api.Get("/slots/stream", r.Slots.Stream)
	api.Get("/slots/board", r.Slots.Board)
	api.Get("/slots/:number/status", r.Slots.Status)
	api.Get("/slots/:number/deposit", r.Slots.Deposit)
	api.Post("/slots/reserve", r.Slots.Reserve)

	api.Post("/auth/login", r.Auth.Login)
	api.Post("/push/devices", r.Push.RegisterDevice)

	// Session routes
	api.Post("/auth/logout", r.RequireAdmin, r.Auth.Logout)
	api.Get("/auth/session", r.RequireAdmin, r.Auth.Session)

	// Admin routes
	admin := api.Group("/admin", r.RequireAdmin)

	admin.Get("/slots", r.Slots.AdminQueue)
	admin.Post("/slots/manual", r.Slots.AddManual)
	admin.Post("/slots/reset", r.Slots.Reset)
	admin.Post("/slots/:id/confirm", r.Slots.Confirm)
	admin.Post("/slots/:id/reject", r.Slots.Reject)

	admin.Put("/config/challenge-size", r.Config.SetChallengeSize)
	admin.Patch("/config/deposit", r.Config.SetDeposit)

	admin.Get("/admins", r.Admins.List)
	admin.Post("/admins", r.Admins.Create)
	admin.Patch("/admins/:email", r.Admins.Rename)
	admin.Put("/admins/:email/email", r.Admins.ChangeEmail)
	admin.Delete("/admins/:email", r.Admins.Delete)

	admin.Post("/push/broadcast", r.Push.Broadcast)
}
