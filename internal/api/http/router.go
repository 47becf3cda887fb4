package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/api/http/handlers"
	"github.com/civicdesk/complaint-service/internal/auth"
	"github.com/civicdesk/complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	complaints := app.Group("/complaints", cfg.AuthMiddleware.Handle)
	complaints.Post("", auth.RequireRole(domain.RoleCitizen), cfg.Complaints.Submit)
	complaints.Get("", auth.RequireRole(domain.RoleCitizen), cfg.Complaints.ListMine)
	complaints.Get("/summary", auth.RequireRole(domain.RoleCitizen), cfg.Complaints.MySummary)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Get("/:id/image", cfg.Complaints.Image)
	complaints.Post("/:id/status", auth.RequireRole(domain.RoleMunicipal, domain.RoleAdmin), cfg.Complaints.UpdateStatus)

	department := app.Group("/department", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleMunicipal))
	department.Get("/complaints", cfg.Complaints.Queue)
	department.Get("/summary", cfg.Complaints.QueueSummary)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/complaints", cfg.Admin.ListComplaints)
	admin.Post("/complaints/:id/reassign", cfg.Admin.Reassign)
	admin.Post("/complaints/:id/auto-assign", cfg.Admin.AutoAssign)
	admin.Post("/complaints/:id/notify-department", cfg.Admin.NotifyDepartment)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/users", cfg.Admin.CreateUser)
	admin.Put("/users/:id", cfg.Admin.UpdateUser)
	admin.Patch("/users/:id/active", cfg.Admin.SetUserActive)
	admin.Delete("/users/:id", cfg.Admin.DeleteUser)
	admin.Get("/dashboard", cfg.Admin.Dashboard)
	admin.Get("/reports", cfg.Admin.Report)
}
