package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/salon/api/handler"
)

type Handlers struct {
	Auth         *apiHandler.AuthHandler
	Profile      *apiHandler.ProfileHandler
	Appointments *apiHandler.AppointmentHandler
	Events       *apiHandler.EventsHandler
	Health       *apiHandler.HealthHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers, authMiddleware Middleware) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Public booking intake
	r.POST("/api/v1/appointments", handlers.Appointments.Create)

	// Staff routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))

	r.GET("/api/v1/appointments", authMiddleware(handlers.Appointments.List))
	r.GET("/api/v1/appointments/{id}", authMiddleware(handlers.Appointments.Get))
	r.PATCH("/api/v1/appointments/{id}/status", authMiddleware(handlers.Appointments.UpdateStatus))
	r.PUT("/api/v1/appointments/{id}/status", authMiddleware(handlers.Appointments.UpdateStatus))
	r.DELETE("/api/v1/appointments/{id}", authMiddleware(handlers.Appointments.Delete))
	r.GET("/api/v1/appointments/{id}/notifications", authMiddleware(handlers.Appointments.Notifications))

	r.GET("/api/v1/events", authMiddleware(handlers.Events.Stream))

	return r
}
