package http

import (
	"time"

	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// Limits configures the per-IP limit on login and sign-up submissions.
type Limits struct {
	AuthRate   int
	AuthWindow time.Duration
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, limiter *middleware.RateLimiter, limits Limits) {
	if limits.AuthRate <= 0 {
		limits.AuthRate = 5
	}
	if limits.AuthWindow <= 0 {
		limits.AuthWindow = time.Minute
	}

	// Health checks (no session, no rate limiting)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)

	sess := middleware.Session(h.Auth, h.Codec, h.CookieName())

	r.HandleMethodNotAllowed = true
	r.NoRoute(sess, h.NotFound)
	r.NoMethod(sess, h.MethodNotAllowed)

	app := r.Group("/", sess, middleware.CSRF())
	app.GET("/", h.Home)
	app.GET("/signup/", h.SignupPage)
	app.POST("/signup/", limiter.Limit("signup", limits.AuthRate, limits.AuthWindow), h.Signup)
	app.GET("/login/", h.LoginPage)
	app.POST("/login/", limiter.Limit("login", limits.AuthRate, limits.AuthWindow), h.Login)

	authed := app.Group("/", middleware.RequireLogin())
	authed.POST("/logout/", h.Logout)

	authed.GET("/create/", h.CreatePage)
	authed.POST("/create/", h.Create)
	authed.GET("/current/", h.Current)
	authed.GET("/completed/", h.Completed)

	authed.GET("/todo/:id", h.ViewTask)
	authed.POST("/todo/:id", h.UpdateTask)
	authed.POST("/todo/:id/complete", h.CompleteTask)
	authed.POST("/todo/:id/delete", h.DeleteTask)

	authed.GET("/ws", h.WS)
}
