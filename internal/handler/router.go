package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/tutoria-app/tutoria-api/internal/middleware"
	"github.com/tutoria-app/tutoria-api/internal/service"
	"github.com/tutoria-app/tutoria-api/pkg/config"
	"github.com/tutoria-app/tutoria-api/pkg/logger"
	corsmiddleware "github.com/tutoria-app/tutoria-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tutoria-app/tutoria-api/pkg/middleware/requestid"
)

// Handlers bundles every endpoint group the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Students   *StudentHandler
	Classes    *ClassHandler
	Attendance *AttendanceHandler
	Payments   *PaymentHandler

	AuthService *service.AuthService
	Metrics     *service.MetricsService
}

type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// NewRouter assembles the gin engine from a static route table.
func NewRouter(cfg *config.Config, logr *zap.Logger, h Handlers, db *sqlx.DB) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(h.Metrics))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if db != nil {
			if err := db.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/token", h.Auth.Token)

	protected := api.Group("", middleware.JWT(h.AuthService))
	for _, rt := range protectedRoutes(h) {
		protected.Handle(rt.method, rt.path, rt.handler)
	}

	admin := protected.Group("", middleware.AdminOnly())
	for _, rt := range adminRoutes(h) {
		admin.Handle(rt.method, rt.path, rt.handler)
	}

	return r
}

func protectedRoutes(h Handlers) []route {
	return []route{
		{http.MethodGet, "/users/me", h.Auth.Me},
		{http.MethodPut, "/users/me/password", h.Users.UpdateOwnPassword},

		{http.MethodGet, "/students", h.Students.List},
		{http.MethodPost, "/students", h.Students.Create},
		{http.MethodGet, "/students/:id", h.Students.Get},
		{http.MethodPut, "/students/:id", h.Students.Update},
		{http.MethodDelete, "/students/:id", h.Students.Delete},
		{http.MethodGet, "/students/:id/evolution", h.Students.Evolution},
		{http.MethodGet, "/students/:id/statistics", h.Students.Statistics},
		{http.MethodPost, "/students/:id/report/pdf", h.Students.Report},

		{http.MethodGet, "/classes", h.Classes.List},
		{http.MethodPost, "/classes", h.Classes.Create},
		{http.MethodGet, "/classes/:id", h.Classes.Get},
		{http.MethodPut, "/classes/:id", h.Classes.Update},
		{http.MethodDelete, "/classes/:id", h.Classes.Delete},
		{http.MethodGet, "/classes/:id/students", h.Classes.Students},
		{http.MethodPost, "/classes/:id/enroll/:studentID", h.Classes.Enroll},
		{http.MethodDelete, "/classes/:id/enroll/:studentID", h.Classes.Unenroll},
		{http.MethodGet, "/classes/:id/attendance", h.Classes.Sessions},
		{http.MethodPost, "/classes/:id/attendance", h.Classes.CreateSession},
		{http.MethodPut, "/classes/:id/attendance/:sessionID", h.Classes.UpdateSession},
		{http.MethodDelete, "/classes/:id/attendance/:sessionID", h.Classes.DeleteSession},

		{http.MethodGet, "/attendance-sessions/:id", h.Attendance.Get},
		{http.MethodGet, "/attendance-sessions/:id/report/pdf", h.Attendance.Report},

		{http.MethodGet, "/payments", h.Payments.List},
		{http.MethodPost, "/payments", h.Payments.Create},
		{http.MethodGet, "/payments/report/pdf", h.Payments.MonthlyReport},
		{http.MethodGet, "/payments/:id", h.Payments.Get},
		{http.MethodPut, "/payments/:id", h.Payments.Update},
		{http.MethodPut, "/payments/:id/status", h.Payments.UpdateStatus},
	}
}

func adminRoutes(h Handlers) []route {
	return []route{
		{http.MethodGet, "/users", h.Users.List},
		{http.MethodPost, "/users", h.Users.Create},
		{http.MethodDelete, "/users/:id", h.Users.Delete},
		{http.MethodPut, "/users/:id/password", h.Users.UpdatePassword},
	}
}
