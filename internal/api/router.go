package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/auth-service/docs"
	"github.com/99minutos/auth-service/internal/api/handler"
	"github.com/99minutos/auth-service/internal/api/middleware"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	AuthService ports.AuthService
	RoleService ports.RoleService
	Codec       ports.CredentialCodec
	CookieName  string
	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handler.Checker
	Logger zerolog.Logger
	// Registerer receives the HTTP request metrics. Defaults to the global
	// Prometheus registerer.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "auth",
		Registerer: deps.Registerer,
	}))
	e.Use(middleware.Credential(deps.Codec, deps.CookieName))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.CookieName)
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)

	// --- Role management (SUPER_ADMIN only, enforced by the role service) ---
	userHandler := handler.NewUserHandler(deps.RoleService)
	e.PUT("/updateUserRole", userHandler.UpdateUserRole)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
