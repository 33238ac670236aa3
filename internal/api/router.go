package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sirpyerre/library-tracker/docs"
	"github.com/sirpyerre/library-tracker/internal/api/handler"
	"github.com/sirpyerre/library-tracker/internal/api/middleware"
	"github.com/sirpyerre/library-tracker/internal/core/ports"
)

// Deps holds everything the router wires into handlers.
type Deps struct {
	Users ports.UserService
	Books ports.BookService
	// Ready lists the dependencies checked by /health/ready, keyed by name.
	Ready map[string]handler.Pinger

	JWTSecret string
	StaticDir string
	Logger    zerolog.Logger
	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsConfig(deps.Registry)))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Users)
	bookHandler := handler.NewBookHandler(deps.Books)
	healthHandler := handler.NewHealthHandler(deps.Ready)

	// --- API routes ---
	g := e.Group("/api")

	// Auth routes ignore the Authorization header.
	g.POST("/register", authHandler.Register)
	g.POST("/login", authHandler.Login)

	var bookMW []echo.MiddlewareFunc
	if deps.JWTSecret != "" {
		bookMW = append(bookMW, middleware.OptionalAuth(deps.JWTSecret))
	}
	books := g.Group("/books", bookMW...)
	books.GET("", bookHandler.List)
	books.POST("", bookHandler.Add)
	books.GET("/:id", bookHandler.Get)
	books.DELETE("/:id", bookHandler.Delete)
	books.POST("/:id/borrow", bookHandler.Borrow)
	books.POST("/:id/return", bookHandler.Return)

	// --- Operational routes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", metricsHandler(deps.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Web client ---
	if deps.StaticDir != "" {
		e.Static("/", deps.StaticDir)
	}

	return e
}

func metricsConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{Subsystem: "library"}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
