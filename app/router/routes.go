// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/amirphl/personnel-directory/app/dto"
	"github.com/amirphl/personnel-directory/app/handlers"
	"github.com/amirphl/personnel-directory/app/middleware"
	businessflow "github.com/amirphl/personnel-directory/business_flow"
	"github.com/amirphl/personnel-directory/config"
	"github.com/amirphl/personnel-directory/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Auth         handlers.AdminAuthHandlerInterface
	Personnel    handlers.PersonnelHandlerInterface
	Directory    handlers.DirectoryHandlerInterface
	ImportExport handlers.ImportExportHandlerInterface
	Settings     handlers.SettingsHandlerInterface
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	cfg            *config.AppConfig
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(cfg *config.AppConfig, h Handlers, authMiddleware *middleware.AuthMiddleware) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Personnel Directory API",
		ServerHeader: "personnel-directory",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:            app,
		cfg:            cfg,
		handlers:       h,
		authMiddleware: authMiddleware,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	r.app.Get("/health", r.healthCheck)
	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")
	api.Use(newLimiter(r.cfg.Server.GlobalRateLimit, time.Minute, "Too many requests. Please try again later.", nil))

	// Public directory
	api.Get("/directory", r.handlers.Directory.Search)
	api.Get("/directory/lookups", r.handlers.Directory.Lookups)
	api.Get("/settings", r.handlers.Settings.Get)

	// Auth
	auth := api.Group("/auth")
	auth.Use(newLimiter(r.cfg.Security.AuthRateLimit, time.Minute, "Too many requests. Please try again later.", nil))
	auth.Post("/login", r.handlers.Auth.Login)
	auth.Get("/status", r.handlers.Auth.Status)
	if r.cfg.Captcha.Enabled {
		auth.Get("/captcha", r.handlers.Auth.InitCaptcha)
	}

	admin := r.authMiddleware.AdminAuthenticate()
	auth.Post("/logout", admin, r.handlers.Auth.Logout)
	auth.Post("/password", admin, r.handlers.Auth.ChangePassword)
	auth.Post("/attempts/clear", admin, r.handlers.Auth.ClearAttempts)
	auth.Get("/history", admin, r.handlers.Auth.History)
	auth.Get("/logs", admin, r.handlers.Auth.Logs)
	auth.Delete("/logs", admin, r.handlers.Auth.ClearLogs)

	// Admin
	adminGroup := api.Group("/admin", admin)

	personnel := adminGroup.Group("/personnel")
	personnel.Get("/", r.handlers.Personnel.List)
	personnel.Post("/", r.handlers.Personnel.Create)
	personnel.Post("/bulk-delete", r.handlers.Personnel.BulkDelete)
	personnel.Get("/:code", r.handlers.Personnel.Get)
	personnel.Put("/:code", r.handlers.Personnel.Update)
	personnel.Delete("/:code", r.handlers.Personnel.Delete)

	uploads := newLimiter(r.cfg.Security.UploadRateLimit, r.cfg.Security.UploadRateWindow, businessflow.MsgUploadRateLimited, middleware.RecordUploadThrottled)
	adminGroup.Post("/import", uploads, r.handlers.ImportExport.Import)
	adminGroup.Get("/export", r.handlers.ImportExport.Export)
	adminGroup.Get("/export/sample", r.handlers.ImportExport.Sample)

	adminGroup.Put("/settings", r.handlers.Settings.Update)
	adminGroup.Post("/settings/reset", r.handlers.Settings.Reset)
	adminGroup.Post("/settings/logo", uploads, r.handlers.Settings.UploadImage(businessflow.ImageKindLogo))
	adminGroup.Post("/settings/favicon", uploads, r.handlers.Settings.UploadImage(businessflow.ImageKindFavicon))

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// newLimiter limits requests per client IP; onLimit runs for every refused request when set
func newLimiter(max int, window time.Duration, message string, onLimit func()) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			if onLimit != nil {
				onLimit()
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: message,
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
	})
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}))

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				requestid.FromContext(c),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000,
		ContentSecurityPolicy:     "default-src 'self'; img-src 'self' data: https:; style-src 'self' 'unsafe-inline'; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginResourcePolicy: "cross-origin",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins:  r.cfg.Server.AllowedOrigins,
		AllowMethods:  r.cfg.Server.AllowedMethods,
		AllowHeaders:  r.cfg.Server.AllowedHeaders,
		ExposeHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:        utils.CORSMaxAge,
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
			Next: func(c fiber.Ctx) bool {
				// xlsx is already a zip
				return strings.Contains(c.Path(), "/export") && c.Query("format") == "xlsx"
			},
		}))
	}

	if r.cfg.Logging.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","request_id":"${respHeader:X-Request-ID}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/health"
			},
		}))
	}

	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}
}

func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"service":   "personnel-directory",
			"store":     r.cfg.Store.Provider,
		},
	})
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	errCode := "INTERNAL_ERROR"
	message := "An internal server error occurred"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code == fiber.StatusRequestEntityTooLarge {
			errCode = "BODY_TOO_LARGE"
			message = fe.Message
		}
	}

	log.Printf("Error %d: %v", code, err)

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: errCode,
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}
