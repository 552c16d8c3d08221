package api

import (
	"errors"
	"time"

	"billwise/docs"
	"billwise/internal/api/handlers"
	"billwise/pkg/auth"
	"billwise/pkg/metrics"
	"billwise/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type RouterConfig struct {
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func SetupRouter(
	cfg RouterConfig,
	authHandler *handlers.AuthHandler,
	analysisHandler *handlers.AnalysisHandler,
	jwtManager *auth.JWTManager,
	m *metrics.Metrics,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: errorHandler(appLogger),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// docs package registers the OpenAPI document in init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	protected.Post("/analyze", analysisHandler.Analyze)
	protected.Get("/reports", analysisHandler.ListReports)
	protected.Get("/reports/:id", analysisHandler.GetReport)

	return app
}

func errorHandler(appLogger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		// bodies above BodyLimit never reach the handler
		if code == fiber.StatusRequestEntityTooLarge {
			return c.Status(code).JSON(fiber.Map{
				"error":   handlers.CodeUploadTooLarge,
				"message": "Uploaded file is too large",
			})
		}

		if code == fiber.StatusInternalServerError {
			appLogger.Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
