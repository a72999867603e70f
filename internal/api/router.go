package api

import (
	"apexbox/docs"
	"apexbox/internal/api/handlers"
	"apexbox/pkg/auth"
	"apexbox/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	ingestHandler *handlers.IngestHandler,
	setupHandler *handlers.SetupHandler,
	searchHandler *handlers.SearchHandler,
	chatHandler *handlers.ChatHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Swagger - importing docs registers the generated spec through init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Banner, doubles as a liveness probe
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "apexbox: Together AI + Brave Search + SerpAPI live",
		})
	})

	// Chat is the public surface the web client talks to
	app.Post("/chat", chatHandler.Chat)
	app.Get("/chat/history", chatHandler.History)

	// Auth routes (public)
	user := app.Group("/user")
	userAuth := user.Group("/auth")
	userAuth.Post("/register", authHandler.Register)
	userAuth.Post("/login", authHandler.Login)
	userAuth.Post("/refresh", authHandler.RefreshToken)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/setups/recent", setupHandler.Recent)
	api.Get("/setups/exists", setupHandler.Exists)
	api.Get("/search", searchHandler.Resolve)

	// Ingestion mutates the store; operators only
	protected := api.Group("", middleware.AuthMiddleware(jwtManager, appLogger))
	protected.Post("/ingest", ingestHandler.Run)

	return app
}
