package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"pharmaflow/internal/api"
	"pharmaflow/internal/config"
	"pharmaflow/internal/lp"
	"pharmaflow/internal/service"
)

func main() {
	cfg, err := config.Load(getEnvOrDefault("CONFIG_PATH", ""))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := cfg.Logging.NewLogger()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	app := fiber.New(fiber.Config{
		AppName:      "PharmaFlow Planner v1.0",
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		BodyLimit:    cfg.Server.BodyLimitBytes(),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(api.RequestSizeLimiter(cfg.Server.BodyLimitBytes()))

	// Initialize services
	solver := lp.NewSimplexSolver(cfg.Solver.Tolerance)
	planningService := service.NewPlanningServiceWithSolver(solver, cfg.Planner.ToPlanner(), cfg.Solver.Timeout(), zlog)

	// Setup routes
	api.SetupRoutes(app, planningService, cfg.Generator)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		zlog.Info("shutting down gracefully")
		_ = app.Shutdown()
	}()

	// Start server
	zlog.Info("pharmaflow API starting", zap.Int("port", cfg.Server.Port))

	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
