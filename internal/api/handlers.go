package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pharmaflow/internal/dataset"
	"pharmaflow/internal/domain"
	"pharmaflow/internal/lp"
	"pharmaflow/internal/service"
)

func SetupRoutes(app *fiber.App, planningService *service.PlanningService, generator dataset.GeneratorConfig) {
	app.Get("/healthz", HealthCheckHandler)
	app.Get("/actuator/health", HealthCheckHandler)

	v1 := app.Group("/api/v1")
	plans := v1.Group("/plans")
	plans.Post("/synthetic", SyntheticPlanHandler(planningService, generator))
	plans.Post("/upload", UploadPlanHandler(planningService))
}

func HealthCheckHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "UP",
		"service": "PharmaFlow Planning API",
		"version": "1.0.0",
	})
}

// SyntheticPlanHandler generates a dataset and plans it in one shot. The
// JSON body overrides the configured generator dimensions and is optional;
// an empty body plans the default scenario.
func SyntheticPlanHandler(planningService *service.PlanningService, defaults dataset.GeneratorConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		request := defaults
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&request); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": fiber.Map{
						"code":    fiber.StatusBadRequest,
						"message": "Invalid JSON format",
						"details": err.Error(),
					},
				})
			}
		}

		if err := request.Validate(); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    fiber.StatusBadRequest,
					"message": err.Error(),
				},
			})
		}

		table := dataset.Generate(request)
		return respondPlan(c, planningService, table)
	}
}

// UploadPlanHandler plans a dataset posted as a CSV file in the multipart
// field "file".
func UploadPlanHandler(planningService *service.PlanningService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil || fileHeader.Filename == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    fiber.StatusBadRequest,
					"message": "No file uploaded in multipart field \"file\"",
				},
			})
		}

		file, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    fiber.StatusInternalServerError,
					"message": "Failed to read uploaded file",
				},
			})
		}
		defer file.Close()

		table, err := dataset.ReadTable(file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    fiber.StatusBadRequest,
					"message": err.Error(),
				},
			})
		}

		return respondPlan(c, planningService, table)
	}
}

func respondPlan(c *fiber.Ctx, planningService *service.PlanningService, table domain.Table) error {
	outcome, err := planningService.Plan(c.UserContext(), table)
	if err != nil {
		statusCode := planErrorStatus(err)
		return c.Status(statusCode).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    statusCode,
				"message": err.Error(),
			},
		})
	}

	return c.Status(fiber.StatusOK).JSON(outcome)
}

// planErrorStatus folds planning errors onto HTTP statuses: bad tables are
// the client's fault, unbounded models mean the costs make no sense, and a
// solver timeout is reported as such rather than as a generic failure.
func planErrorStatus(err error) int {
	switch {
	case domain.IsSchemaError(err), errors.Is(err, domain.ErrEmptyInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnboundedModel):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, lp.ErrSolverTimeout):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func RequestSizeLimiter(maxBytes int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Request().Header.ContentLength() > maxBytes {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    fiber.StatusRequestEntityTooLarge,
					"message": "Request body too large",
				},
			})
		}
		return c.Next()
	}
}
