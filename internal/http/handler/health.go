package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck reports the active backend and, when a database is configured, its reachability.
func HealthCheck(backend string, storageConfigured bool, db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		database := "disabled"
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
			database = "up"
		}
		return c.JSON(fiber.Map{
			"status":            "healthy",
			"timestamp":         time.Now().UTC().Format(time.RFC3339),
			"backend":           backend,
			"storageConfigured": storageConfigured,
			"database":          database,
		})
	}
}

// LivenessProbe answers 200 as long as the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
