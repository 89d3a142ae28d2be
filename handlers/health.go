package handlers

import (
	"github.com/coursebridge/api/database"
	"github.com/coursebridge/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// HandleCheckHealth reports whether the service and its database are up
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return response.ServiceUnavailable(c, "Database unreachable")
	}
	return response.Success(c, fiber.Map{"status": "ok"})
}
