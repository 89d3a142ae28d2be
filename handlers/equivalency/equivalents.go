package equivalency

import (
	"strconv"

	"github.com/coursebridge/api/services"
	"github.com/coursebridge/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// EquivalencyHandler serves equivalency lookups
type EquivalencyHandler struct {
	service *services.EquivalencyService
}

// NewEquivalencyHandler creates a new equivalency handler
func NewEquivalencyHandler(service *services.EquivalencyService) *EquivalencyHandler {
	return &EquivalencyHandler{service: service}
}

// SearchEquivalentsRequest represents the request body for the batch lookup
type SearchEquivalentsRequest struct {
	CourseIDs []uint `json:"course_ids"`
}

// GetEquivalents handles GET /api/v1/equivalents?course_id=
func (h *EquivalencyHandler) GetEquivalents(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Query("course_id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "course_id must be a numeric id")
	}

	courses, err := h.service.EquivalentsOf(c.UserContext(), uint(courseID))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch equivalents")
	}
	return response.Success(c, courses)
}

// SearchEquivalents handles POST /api/v1/equivalents/search, resolving
// equivalents for several courses in one call
func (h *EquivalencyHandler) SearchEquivalents(c *fiber.Ctx) error {
	var req SearchEquivalentsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	equivalents, err := h.service.EquivalentsOfMany(c.UserContext(), req.CourseIDs)
	if err != nil {
		return response.InternalServerError(c, "Failed to search equivalents")
	}
	return response.Success(c, fiber.Map{"equivalents": equivalents})
}
