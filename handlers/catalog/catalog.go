package catalog

import (
	"log"
	"strconv"

	"github.com/coursebridge/api/services"
	"github.com/coursebridge/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the institution/department/course browsing reads
type CatalogHandler struct {
	catalogService *services.CatalogService
	planService    *services.PlanService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService, planService *services.PlanService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		planService:    planService,
	}
}

// ListInstitutions handles GET /api/v1/institutions.
// Expired transfer plans are swept opportunistically before the listing is
// served; a sweep failure never fails the read.
func (h *CatalogHandler) ListInstitutions(c *fiber.Ctx) error {
	if _, err := h.planService.SweepExpired(c.UserContext(), services.PlanRetention); err != nil {
		log.Printf("Warning: failed to sweep expired plans: %v", err)
	}

	institutions, err := h.catalogService.ListInstitutions(c.UserContext())
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch institutions")
	}
	return response.Success(c, institutions)
}

// ListDepartments handles GET /api/v1/departments?institution_id=
func (h *CatalogHandler) ListDepartments(c *fiber.Ctx) error {
	institutionID, err := strconv.ParseUint(c.Query("institution_id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "institution_id must be a numeric id")
	}

	departments, err := h.catalogService.ListDepartments(c.UserContext(), uint(institutionID))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch departments")
	}
	return response.Success(c, departments)
}

// ListCourses handles GET /api/v1/courses?department_id=
func (h *CatalogHandler) ListCourses(c *fiber.Ctx) error {
	departmentID, err := strconv.ParseUint(c.Query("department_id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "department_id must be a numeric id")
	}

	courses, err := h.catalogService.ListCourses(c.UserContext(), uint(departmentID))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}
	return response.Success(c, courses)
}
