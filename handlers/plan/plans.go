package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/coursebridge/api/services"
	"github.com/coursebridge/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// PlanHandler serves transfer plan creation and retrieval
type PlanHandler struct {
	service *services.PlanService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(service *services.PlanService) *PlanHandler {
	return &PlanHandler{service: service}
}

// CreatePlanRequest represents the request body for creating a plan. Extra
// fields are not modeled here; the raw body is stored verbatim alongside
// the structured fields.
type CreatePlanRequest struct {
	PlanName            string `json:"plan_name"`
	SourceInstitutionID uint   `json:"source_institution_id"`
	TargetInstitutionID uint   `json:"target_institution_id"`
	SelectedCourses     []uint `json:"selected_courses"`
}

// CreatePlan handles POST /api/v1/plans
func (h *PlanHandler) CreatePlan(c *fiber.Ctx) error {
	body := c.Body()

	var req CreatePlanRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Fiber reuses the request buffer, copy before it leaves the handler
	payload := make(json.RawMessage, len(body))
	copy(payload, body)

	created, err := h.service.CreatePlan(c.UserContext(), services.CreatePlanInput{
		PlanName:            req.PlanName,
		SourceInstitutionID: req.SourceInstitutionID,
		TargetInstitutionID: req.TargetInstitutionID,
		SelectedCourses:     req.SelectedCourses,
		Payload:             payload,
	})
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return response.ValidationError(c, validationErr.Error())
		}
		log.Printf("Failed to create plan: %v", err)
		return response.InternalServerError(c, "Failed to create plan")
	}

	return response.Created(c,
		fmt.Sprintf("Plan %q created successfully!", created.PlanName),
		fiber.Map{
			"code":      created.Code,
			"plan_name": created.PlanName,
		})
}

// GetPlan handles GET /api/v1/plans/:code. The code is matched
// case-insensitively.
func (h *PlanHandler) GetPlan(c *fiber.Ctx) error {
	detail, err := h.service.GetPlan(c.UserContext(), c.Params("code"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidPlanCode) {
			return response.BadRequest(c, "Plan code must be 8 letters or digits")
		}
		if errors.Is(err, services.ErrPlanNotFound) {
			return response.NotFound(c, "Plan not found")
		}
		log.Printf("Failed to retrieve plan: %v", err)
		return response.InternalServerError(c, "Failed to retrieve plan")
	}

	return response.Success(c, fiber.Map{"plan": detail})
}
