package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coursebridge/api/model"
	"github.com/coursebridge/api/utils/crypto"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// PlanCodeLength is the length of the shareable plan code
	PlanCodeLength = 8

	// PlanRetention is how long a plan is kept before the sweep removes it
	PlanRetention = 365 * 24 * time.Hour

	// maxCodeAttempts bounds the collision retry loop. With 36^8 possible
	// codes this is only ever hit when the random source is broken.
	maxCodeAttempts = 25
)

// CreatePlanInput carries the fields of a create-plan request. Payload is
// the full submitted body, stored verbatim so the plan round-trips even if
// the request schema grows fields this service knows nothing about.
type CreatePlanInput struct {
	PlanName            string
	SourceInstitutionID uint
	TargetInstitutionID uint
	SelectedCourses     []uint
	Payload             json.RawMessage
}

// PlanDetail is a stored plan expanded for presentation: institutions
// named, selected course ids joined back into full course records.
type PlanDetail struct {
	Code              string               `json:"code"`
	PlanName          string               `json:"plan_name"`
	SourceInstitution string               `json:"source_institution"`
	TargetInstitution string               `json:"target_institution"`
	CreatedAt         time.Time            `json:"created_at"`
	SelectedCourses   []model.CourseDetail `json:"selected_courses"`
	PlanData          json.RawMessage      `json:"plan_data"`
}

// PlanService issues plan codes and persists, retrieves and retires
// transfer plans.
type PlanService struct {
	db *gorm.DB

	// genCode is swappable in tests to force collisions
	genCode func(length int) (string, error)
}

// NewPlanService creates a new plan service
func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{
		db:      db,
		genCode: crypto.GenerateCode,
	}
}

// CreatePlan validates the input, issues a unique 8-character code and
// persists the plan under it. A code collision with a concurrently created
// plan is absorbed by retrying with a fresh code; it is never surfaced.
func (s *PlanService) CreatePlan(ctx context.Context, in CreatePlanInput) (*model.TransferPlan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	selected, err := json.Marshal(in.SelectedCourses)
	if err != nil {
		return nil, fmt.Errorf("serialize selected courses: %w", err)
	}

	payload := in.Payload
	if len(payload) == 0 {
		// Callers that bypass HTTP (the import CLI, tests) may not carry a
		// raw body; fall back to the structured fields.
		payload, err = json.Marshal(map[string]interface{}{
			"plan_name":             in.PlanName,
			"source_institution_id": in.SourceInstitutionID,
			"target_institution_id": in.TargetInstitutionID,
			"selected_courses":      in.SelectedCourses,
		})
		if err != nil {
			return nil, fmt.Errorf("serialize plan payload: %w", err)
		}
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.genCode(PlanCodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate plan code: %w", err)
		}

		plan := model.TransferPlan{
			Code:                code,
			PlanName:            in.PlanName,
			SourceInstitutionID: in.SourceInstitutionID,
			TargetInstitutionID: in.TargetInstitutionID,
			SelectedCourses:     selected,
			PlanData:            datatypes.JSON(payload),
		}

		// The unique index on code decides races between concurrent
		// creators; losing just means another spin with a fresh code.
		res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&plan)
		if res.Error != nil {
			return nil, fmt.Errorf("store plan: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			return &plan, nil
		}
	}

	return nil, fmt.Errorf("could not allocate a unique plan code after %d attempts", maxCodeAttempts)
}

func (in *CreatePlanInput) validate() error {
	if strings.TrimSpace(in.PlanName) == "" {
		return &ValidationError{Field: "plan_name"}
	}
	if in.SourceInstitutionID == 0 {
		return &ValidationError{Field: "source_institution_id"}
	}
	if in.TargetInstitutionID == 0 {
		return &ValidationError{Field: "target_institution_id"}
	}
	// A present-but-empty selection is allowed; only an absent field is
	// rejected. JSON decoding keeps the distinction (nil vs empty slice).
	if in.SelectedCourses == nil {
		return &ValidationError{Field: "selected_courses"}
	}
	return nil
}

// planRow is a TransferPlan joined with both institution names
type planRow struct {
	model.TransferPlan
	SourceInstitutionName string
	TargetInstitutionName string
}

// GetPlan looks a plan up by its code, case-insensitively, and expands the
// selected course ids into full course records in their submitted order.
// Ids that no longer resolve to a course are silently dropped.
func (s *PlanService) GetPlan(ctx context.Context, code string) (*PlanDetail, error) {
	code, err := NormalizePlanCode(code)
	if err != nil {
		return nil, err
	}

	var row planRow
	err = s.db.WithContext(ctx).
		Table("transfer_plans").
		Select("transfer_plans.*, si.name AS source_institution_name, ti.name AS target_institution_name").
		Joins("JOIN institutions si ON si.id = transfer_plans.source_institution_id").
		Joins("JOIN institutions ti ON ti.id = transfer_plans.target_institution_id").
		Where("transfer_plans.code = ?", code).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch plan %s: %w", code, err)
	}

	var selectedIDs []uint
	if err := json.Unmarshal(row.SelectedCourses, &selectedIDs); err != nil {
		return nil, fmt.Errorf("decode selected courses of plan %s: %w", code, err)
	}

	selected := make([]model.CourseDetail, 0, len(selectedIDs))
	for _, courseID := range selectedIDs {
		courses := []model.CourseDetail{}
		err := s.db.WithContext(ctx).Raw(`
SELECT c.id, c.code, c.title, c.department_id, c.institution_id,
       i.name AS institution_name, d.name AS department_name
FROM courses c
JOIN institutions i ON i.id = c.institution_id
JOIN departments d ON d.id = c.department_id
WHERE c.id = ?`, courseID).Scan(&courses).Error
		if err != nil {
			return nil, fmt.Errorf("expand course %d of plan %s: %w", courseID, code, err)
		}
		if len(courses) == 0 {
			// dangling reference, the course was never created or is gone
			continue
		}
		selected = append(selected, courses[0])
	}

	return &PlanDetail{
		Code:              row.Code,
		PlanName:          row.PlanName,
		SourceInstitution: row.SourceInstitutionName,
		TargetInstitution: row.TargetInstitutionName,
		CreatedAt:         row.CreatedAt,
		SelectedCourses:   selected,
		PlanData:          json.RawMessage(row.PlanData),
	}, nil
}

// SweepExpired deletes every plan created before now minus the retention
// window and reports how many were removed. It is invoked both from the
// institutions listing (the original opportunistic behavior) and from the
// daily cron job.
func (s *PlanService) SweepExpired(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.TransferPlan{})
	if res.Error != nil {
		return 0, fmt.Errorf("sweep expired plans: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// NormalizePlanCode upper-cases a submitted code and rejects anything that
// cannot be a plan code, so lookups are case-insensitive and a malformed
// code is distinguishable from a missing plan.
func NormalizePlanCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != PlanCodeLength {
		return "", ErrInvalidPlanCode
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", ErrInvalidPlanCode
		}
	}
	return code, nil
}
