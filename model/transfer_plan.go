package model

import (
	"time"

	"gorm.io/datatypes"
)

// TransferPlan is a named selection of courses shared via a short code.
// Plans are immutable once created and are removed only by the retention
// sweep. PlanData keeps the full submitted payload verbatim so older plans
// survive payload-schema changes.
type TransferPlan struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Code                string         `gorm:"type:varchar(8);not null;uniqueIndex" json:"code"`
	PlanName            string         `gorm:"type:varchar(255);not null" json:"plan_name"`
	SourceInstitutionID uint           `gorm:"not null" json:"source_institution_id"`
	TargetInstitutionID uint           `gorm:"not null" json:"target_institution_id"`
	SelectedCourses     datatypes.JSON `gorm:"not null" json:"selected_courses"`
	PlanData            datatypes.JSON `gorm:"not null" json:"plan_data"`
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`

	// Relationships
	SourceInstitution Institution `gorm:"foreignKey:SourceInstitutionID" json:"source_institution,omitempty"`
	TargetInstitution Institution `gorm:"foreignKey:TargetInstitutionID" json:"target_institution,omitempty"`
}
