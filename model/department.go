package model

import (
	"time"
)

// Department represents an academic department within an institution.
// The same department name may exist under different institutions, so the
// natural key is (name, institution_id).
type Department struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_department_key" json:"name"`
	InstitutionID uint      `gorm:"not null;uniqueIndex:idx_department_key" json:"institution_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Institution Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
	Courses     []Course    `gorm:"foreignKey:DepartmentID" json:"courses,omitempty"`
}
