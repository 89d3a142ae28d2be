package model

import (
	"time"
)

// Institution represents a school participating in transfer mapping.
// Institutions are created on first reference during ingestion and are
// never mutated or deleted afterwards.
type Institution struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Departments []Department `gorm:"foreignKey:InstitutionID" json:"departments,omitempty"`
}
