package model

import (
	"time"
)

// Course represents a single course offered by a department.
// The natural key is (code, department_id, institution_id). Title is
// deliberately not part of the key: the first submitted title for a key
// wins and later titles are discarded.
type Course struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Code          string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_course_key" json:"code"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	DepartmentID  uint      `gorm:"not null;uniqueIndex:idx_course_key" json:"department_id"`
	InstitutionID uint      `gorm:"not null;uniqueIndex:idx_course_key" json:"institution_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Department  Department  `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Institution Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
}

// CourseEquivalency is a stored transfer-equivalency fact between two
// courses. Storage carries a source and a target side, but the relation is
// semantically undirected: read paths must treat (A,B) and (B,A) as the
// same fact. The unique index is on the ordered pair, so re-ingesting a
// pair reversed creates a second row.
type CourseEquivalency struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SourceCourseID uint      `gorm:"not null;uniqueIndex:idx_equivalency_pair" json:"source_course_id"`
	TargetCourseID uint      `gorm:"not null;uniqueIndex:idx_equivalency_pair" json:"target_course_id"`
	CreatedAt      time.Time `json:"created_at"`

	// Relationships
	SourceCourse Course `gorm:"foreignKey:SourceCourseID" json:"source_course,omitempty"`
	TargetCourse Course `gorm:"foreignKey:TargetCourseID" json:"target_course,omitempty"`
}

// CourseDetail is a course row joined with its institution and department
// names, the shape returned by equivalency lookups and plan expansion.
type CourseDetail struct {
	ID              uint   `json:"id"`
	Code            string `json:"code"`
	Title           string `json:"title"`
	DepartmentID    uint   `json:"department_id"`
	InstitutionID   uint   `json:"institution_id"`
	InstitutionName string `json:"institution_name"`
	DepartmentName  string `json:"department_name"`
}
