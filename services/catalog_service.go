package services

import (
	"context"
	"errors"

	"github.com/coursebridge/api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogService owns the institution/department/course catalog: ordered
// listings for browsing and the resolve-or-create operations the ingestion
// pipeline is built on.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new catalog service
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListInstitutions returns all institutions ordered by name
func (s *CatalogService) ListInstitutions(ctx context.Context) ([]model.Institution, error) {
	institutions := []model.Institution{}
	err := s.db.WithContext(ctx).Order("name").Find(&institutions).Error
	return institutions, err
}

// ListDepartments returns the departments of one institution ordered by name
func (s *CatalogService) ListDepartments(ctx context.Context, institutionID uint) ([]model.Department, error) {
	departments := []model.Department{}
	err := s.db.WithContext(ctx).
		Where("institution_id = ?", institutionID).
		Order("name").
		Find(&departments).Error
	return departments, err
}

// ListCourses returns the courses of one department ordered by code
func (s *CatalogService) ListCourses(ctx context.Context, departmentID uint) ([]model.Course, error) {
	courses := []model.Course{}
	err := s.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Order("code").
		Find(&courses).Error
	return courses, err
}

// ResolveInstitution returns the id of the institution with the given name,
// creating it if it does not exist yet.
func (s *CatalogService) ResolveInstitution(tx *gorm.DB, name string) (uint, error) {
	return resolveOrCreate(
		func() (uint, bool, error) {
			var institution model.Institution
			err := tx.Where("name = ?", name).Take(&institution).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, false, nil
			}
			if err != nil {
				return 0, false, err
			}
			return institution.ID, true, nil
		},
		func() (uint, bool, error) {
			institution := model.Institution{Name: name}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&institution)
			if res.Error != nil {
				return 0, false, res.Error
			}
			return institution.ID, res.RowsAffected == 1, nil
		},
	)
}

// ResolveDepartment returns the id of the department with the given name
// under one institution, creating it if it does not exist yet.
func (s *CatalogService) ResolveDepartment(tx *gorm.DB, name string, institutionID uint) (uint, error) {
	return resolveOrCreate(
		func() (uint, bool, error) {
			var department model.Department
			err := tx.Where("name = ? AND institution_id = ?", name, institutionID).Take(&department).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, false, nil
			}
			if err != nil {
				return 0, false, err
			}
			return department.ID, true, nil
		},
		func() (uint, bool, error) {
			department := model.Department{Name: name, InstitutionID: institutionID}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&department)
			if res.Error != nil {
				return 0, false, res.Error
			}
			return department.ID, res.RowsAffected == 1, nil
		},
	)
}

// ResolveCourse returns the id of the course with the given natural key
// (code, department, institution), creating it if it does not exist yet.
// The lookup deliberately ignores the title: the first submitted title for
// a key wins, later titles for the same key are discarded.
func (s *CatalogService) ResolveCourse(tx *gorm.DB, code, title string, departmentID, institutionID uint) (uint, error) {
	return resolveOrCreate(
		func() (uint, bool, error) {
			var course model.Course
			err := tx.Where("code = ? AND department_id = ? AND institution_id = ?",
				code, departmentID, institutionID).Take(&course).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, false, nil
			}
			if err != nil {
				return 0, false, err
			}
			return course.ID, true, nil
		},
		func() (uint, bool, error) {
			course := model.Course{
				Code:          code,
				Title:         title,
				DepartmentID:  departmentID,
				InstitutionID: institutionID,
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&course)
			if res.Error != nil {
				return 0, false, res.Error
			}
			return course.ID, res.RowsAffected == 1, nil
		},
	)
}

// resolveOrCreate is the shared upsert algorithm behind the typed resolvers:
// look up by natural key, insert with ON CONFLICT DO NOTHING when absent,
// and re-read when the insert lost a concurrent race. The unique index on
// the key is the arbiter; no application-level locking.
func resolveOrCreate(find func() (uint, bool, error), create func() (uint, bool, error)) (uint, error) {
	id, found, err := find()
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}

	id, created, err := create()
	if err != nil {
		return 0, err
	}
	if created {
		return id, nil
	}

	// A concurrent writer inserted the row between the lookup and the
	// insert, so it must be visible now.
	id, found, err = find()
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, gorm.ErrRecordNotFound
	}
	return id, nil
}
