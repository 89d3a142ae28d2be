package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/coursebridge/api/model"
	"github.com/coursebridge/api/utils/cache"
	"github.com/coursebridge/api/utils/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EquivalencyRecord is one flat row of an equivalency feed: the source and
// target course, each identified by institution, department, code and title.
type EquivalencyRecord struct {
	SourceInstitution string `json:"source_institution" validate:"required"`
	TargetInstitution string `json:"target_institution" validate:"required"`
	SourceDepartment  string `json:"source_department" validate:"required"`
	TargetDepartment  string `json:"target_department" validate:"required"`
	SourceCode        string `json:"source_code" validate:"required"`
	SourceTitle       string `json:"source_title" validate:"required"`
	TargetCode        string `json:"target_code" validate:"required"`
	TargetTitle       string `json:"target_title" validate:"required"`
}

// normalize trims surrounding whitespace from every field, so a
// whitespace-only value counts as missing.
func (r *EquivalencyRecord) normalize() {
	r.SourceInstitution = strings.TrimSpace(r.SourceInstitution)
	r.TargetInstitution = strings.TrimSpace(r.TargetInstitution)
	r.SourceDepartment = strings.TrimSpace(r.SourceDepartment)
	r.TargetDepartment = strings.TrimSpace(r.TargetDepartment)
	r.SourceCode = strings.TrimSpace(r.SourceCode)
	r.SourceTitle = strings.TrimSpace(r.SourceTitle)
	r.TargetCode = strings.TrimSpace(r.TargetCode)
	r.TargetTitle = strings.TrimSpace(r.TargetTitle)
}

// IngestResult summarizes one ingest batch
type IngestResult struct {
	BatchID  string `json:"batch_id"`
	Accepted int    `json:"accepted"`
	Skipped  int    `json:"skipped"`
}

// IngestService consumes batches of equivalency records, populating the
// catalog and the equivalency graph through the catalog resolvers. A batch
// is one transaction: a storage failure or an aborted request rolls back
// the whole batch, while malformed records are skipped without aborting.
type IngestService struct {
	db        *gorm.DB
	catalog   *CatalogService
	validator *validation.Validator
	cache     *cache.RedisCache
}

// NewIngestService creates a new ingest service. The cache is optional and
// only used to invalidate equivalency reads after a successful batch.
func NewIngestService(db *gorm.DB, catalog *CatalogService, redisCache *cache.RedisCache) *IngestService {
	return &IngestService{
		db:        db,
		catalog:   catalog,
		validator: validation.NewValidator(),
		cache:     redisCache,
	}
}

// Ingest processes a batch of equivalency records. For each well-formed
// record the six referenced entities are resolved or created and the
// equivalency edge inserted, ignoring edges whose exact ordered pair
// already exists so re-ingesting the same feed is a no-op. Returns the
// number of accepted (non-skipped) records.
func (s *IngestService) Ingest(ctx context.Context, records []EquivalencyRecord) (*IngestResult, error) {
	result := &IngestResult{BatchID: uuid.NewString()}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range records {
			record := records[i]
			record.normalize()

			if err := s.validator.ValidateStruct(record); err != nil {
				missing := validation.MissingFields(err)
				log.Printf("[INGEST %s] Skipping row %d due to missing fields: %s",
					result.BatchID, i+1, strings.Join(missing, ", "))
				result.Skipped++
				continue
			}

			if err := s.ingestRecord(tx, record); err != nil {
				return err
			}
			result.Accepted++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingest batch %s: %w", result.BatchID, err)
	}

	// Equivalency reads may now be stale; drop them best-effort.
	if s.cache != nil {
		if err := s.cache.DeletePattern(ctx, "equivalents:*"); err != nil {
			log.Printf("[INGEST %s] Warning: failed to invalidate equivalency cache: %v", result.BatchID, err)
		}
	}

	return result, nil
}

func (s *IngestService) ingestRecord(tx *gorm.DB, record EquivalencyRecord) error {
	sourceInstitutionID, err := s.catalog.ResolveInstitution(tx, record.SourceInstitution)
	if err != nil {
		return fmt.Errorf("resolve source institution: %w", err)
	}
	targetInstitutionID, err := s.catalog.ResolveInstitution(tx, record.TargetInstitution)
	if err != nil {
		return fmt.Errorf("resolve target institution: %w", err)
	}

	sourceDepartmentID, err := s.catalog.ResolveDepartment(tx, record.SourceDepartment, sourceInstitutionID)
	if err != nil {
		return fmt.Errorf("resolve source department: %w", err)
	}
	targetDepartmentID, err := s.catalog.ResolveDepartment(tx, record.TargetDepartment, targetInstitutionID)
	if err != nil {
		return fmt.Errorf("resolve target department: %w", err)
	}

	sourceCourseID, err := s.catalog.ResolveCourse(tx, record.SourceCode, record.SourceTitle, sourceDepartmentID, sourceInstitutionID)
	if err != nil {
		return fmt.Errorf("resolve source course: %w", err)
	}
	targetCourseID, err := s.catalog.ResolveCourse(tx, record.TargetCode, record.TargetTitle, targetDepartmentID, targetInstitutionID)
	if err != nil {
		return fmt.Errorf("resolve target course: %w", err)
	}

	// The unique index covers the ordered pair only, so a reversed pair
	// from a later feed becomes a second row. Read paths compensate by
	// querying both directions.
	edge := model.CourseEquivalency{
		SourceCourseID: sourceCourseID,
		TargetCourseID: targetCourseID,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
		return fmt.Errorf("insert equivalency edge: %w", err)
	}
	return nil
}
