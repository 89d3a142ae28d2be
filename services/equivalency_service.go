package services

import (
	"context"
	"fmt"
	"time"

	"github.com/coursebridge/api/model"
	"github.com/coursebridge/api/utils/cache"
	"gorm.io/gorm"
)

// equivalentsOfQuery collects every course connected to the given course by
// an equivalency edge, regardless of which side of the edge it was stored
// on. Both directions are read so the undirected semantics hold even though
// storage is directed.
const equivalentsOfQuery = `
SELECT c.id, c.code, c.title, c.department_id, c.institution_id,
       i.name AS institution_name, d.name AS department_name
FROM course_equivalencies e
JOIN courses c ON c.id = e.target_course_id
JOIN institutions i ON i.id = c.institution_id
JOIN departments d ON d.id = c.department_id
WHERE e.source_course_id = ?
UNION
SELECT c.id, c.code, c.title, c.department_id, c.institution_id,
       i.name AS institution_name, d.name AS department_name
FROM course_equivalencies e
JOIN courses c ON c.id = e.source_course_id
JOIN institutions i ON i.id = c.institution_id
JOIN departments d ON d.id = c.department_id
WHERE e.target_course_id = ?
ORDER BY institution_name, department_name, code`

const equivalentsCacheTTL = 5 * time.Minute

// EquivalencyService answers "which courses transfer as this one"
// questions against the equivalency graph.
type EquivalencyService struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewEquivalencyService creates a new equivalency service. The cache is
// optional; without it every lookup goes to the database.
func NewEquivalencyService(db *gorm.DB, redisCache *cache.RedisCache) *EquivalencyService {
	return &EquivalencyService{db: db, cache: redisCache}
}

// EquivalentsOf returns every course equivalent to the given course,
// enriched with institution and department names and ordered by
// institution name, department name, then course code.
func (s *EquivalencyService) EquivalentsOf(ctx context.Context, courseID uint) ([]model.CourseDetail, error) {
	key := fmt.Sprintf("equivalents:%d", courseID)
	if s.cache != nil {
		cached := []model.CourseDetail{}
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	courses := []model.CourseDetail{}
	if err := s.db.WithContext(ctx).Raw(equivalentsOfQuery, courseID, courseID).Scan(&courses).Error; err != nil {
		return nil, fmt.Errorf("query equivalents of course %d: %w", courseID, err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, courses, equivalentsCacheTTL)
	}
	return courses, nil
}

// EquivalentsOfMany resolves equivalents for several courses in one call.
// Each entry is computed independently; an empty input returns an empty
// mapping without touching the store.
func (s *EquivalencyService) EquivalentsOfMany(ctx context.Context, courseIDs []uint) (map[uint][]model.CourseDetail, error) {
	equivalents := make(map[uint][]model.CourseDetail, len(courseIDs))
	if len(courseIDs) == 0 {
		return equivalents, nil
	}

	for _, courseID := range courseIDs {
		courses, err := s.EquivalentsOf(ctx, courseID)
		if err != nil {
			return nil, err
		}
		equivalents[courseID] = courses
	}
	return equivalents, nil
}
