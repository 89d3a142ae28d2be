package services

import (
	"context"
	"testing"

	"github.com/coursebridge/api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedCourse creates the full institution/department/course chain and
// returns the course id.
func seedCourse(t *testing.T, db *gorm.DB, institution, department, code, title string) uint {
	t.Helper()

	catalog := NewCatalogService(db)
	instID, err := catalog.ResolveInstitution(db, institution)
	require.NoError(t, err)
	deptID, err := catalog.ResolveDepartment(db, department, instID)
	require.NoError(t, err)
	courseID, err := catalog.ResolveCourse(db, code, title, deptID, instID)
	require.NoError(t, err)
	return courseID
}

func seedEdge(t *testing.T, db *gorm.DB, sourceID, targetID uint) {
	t.Helper()
	require.NoError(t, db.Create(&model.CourseEquivalency{
		SourceCourseID: sourceID,
		TargetCourseID: targetID,
	}).Error)
}

func TestEquivalentsOfIsUndirected(t *testing.T) {
	db := openTestDB(t)
	svc := NewEquivalencyService(db, nil)

	a := seedCourse(t, db, "College A", "Computer Science", "CS101", "Intro to Programming")
	b := seedCourse(t, db, "University B", "Computing", "CMP110", "Programming I")
	seedEdge(t, db, a, b)

	fromA, err := svc.EquivalentsOf(context.Background(), a)
	require.NoError(t, err)
	require.Len(t, fromA, 1)
	assert.Equal(t, b, fromA[0].ID)
	assert.Equal(t, "University B", fromA[0].InstitutionName)
	assert.Equal(t, "Computing", fromA[0].DepartmentName)

	// Stored direction does not matter for reads
	fromB, err := svc.EquivalentsOf(context.Background(), b)
	require.NoError(t, err)
	require.Len(t, fromB, 1)
	assert.Equal(t, a, fromB[0].ID)
}

func TestEquivalentsOfOrdering(t *testing.T) {
	db := openTestDB(t)
	svc := NewEquivalencyService(db, nil)

	hub := seedCourse(t, db, "College A", "Computer Science", "CS101", "Intro to Programming")
	z := seedCourse(t, db, "Zenith College", "Computing", "CMP110", "Programming I")
	m2 := seedCourse(t, db, "Midland State", "Software", "SW200", "Programming Basics")
	m1 := seedCourse(t, db, "Midland State", "Computing", "CS150", "Programming")
	seedEdge(t, db, hub, z)
	seedEdge(t, db, m2, hub)
	seedEdge(t, db, hub, m1)

	courses, err := svc.EquivalentsOf(context.Background(), hub)
	require.NoError(t, err)
	require.Len(t, courses, 3)

	// institution name, then department name, then code
	assert.Equal(t, m1, courses[0].ID)
	assert.Equal(t, m2, courses[1].ID)
	assert.Equal(t, z, courses[2].ID)
}

func TestEquivalentsOfNoEdges(t *testing.T) {
	db := openTestDB(t)
	svc := NewEquivalencyService(db, nil)

	lone := seedCourse(t, db, "College A", "Computer Science", "CS101", "Intro to Programming")

	courses, err := svc.EquivalentsOf(context.Background(), lone)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestEquivalentsOfManyIndependentEntries(t *testing.T) {
	db := openTestDB(t)
	svc := NewEquivalencyService(db, nil)

	a := seedCourse(t, db, "College A", "Computer Science", "CS101", "Intro to Programming")
	b := seedCourse(t, db, "University B", "Computing", "CMP110", "Programming I")
	c := seedCourse(t, db, "Midland State", "Computing", "CS150", "Programming")
	seedEdge(t, db, a, b)

	equivalents, err := svc.EquivalentsOfMany(context.Background(), []uint{a, c})
	require.NoError(t, err)
	require.Len(t, equivalents, 2)

	require.Len(t, equivalents[a], 1)
	assert.Equal(t, b, equivalents[a][0].ID)
	assert.Empty(t, equivalents[c])
}

func TestEquivalentsOfManyEmptyInput(t *testing.T) {
	db := openTestDB(t)
	svc := NewEquivalencyService(db, nil)

	equivalents, err := svc.EquivalentsOfMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, equivalents)
}
