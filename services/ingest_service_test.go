package services

import (
	"context"
	"testing"

	"github.com/coursebridge/api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() EquivalencyRecord {
	return EquivalencyRecord{
		SourceInstitution: "College A",
		TargetInstitution: "University B",
		SourceDepartment:  "Computer Science",
		TargetDepartment:  "Computing",
		SourceCode:        "CS101",
		SourceTitle:       "Intro to Programming",
		TargetCode:        "CMP110",
		TargetTitle:       "Programming I",
	}
}

func TestIngestBuildsCatalog(t *testing.T) {
	db := openTestDB(t)
	svc := NewIngestService(db, NewCatalogService(db), nil)

	result, err := svc.Ingest(context.Background(), []EquivalencyRecord{testRecord()})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Accepted)
	assert.Equal(t, 0, result.Skipped)
	assert.NotEmpty(t, result.BatchID)

	assert.EqualValues(t, 2, countRows(t, db, &model.Institution{}))
	assert.EqualValues(t, 2, countRows(t, db, &model.Department{}))
	assert.EqualValues(t, 2, countRows(t, db, &model.Course{}))
	assert.EqualValues(t, 1, countRows(t, db, &model.CourseEquivalency{}))
}

func TestIngestReplayIsNoOp(t *testing.T) {
	db := openTestDB(t)
	svc := NewIngestService(db, NewCatalogService(db), nil)

	batch := []EquivalencyRecord{testRecord()}

	_, err := svc.Ingest(context.Background(), batch)
	require.NoError(t, err)
	result, err := svc.Ingest(context.Background(), batch)
	require.NoError(t, err)

	// The replay is counted as accepted but creates nothing new
	assert.Equal(t, 1, result.Accepted)
	assert.EqualValues(t, 2, countRows(t, db, &model.Institution{}))
	assert.EqualValues(t, 2, countRows(t, db, &model.Department{}))
	assert.EqualValues(t, 2, countRows(t, db, &model.Course{}))
	assert.EqualValues(t, 1, countRows(t, db, &model.CourseEquivalency{}))
}

func TestIngestSkipsMalformedRecords(t *testing.T) {
	db := openTestDB(t)
	svc := NewIngestService(db, NewCatalogService(db), nil)

	records := make([]EquivalencyRecord, 0, 5)
	for i, code := range []string{"CS101", "CS102", "CS103", "CS104"} {
		r := testRecord()
		r.SourceCode = code
		r.TargetCode = "CMP11" + string(rune('0'+i))
		records = append(records, r)
	}

	bad := testRecord()
	bad.SourceInstitution = "Orphan College"
	bad.SourceCode = "   " // whitespace-only counts as missing
	records = append(records, bad)

	result, err := svc.Ingest(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Accepted)
	assert.Equal(t, 1, result.Skipped)
	assert.EqualValues(t, 4, countRows(t, db, &model.CourseEquivalency{}))

	// The skipped record must not leave partial entities behind
	var orphans int64
	require.NoError(t, db.Model(&model.Institution{}).Where("name = ?", "Orphan College").Count(&orphans).Error)
	assert.EqualValues(t, 0, orphans)
}

func TestIngestReversedPairStoresSecondEdge(t *testing.T) {
	db := openTestDB(t)
	svc := NewIngestService(db, NewCatalogService(db), nil)

	forward := testRecord()
	reversed := EquivalencyRecord{
		SourceInstitution: forward.TargetInstitution,
		TargetInstitution: forward.SourceInstitution,
		SourceDepartment:  forward.TargetDepartment,
		TargetDepartment:  forward.SourceDepartment,
		SourceCode:        forward.TargetCode,
		SourceTitle:       forward.TargetTitle,
		TargetCode:        forward.SourceCode,
		TargetTitle:       forward.SourceTitle,
	}

	_, err := svc.Ingest(context.Background(), []EquivalencyRecord{forward})
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), []EquivalencyRecord{reversed})
	require.NoError(t, err)

	// Uniqueness covers the ordered pair, so the reversed feed adds a row;
	// reads still see a single undirected relationship
	assert.EqualValues(t, 2, countRows(t, db, &model.CourseEquivalency{}))
	assert.EqualValues(t, 2, countRows(t, db, &model.Course{}))
}

func TestIngestSelfEquivalency(t *testing.T) {
	db := openTestDB(t)
	svc := NewIngestService(db, NewCatalogService(db), nil)

	r := testRecord()
	r.TargetInstitution = r.SourceInstitution
	r.TargetDepartment = r.SourceDepartment
	r.TargetCode = r.SourceCode
	r.TargetTitle = r.SourceTitle

	result, err := svc.Ingest(context.Background(), []EquivalencyRecord{r})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Accepted)
	assert.EqualValues(t, 1, countRows(t, db, &model.Course{}))

	var edge model.CourseEquivalency
	require.NoError(t, db.First(&edge).Error)
	assert.Equal(t, edge.SourceCourseID, edge.TargetCourseID)
}
