package plan

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/coursebridge/api/model"
	"github.com/coursebridge/api/services"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Institution{},
		&model.Department{},
		&model.Course{},
		&model.TransferPlan{},
	))

	require.NoError(t, db.Create(&model.Institution{Name: "College A"}).Error)
	require.NoError(t, db.Create(&model.Institution{Name: "University B"}).Error)

	handler := NewPlanHandler(services.NewPlanService(db))

	app := fiber.New()
	app.Post("/api/v1/plans", handler.CreatePlan)
	app.Get("/api/v1/plans/:code", handler.GetPlan)
	return app
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, body io.Reader) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.NewDecoder(body).Decode(&env))
	return env
}

func TestCreateAndGetPlan(t *testing.T) {
	app := setupTestApp(t)

	payload := `{
		"plan_name": "Fall Transfer",
		"source_institution_id": 1,
		"target_institution_id": 2,
		"selected_courses": [],
		"notes": "advisor approved"
	}`

	req := httptest.NewRequest("POST", "/api/v1/plans", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	env := decodeEnvelope(t, resp.Body)
	assert.True(t, env.Success)
	assert.Equal(t, `Plan "Fall Transfer" created successfully!`, env.Message)

	var created struct {
		Code     string `json:"code"`
		PlanName string `json:"plan_name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created.Code, services.PlanCodeLength)
	assert.Equal(t, "Fall Transfer", created.PlanName)

	req = httptest.NewRequest("GET", "/api/v1/plans/"+created.Code, nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env = decodeEnvelope(t, resp.Body)
	var fetched struct {
		Plan struct {
			Code              string          `json:"code"`
			PlanName          string          `json:"plan_name"`
			SourceInstitution string          `json:"source_institution"`
			TargetInstitution string          `json:"target_institution"`
			PlanData          json.RawMessage `json:"plan_data"`
		} `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, created.Code, fetched.Plan.Code)
	assert.Equal(t, "Fall Transfer", fetched.Plan.PlanName)
	assert.Equal(t, "College A", fetched.Plan.SourceInstitution)
	assert.Equal(t, "University B", fetched.Plan.TargetInstitution)

	// The raw submitted body survives, extra fields included
	assert.JSONEq(t, payload, string(fetched.Plan.PlanData))
}

func TestCreatePlanMissingField(t *testing.T) {
	app := setupTestApp(t)

	payload := `{
		"plan_name": "Fall Transfer",
		"source_institution_id": 1,
		"target_institution_id": 2
	}`

	req := httptest.NewRequest("POST", "/api/v1/plans", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	env := decodeEnvelope(t, resp.Body)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "Missing required field: selected_courses", env.Error.Message)
}

func TestGetPlanNotFound(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest("GET", "/api/v1/plans/ZZZZ9999", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	env := decodeEnvelope(t, resp.Body)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestGetPlanMalformedCode(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest("GET", "/api/v1/plans/short", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	env := decodeEnvelope(t, resp.Body)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}
