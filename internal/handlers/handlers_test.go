package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/learning-path/backend/internal/ai"
	"example.com/learning-path/backend/internal/auth"
	"example.com/learning-path/backend/internal/models"
	"example.com/learning-path/backend/internal/repository"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

type stubClient struct {
	response string
	err      error
	calls    int
}

func (s *stubClient) Complete(context.Context, string, string, float64, int) (string, error) {
	s.calls++
	return s.response, s.err
}

type stubCatalog struct {
	courses []models.Course
	err     error
}

func (s stubCatalog) All(context.Context) ([]models.Course, error) {
	return s.courses, s.err
}

func (s stubCatalog) Tags(context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []string{"Python", "SQL", "pandas"}, nil
}

type recordingLogger struct {
	mu   sync.Mutex
	logs []repository.AIRequestLog
}

func (r *recordingLogger) LogRequest(_ context.Context, log repository.AIRequestLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func testCourses() []models.Course {
	return []models.Course{
		{ID: 1, Title: "Python", Domain: "Data Science", Level: models.LevelBeginner, DurationHours: 20, Tags: []string{"python"}, PrereqIDs: []int{}},
		{ID: 2, Title: "SQL", Domain: "Data Science", Level: models.LevelBeginner, DurationHours: 15, Tags: []string{"sql"}, PrereqIDs: []int{}},
		{ID: 3, Title: "HTML", Domain: "Web Development", Level: models.LevelBeginner, DurationHours: 10, Tags: []string{"html"}, PrereqIDs: []int{}},
	}
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

func doRequest(t *testing.T, e *echo.Echo, method, path, body string, handler echo.HandlerFunc, setup ...func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for _, fn := range setup {
		fn(c)
	}

	require.NoError(t, handler(c))
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, newTestEcho(), http.MethodGet, "/health", "", Health)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"learning-path","version":"1.0"}`, rec.Body.String())
}

func TestExtractSuccess(t *testing.T) {
	client := &stubClient{response: `{"targetDomain":"Data Science","currentLevel":"Beginner","tags":["python","Rust"],"hoursPerWeek":8,"deadlineWeeks":10}`}
	logger := &recordingLogger{}
	handler := NewAIHandler(ai.NewService(client), stubCatalog{courses: testCourses()}, logger, nil, "groq", "test-model")

	rec := doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/ai/extract",
		`{"description":"I want to learn python for data","useCatalogTags":true}`, handler.Extract)

	require.Equal(t, http.StatusOK, rec.Code)

	var got ai.ExtractionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.Fallback)
	assert.Equal(t, []string{"Python"}, got.Tags)
	assert.Equal(t, 8, got.HoursPerWeek)

	require.Len(t, logger.logs, 1)
	assert.Equal(t, repository.RequestTypeExtraction, logger.logs[0].RequestType)
	assert.True(t, logger.logs[0].Success)
	assert.False(t, logger.logs[0].Fallback)
	assert.Equal(t, "test-model", logger.logs[0].Model)
}

// TestExtractFallback проверяет, что сбой модели не превращается в ошибку HTTP.
func TestExtractFallback(t *testing.T) {
	client := &stubClient{err: errors.New("connection refused")}
	logger := &recordingLogger{}
	handler := NewAIHandler(ai.NewService(client), stubCatalog{}, logger, nil, "groq", "test-model")

	rec := doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/ai/extract",
		`{"description":"I want to learn python for data science"}`, handler.Extract)

	require.Equal(t, http.StatusOK, rec.Code)

	var got ai.ExtractionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Fallback)
	assert.Equal(t, "Data Science", got.TargetDomain)
	assert.Equal(t, []string{"python"}, got.Tags)

	require.Len(t, logger.logs, 1)
	assert.False(t, logger.logs[0].Success)
	assert.True(t, logger.logs[0].Fallback)
	require.NotNil(t, logger.logs[0].ErrorKind)
	assert.Equal(t, "upstream_unavailable", *logger.logs[0].ErrorKind)
}

func TestExtractValidation(t *testing.T) {
	client := &stubClient{}
	handler := NewAIHandler(ai.NewService(client), stubCatalog{}, nil, nil, "groq", "test-model")

	rec := doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/ai/extract", `{"description":""}`, handler.Extract)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/ai/extract", `{"description":`, handler.Extract)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 0, client.calls)
}

func TestExtractCatalogTagsFailure(t *testing.T) {
	handler := NewAIHandler(ai.NewService(&stubClient{}), stubCatalog{err: errors.New("disk")}, nil, nil, "groq", "test-model")

	rec := doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/ai/extract",
		`{"description":"web","useCatalogTags":true}`, handler.Extract)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPlanSuccessWithCatalog(t *testing.T) {
	client := &stubClient{response: "Here you go:\n" + `{"steps":[{"step":1,"courseId":1,"hours":20,"note":"start"}],"reasoning":"basics first"}`}
	logger := &recordingLogger{}
	handler := NewAIHandler(ai.NewService(client), stubCatalog{courses: testCourses()}, logger, nil, "groq", "test-model")

	body := `{"profile":{"targetDomain":"Data Science","currentLevel":"Beginner","interests":["python"],"hoursPerWeek":10,"deadlineWeeks":12},"useCatalog":true}`
	rec := doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/ai/plan", body, handler.Plan, func(c echo.Context) {
		c.Set(auth.ContextUserIDKey, 42)
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Steps, 1)
	assert.Equal(t, 20, got.TotalHours)
	assert.Equal(t, "basics first", got.Reasoning)

	require.Len(t, logger.logs, 1)
	require.NotNil(t, logger.logs[0].UserID)
	assert.Equal(t, 42, *logger.logs[0].UserID)
	assert.Contains(t, logger.logs[0].Prompt, "Total Available Hours: 120")
}

func TestPlanInputError(t *testing.T) {
	client := &stubClient{response: `{"steps":[]}`}
	logger := &recordingLogger{}
	handler := NewAIHandler(ai.NewService(client), stubCatalog{}, logger, nil, "groq", "test-model")

	body := `{"profile":{"targetDomain":"Data Science","currentLevel":"Beginner","hoursPerWeek":10,"deadlineWeeks":12},"courses":[]}`
	rec := doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/ai/plan", body, handler.Plan)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var got GenerationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "input_error", got.Kind)
	assert.False(t, got.Retryable)
	assert.Equal(t, 0, client.calls)
	assert.Empty(t, logger.logs)
}

// TestPlanGenerationFailures проверяет, что у плана нет запасного варианта: клиент получает 502.
func TestPlanGenerationFailures(t *testing.T) {
	tests := []struct {
		name     string
		client   *stubClient
		wantKind string
	}{
		{"upstream", &stubClient{err: errors.New("timeout")}, "upstream_unavailable"},
		{"no structure", &stubClient{response: "sorry, no plan today"}, "no_structure_found"},
		{"malformed", &stubClient{response: `{"steps": [1, }`}, "malformed_structure"},
		{"invalid plan", &stubClient{response: `{"plan": []}`}, "invalid_plan_structure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			handler := NewAIHandler(ai.NewService(tt.client), stubCatalog{}, logger, nil, "groq", "test-model")

			courses, err := json.Marshal(testCourses())
			require.NoError(t, err)
			body := `{"profile":{"userId":5,"targetDomain":"Data Science","currentLevel":"Beginner","hoursPerWeek":10,"deadlineWeeks":12},"courses":` + string(courses) + `}`

			rec := doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/ai/plan", body, handler.Plan)
			require.Equal(t, http.StatusBadGateway, rec.Code)

			var got GenerationErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.True(t, got.Retryable)

			require.Len(t, logger.logs, 1)
			assert.False(t, logger.logs[0].Success)
			require.NotNil(t, logger.logs[0].UserID)
			assert.Equal(t, 5, *logger.logs[0].UserID)
		})
	}
}

func TestCoursesList(t *testing.T) {
	handler := NewCourseHandler(stubCatalog{courses: testCourses()})
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses?domain=data+science", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler.List(e.NewContext(req, rec)))

	require.Equal(t, http.StatusOK, rec.Code)

	var got CoursesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Total)
}

func TestCoursesGet(t *testing.T) {
	handler := NewCourseHandler(stubCatalog{courses: testCourses()})
	e := newTestEcho()

	tests := []struct {
		id         string
		wantStatus int
	}{
		{"2", http.StatusOK},
		{"99", http.StatusNotFound},
		{"abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)

			require.NoError(t, handler.Get(c))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCoursesTags(t *testing.T) {
	handler := NewCourseHandler(stubCatalog{courses: testCourses()})

	rec := doRequest(t, newTestEcho(), http.MethodGet, "/api/v1/tags", "", handler.Tags)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tags":["Python","SQL","pandas"]}`, rec.Body.String())
}

func TestRecommend(t *testing.T) {
	handler := NewRecommendationHandler(stubCatalog{courses: testCourses()})

	body := `{"profile":{"targetDomain":"Data Science","currentLevel":"Beginner","interests":["python"],"hoursPerWeek":5,"deadlineWeeks":4}}`
	rec := doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/recommendations", body, handler.Recommend)

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Steps, 1)
	assert.Equal(t, 1, got.Steps[0].CourseID)
	assert.Equal(t, 20, got.TotalHours)
}

func TestRecommendValidation(t *testing.T) {
	handler := NewRecommendationHandler(stubCatalog{courses: testCourses()})

	body := `{"profile":{"targetDomain":"Data Science","currentLevel":"Expert","hoursPerWeek":5,"deadlineWeeks":4}}`
	rec := doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/recommendations", body, handler.Recommend)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = `{"profile":{"targetDomain":"Data Science","currentLevel":"Beginner","hoursPerWeek":0,"deadlineWeeks":4}}`
	rec = doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/recommendations", body, handler.Recommend)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminMiddleware(t *testing.T) {
	mw := AdminMiddleware([]int{1})
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	tests := []struct {
		name       string
		userID     int
		wantStatus int
	}{
		{"anonymous", 0, http.StatusUnauthorized},
		{"not admin", 2, http.StatusForbidden},
		{"admin", 1, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, newTestEcho(), http.MethodGet, "/", "", mw(next), func(c echo.Context) {
				if tt.userID > 0 {
					c.Set(auth.ContextUserIDKey, tt.userID)
				}
			})
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestParsePagination(t *testing.T) {
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=10", nil)
	limit, offset, err := parsePagination(e.NewContext(req, httptest.NewRecorder()), 50, 200)
	require.NoError(t, err)
	assert.Equal(t, 200, limit)
	assert.Equal(t, 10, offset)

	req = httptest.NewRequest(http.MethodGet, "/?offset=-1", nil)
	_, _, err = parsePagination(e.NewContext(req, httptest.NewRecorder()), 50, 200)
	assert.Error(t, err)
}

func TestExportCSV(t *testing.T) {
	handler := NewExportHandler(stubCatalog{courses: testCourses()})

	body := `{"plan":{"steps":[{"step":1,"courseId":1,"hours":20,"note":"start"},{"step":2,"courseId":42,"hours":5,"note":"extra, optional"}],"totalHours":25}}`
	rec := doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/plans/export", body, handler.Export)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "step,course_id,course_title,domain,level,hours,cumulative_hours,note", lines[0])
	assert.Equal(t, "1,1,Python,Data Science,Beginner,20,20,start", lines[1])
	assert.Equal(t, `2,42,,,,5,25,"extra, optional"`, lines[2])
}

func TestExportValidation(t *testing.T) {
	handler := NewExportHandler(stubCatalog{courses: testCourses()})

	rec := doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/plans/export", `{"plan":{"steps":[]}}`, handler.Export)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := `{"plan":{"steps":[{"step":1,"courseId":1,"hours":20}]}}`
	rec = doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/plans/export?format=pdf", body, handler.Export)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, newTestEcho(), http.MethodPost, "/api/v1/plans/export?format=json", body, handler.Export)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".json")
}
