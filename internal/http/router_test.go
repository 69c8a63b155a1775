package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	types "github.com/yungbote/ceustudio-backend/internal/domain"
	httpH "github.com/yungbote/ceustudio-backend/internal/http/handlers"
	httpMW "github.com/yungbote/ceustudio-backend/internal/http/middleware"
	"github.com/yungbote/ceustudio-backend/internal/modules/studio"
	"github.com/yungbote/ceustudio-backend/internal/platform/airtable"
	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/realtime"
	"github.com/yungbote/ceustudio-backend/internal/services"
)

// stubLearners serves a single learner and refuses everything else.
type stubLearners struct {
	learner *types.Learner
}

func (s *stubLearners) Login(context.Context, services.LoginInput) (*types.Learner, string, error) {
	return s.learner, "", nil
}

func (s *stubLearners) Get(_ context.Context, id uuid.UUID) (*types.Learner, error) {
	if id != s.learner.ID {
		return nil, apierr.NotFound("learner_not_found", "Learner not found")
	}
	return s.learner, nil
}

func (s *stubLearners) Completions(context.Context, uuid.UUID) ([]*types.CourseCompletion, error) {
	return nil, nil
}

func (s *stubLearners) AwardCredit(_ context.Context, _ uuid.UUID, _ studio.Session) (*types.Learner, error) {
	s.learner.CompleteCourse(studio.CourseTitle)
	return s.learner, nil
}

type stubAirtable struct {
	records []airtable.Record
}

func (s *stubAirtable) ListRecords(context.Context, airtable.ListOptions) (*airtable.RecordList, error) {
	return &airtable.RecordList{Records: s.records}, nil
}

func (s *stubAirtable) CreateRecord(_ context.Context, fields map[string]any) (*airtable.Record, error) {
	rec := airtable.Record{ID: "rec" + uuid.NewString()[:6], Fields: fields}
	s.records = append(s.records, rec)
	return &rec, nil
}

type testEnv struct {
	router  *gin.Engine
	token   string
	learner *types.Learner
	dbErr   error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	auth, err := services.NewAuthService(log, services.AuthConfig{
		JWTSecretKey:      "router-test-secret",
		AdminEmail:        "ops@example.com",
		AdminPasswordHash: string(hash),
	})
	require.NoError(t, err)

	learner := &types.Learner{ID: uuid.New(), Name: "Ada Architect", Email: "ada@example.com", AIANumber: "AIA-1"}
	learners := &stubLearners{learner: learner}
	token, err := auth.IssueLearnerToken(learner.ID, learner.Email)
	require.NoError(t, err)

	hub := realtime.NewSSEHub(log)
	emitter := &services.HubEmitter{Hub: hub}
	studioSvc := services.NewStudioService(log, learners, emitter)
	t.Cleanup(studioSvc.Close)
	ingestion := services.NewIngestionService(log, nil, emitter, time.Hour)
	t.Cleanup(ingestion.Close)
	catalog, err := services.NewCatalogService(log, "")
	require.NoError(t, err)
	certs, err := services.NewCertificateService(log, learners, nil, "")
	require.NoError(t, err)
	advisor := services.NewAdvisorService(log, nil, studioSvc, "")

	env := &testEnv{token: token, learner: learner}
	dbCheck := httpH.HealthCheck{Name: "database", Run: func(context.Context) error { return env.dbErr }}

	env.router = NewRouter(RouterConfig{
		Log:                 log,
		AuthMiddleware:      httpMW.NewAuthMiddleware(log, auth),
		HealthHandler:       httpH.NewHealthHandler(studioSvc, dbCheck),
		AuthHandler:         httpH.NewAuthHandler(learners),
		MeHandler:           httpH.NewMeHandler(learners, certs),
		StudioHandler:       httpH.NewStudioHandler(studioSvc, advisor),
		RealtimeHandler:     httpH.NewRealtimeHandler(log, hub),
		WaitlistHandler:     httpH.NewWaitlistHandler(services.NewWaitlistService(log, nil)),
		AdminHandler:        httpH.NewAdminHandler(services.NewAdminService(log, auth, &stubAirtable{records: []airtable.Record{{ID: "rec1"}}}), 3600, true),
		IntelligenceHandler: httpH.NewIntelligenceHandler(advisor),
		CourseHandler:       httpH.NewCourseHandler(catalog),
		IngestHandler:       httpH.NewIngestHandler(ingestion),
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, withAuth bool, cookies ...*nethttp.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if withAuth {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	env, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %s", rec.Body.String())
	code, _ := env["code"].(string)
	return code
}

func TestHealthcheck(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, nethttp.MethodGet, "/healthcheck", nil, false)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, map[string]any{"database": "ok"}, body["checks"])
	assert.EqualValues(t, 0, body["activeSessions"])

	rec = env.do(t, nethttp.MethodPost, "/api/studio/start", nil, true)
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	rec = env.do(t, nethttp.MethodGet, "/healthcheck", nil, false)
	assert.EqualValues(t, 1, decode(t, rec)["activeSessions"])

	env.dbErr = errors.New("connection refused")
	rec = env.do(t, nethttp.MethodGet, "/healthcheck", nil, false)
	assert.Equal(t, nethttp.StatusServiceUnavailable, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, map[string]any{"database": "connection refused"}, body["checks"])
}

func TestRequestIDsAreEchoed(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(nethttp.MethodGet, "/healthcheck", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/me", "/api/studio", "/api/studio/quiz"} {
		rec := env.do(t, nethttp.MethodGet, path, nil, false)
		assert.Equal(t, nethttp.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "unauthorized", errorCode(t, rec), path)
	}

	req := httptest.NewRequest(nethttp.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
}

func TestMeReturnsProfile(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, nethttp.MethodGet, "/api/me", nil, true)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	me := decode(t, rec)["me"].(map[string]any)
	assert.Equal(t, "Ada Architect", me["name"])
}

func TestStudioFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, nethttp.MethodPost, "/api/studio/advance", nil, true)
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
	assert.Equal(t, "no_active_session", errorCode(t, rec))

	rec = env.do(t, nethttp.MethodPost, "/api/studio/start", nil, true)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	state := decode(t, rec)
	assert.Equal(t, string(studio.ViewStudio), state["view"])
	assert.Equal(t, float64(1), state["session"].(map[string]any)["currentAct"])

	rec = env.do(t, nethttp.MethodPost, "/api/studio/advance", nil, true)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["accepted"], "objectives gate should hold act 1")

	rec = env.do(t, nethttp.MethodPatch, "/api/studio/context", map[string]any{"sector": "Healthcare"}, true)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "Healthcare", decode(t, rec)["session"].(map[string]any)["sector"])

	rec = env.do(t, nethttp.MethodPatch, "/api/studio/context", map[string]any{"sector": "Casino"}, true)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_value", errorCode(t, rec))

	rec = env.do(t, nethttp.MethodPost, "/api/studio/objectives", nil, true)
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec = env.do(t, nethttp.MethodPost, "/api/studio/advance", nil, true)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	nav := decode(t, rec)
	assert.Equal(t, true, nav["accepted"])
	assert.Equal(t, float64(2), nav["state"].(map[string]any)["session"].(map[string]any)["currentAct"])

	rec = env.do(t, nethttp.MethodPatch, "/api/studio/context", map[string]any{"sector": "Education"}, true)
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
	assert.Equal(t, "act_locked", errorCode(t, rec))

	rec = env.do(t, nethttp.MethodPatch, "/api/studio/performance", map[string]any{"durability": 140}, true)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errorCode(t, rec))

	rec = env.do(t, nethttp.MethodPost, "/api/studio/jump", map[string]any{"act": 5}, true)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["accepted"])

	rec = env.do(t, nethttp.MethodGet, "/api/studio/spec", nil, true)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "SECTION 06 67 00"))
	assert.Contains(t, rec.Body.String(), "Healthcare facility")

	rec = env.do(t, nethttp.MethodPost, "/api/studio/logout", nil, true)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	rec = env.do(t, nethttp.MethodGet, "/api/studio/quiz", nil, true)
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
}

func TestStudioAdvisorFallsBackWithoutModel(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, nethttp.StatusOK, env.do(t, nethttp.MethodPost, "/api/studio/start", nil, true).Code)

	rec := env.do(t, nethttp.MethodPost, "/api/studio/advisor", map[string]any{"prompt": "Which pattern suits a lobby?"}, true)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, services.SourceFallback, body["source"])
	assert.Equal(t, services.StudioCourseID, body["metadata"].(map[string]any)["courseId"])
}

func TestCertificateRequiresCompletion(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, nethttp.MethodGet, "/api/me/certificate", nil, true)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	assert.Equal(t, "certificate_not_found", errorCode(t, rec))

	env.learner.CompleteCourse(studio.CourseTitle)
	rec = env.do(t, nethttp.MethodGet, "/api/me/certificate", nil, true)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestWaitlistWithoutAirtableIsServerError(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, nethttp.MethodPost, "/api/waitlist", map[string]any{
		"firstName": "Ada", "lastName": "Lovelace", "company": "Engines", "email": "ada@example.com",
	}, false)
	assert.Equal(t, nethttp.StatusInternalServerError, rec.Code)
	msg := decode(t, rec)["error"].(map[string]any)["message"]
	assert.Equal(t, "Missing AIRTABLE_BASE_ID or AIRTABLE_TOKEN", msg)
}

func TestAdminCookieGuardsWaitlist(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, nethttp.MethodGet, "/api/admin/waitlist", nil, false)
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)

	rec = env.do(t, nethttp.MethodPost, "/api/admin/login", map[string]any{"email": "ops@example.com", "password": "wrong"}, false)
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)

	rec = env.do(t, nethttp.MethodPost, "/api/admin/login", map[string]any{"email": "OPS@example.com", "password": "hunter22"}, false)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var session *nethttp.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == httpMW.AdminSessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.True(t, session.Secure)
	assert.Equal(t, 3600, session.MaxAge)

	rec = env.do(t, nethttp.MethodGet, "/api/admin/waitlist", nil, false, session)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	records := decode(t, rec)["records"].([]any)
	assert.Len(t, records, 1)

	forged := &nethttp.Cookie{Name: httpMW.AdminSessionCookie, Value: "authenticated"}
	rec = env.do(t, nethttp.MethodGet, "/api/admin/waitlist", nil, false, forged)
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
}

func TestCoursesAndIngestion(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, nethttp.MethodGet, "/api/courses", nil, false)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(len(body["courses"].([]any))), body["count"])

	rec = env.do(t, nethttp.MethodGet, "/api/courses/course-ceu-001", nil, false)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	rec = env.do(t, nethttp.MethodGet, "/api/courses/nope", nil, false)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)

	rec = env.do(t, nethttp.MethodPost, "/api/courses", map[string]any{"title": "Acoustics"}, false)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	rec = env.do(t, nethttp.MethodPost, "/api/courses", map[string]any{
		"title": "Acoustics", "description": "Sound in space", "creditHours": 1.5,
	}, false)
	assert.Equal(t, nethttp.StatusAccepted, rec.Code)

	rec = env.do(t, nethttp.MethodPost, "/api/ingest/pdf", map[string]any{
		"courseId": "course-ceu-001", "fileName": "panel.pdf", "pdfUrl": "https://example.com/panel.pdf",
	}, false)
	require.Equal(t, nethttp.StatusAccepted, rec.Code)
	job := decode(t, rec)["job"].(map[string]any)
	assert.Equal(t, "queued", job["status"])

	rec = env.do(t, nethttp.MethodGet, "/api/ingest/pdf?jobId="+job["id"].(string), nil, false)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	rec = env.do(t, nethttp.MethodGet, "/api/ingest/pdf?jobId=missing", nil, false)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	rec = env.do(t, nethttp.MethodGet, "/api/ingest/pdf", nil, false)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["jobs"].([]any), 1)
}
