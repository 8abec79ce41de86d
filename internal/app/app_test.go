package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobboard_backend/database/dbtest"
	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/config"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/notifications"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/storage"
	"jobboard_backend/internal/throttle"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	broker *notifications.MemoryBroker
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.Configure("test-secret", time.Hour)

	cfg := config.Default()
	cfg.Server.BaseURL = "http://testserver"
	cfg.Storage.BasePath = t.TempDir()
	cfg.Throttle.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	db := dbtest.New(t)
	broker := notifications.NewMemoryBroker(64)
	t.Cleanup(func() { _ = broker.Close() })

	store, err := storage.NewLocalStorage(storage.Config{BasePath: cfg.Storage.BasePath, BaseURL: cfg.Storage.BaseURL})
	require.NoError(t, err)

	svc := services.NewServiceContainer(services.Dependencies{
		Broker:  broker,
		Storage: store,
		Uploads: services.UploadPolicy{
			MaxSize:     cfg.Upload.MaxSize,
			ResumeTypes: cfg.Upload.ResumeTypes,
			ImageTypes:  cfg.Upload.ImageTypes,
		},
		RefreshTTL: cfg.JWT.RefreshTTL,
		PageSize:   cfg.Pagination.PageSize,
	})

	var limiter *throttle.Limiter
	if cfg.Throttle.Enabled {
		limiter = throttle.NewLimiter(throttle.NewMemoryStore())
	}

	router, err := SetupRouter(RouterDeps{
		Config:   cfg,
		DB:       db,
		Services: svc,
		Storage:  store,
		Limiter:  limiter,
	})
	require.NoError(t, err)

	return &testServer{t: t, router: router, db: db, broker: broker}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) tokenFor(u *models.User) string {
	s.t.Helper()
	token, err := auth.GenerateToken(u.ID, string(u.UserType), u.IsStaff)
	require.NoError(s.t, err)
	return token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, rec.Body.String())
	return errObj["code"].(string)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/api/health/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{
		"status":  "ok",
		"version": "v1",
		"message": "Job Board API is running",
	}, decode(t, rec))

	rec = s.do(http.MethodGet, "/api/v1/health/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"status": "ok"}, decode(t, rec))
}

func TestUnknownRouteListsEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/nowhere", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "API endpoint not found", body["error"])
	assert.Len(t, body["available_endpoints"], 4)
}

func TestSchemaIsServed(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/api/schema/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Job Board API")
	assert.Contains(t, rec.Body.String(), "/api/v1/applications/{id}/update_status/")
}

func TestHiringFlowOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)

	register := func(email, userType string) {
		rec := s.do(http.MethodPost, "/api/v1/users/", "", map[string]string{
			"email":      email,
			"password":   "long-enough-1",
			"user_type":  userType,
			"first_name": "First",
			"last_name":  "Last",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, true, decode(t, rec)["is_active"])
	}
	login := func(email string) string {
		rec := s.do(http.MethodPost, "/api/token/", "", map[string]string{"email": email, "password": "long-enough-1"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode(t, rec)["access"].(string)
	}

	register("boss@acme.test", "employer")
	register("dev@mail.test", "candidate")
	employer := login("boss@acme.test")
	candidate := login("dev@mail.test")

	rec := s.do(http.MethodPost, "/api/v1/companies/", employer, map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	companyID := decode(t, rec)["id"].(string)

	rec = s.do(http.MethodPost, "/api/v1/jobs/", candidate, map[string]interface{}{
		"title": "Go Developer", "job_type": "FT", "description": "Build APIs",
		"location": "Remote", "salary": 90000, "company": companyID,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/jobs/", employer, map[string]interface{}{
		"title": "Go Developer", "job_type": "FT", "description": "Build APIs",
		"location": "Remote", "salary": 90000, "company": companyID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	job := decode(t, rec)
	jobID := job["id"].(string)
	assert.Equal(t, "90000.00", job["salary"])
	assert.Equal(t, "Full-time", job["job_type_display"])

	rec = s.do(http.MethodPost, "/api/v1/applications/", candidate, map[string]string{"job": jobID, "cover_letter": "Hire me"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	app := decode(t, rec)
	appID := app["id"].(string)
	assert.Equal(t, "APP", app["status"])

	rec = s.do(http.MethodPost, "/api/v1/applications/", candidate, map[string]string{"job": jobID})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/applications/"+appID+"/update_status/", employer, map[string]string{"status": "REV"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "REV", decode(t, rec)["status"])

	rec = s.do(http.MethodPost, "/api/v1/applications/"+appID+"/update_status/", employer, map[string]string{"status": "XYZ"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/applications/", employer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	assert.EqualValues(t, 1, page["count"])
	assert.Nil(t, page["next"])
	assert.Nil(t, page["previous"])

	rec = s.do(http.MethodGet, "/api/v1/applications/my_applications/", employer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/jobs/"+jobID+"/applications/", employer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Confirmation, employer notice and the status change.
	assert.Equal(t, 3, s.broker.Len())
}

func TestAuthenticationErrors(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/api/v1/applications/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/jobs/", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	user := dbtest.CreateUser(t, s.db, "jane@example.com", models.UserTypeCandidate)
	rec = s.do(http.MethodPost, "/api/token/verify/", "", map[string]string{"token": s.tokenFor(user)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{}", rec.Body.String())

	rec = s.do(http.MethodPost, "/api/token/", "", map[string]string{"email": "jane@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJobListFilters(t *testing.T) {
	s := newTestServer(t, nil)

	company := dbtest.CreateCompany(t, s.db, "Globex")
	employer := dbtest.CreateEmployer(t, s.db, "hr@globex.test", company)
	dbtest.CreateJob(t, s.db, "Junior", employer, company, dbtest.WithSalary(40000))
	dbtest.CreateJob(t, s.db, "Senior", employer, company, dbtest.WithSalary(120000), dbtest.WithLocation("Berlin"))
	dbtest.CreateJob(t, s.db, "Hidden", employer, company, dbtest.WithSalary(150000), dbtest.Inactive())

	list := func(path, token string) []interface{} {
		rec := s.do(http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var items []interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		return items
	}

	assert.Len(t, list("/api/v1/jobs/", ""), 2)
	assert.Len(t, list("/api/v1/jobs/?salary__gte=100000", ""), 1)
	assert.Len(t, list("/api/v1/jobs/?salary_min=100000&salary_max=130000", ""), 1)
	assert.Len(t, list("/api/v1/jobs/?location=berl", ""), 1)
	assert.Len(t, list("/api/v1/jobs/?company__name=glob", ""), 2)
	assert.Len(t, list("/api/v1/jobs/", s.tokenFor(employer)), 3)
	assert.Len(t, list("/api/v1/jobs/?is_active=False", s.tokenFor(employer)), 1)
	assert.Len(t, list("/api/v1/jobs/?is_active=1", s.tokenFor(employer)), 2)

	rec := s.do(http.MethodGet, "/api/v1/jobs/?is_active=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/jobs/?job_type=XX", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, rec))
}

func TestJobUpdateRejectsBlankTitle(t *testing.T) {
	s := newTestServer(t, nil)

	company := dbtest.CreateCompany(t, s.db, "Initech")
	employer := dbtest.CreateEmployer(t, s.db, "hr@initech.test", company)
	job := dbtest.CreateJob(t, s.db, "Backend Dev", employer, company)
	path := "/api/v1/jobs/" + job.ID + "/"

	rec := s.do(http.MethodPatch, path, s.tokenFor(employer), map[string]interface{}{"title": "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	errObj := decode(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_FAILED", errObj["code"])
	assert.Contains(t, errObj["details"], "title")

	var stored models.Job
	require.NoError(t, s.db.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, "Backend Dev", stored.Title)

	rec = s.do(http.MethodPatch, path, s.tokenFor(employer), map[string]interface{}{"title": "  Go Dev  "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Go Dev", decode(t, rec)["title"])
}

func TestPaginationLinks(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Pagination.PageSize = 2
	})

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		dbtest.CreateCompany(t, s.db, name)
	}

	rec := s.do(http.MethodGet, "/api/v1/companies/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	assert.EqualValues(t, 3, page["count"])
	assert.Equal(t, "http://testserver/api/v1/companies/?page=2", page["next"])
	assert.Nil(t, page["previous"])
	assert.Len(t, page["results"], 2)

	rec = s.do(http.MethodGet, "/api/v1/companies/?page=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode(t, rec)
	assert.Nil(t, page["next"])
	assert.Equal(t, "http://testserver/api/v1/companies/", page["previous"])
	assert.Len(t, page["results"], 1)
}

func TestAnonymousThrottle(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Throttle.Enabled = true
		cfg.Throttle.AnonRate = "2/minute"
	})

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/health/", "", nil).Code)
	}

	rec := s.do(http.MethodGet, "/api/health/", "", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", errorCode(t, rec))
}

func TestUserDeletionThrottle(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Throttle.Enabled = true
		cfg.Throttle.DeleteRate = "1/hour"
	})

	admin := dbtest.CreateAdmin(t, s.db, "root@example.com")
	first := dbtest.CreateUser(t, s.db, "one@example.com", models.UserTypeCandidate)
	second := dbtest.CreateUser(t, s.db, "two@example.com", models.UserTypeCandidate)
	token := s.tokenFor(admin)

	rec := s.do(http.MethodDelete, "/api/v1/users/"+first.ID+"/", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(http.MethodDelete, "/api/v1/users/"+second.ID+"/", token, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Reads are not counted against the deletion budget.
	rec = s.do(http.MethodGet, "/api/v1/users/"+second.ID+"/", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResumeUploadIsServed(t *testing.T) {
	s := newTestServer(t, nil)

	user := dbtest.CreateUser(t, s.db, "cv@example.com", models.UserTypeCandidate)
	content := []byte("%PDF-1.4\n% resume\n")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "cv.pdf")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/me/resume/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.tokenFor(user))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resumeURL, _ := decode(t, rec)["resume_url"].(string)
	require.True(t, strings.HasPrefix(resumeURL, "/media/resumes/"), resumeURL)

	rec = s.do(http.MethodGet, resumeURL, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, content, rec.Body.Bytes())
}

func TestUploadWithoutFile(t *testing.T) {
	s := newTestServer(t, nil)
	user := dbtest.CreateUser(t, s.db, "nofile@example.com", models.UserTypeCandidate)

	rec := s.do(http.MethodPut, "/api/v1/users/me/resume/", s.tokenFor(user), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShutdownRecordsUndeliveredTasks(t *testing.T) {
	db := dbtest.New(t)
	broker := notifications.NewMemoryBroker(4)
	t.Cleanup(func() { _ = broker.Close() })
	ctx := context.Background()

	queued := &models.EmailTask{Kind: models.EmailKindConfirmation, ApplicationID: "a", Payload: datatypes.JSON(`{}`), Status: models.EmailTaskQueued}
	retry := &models.EmailTask{Kind: models.EmailKindNewApplication, ApplicationID: "b", Payload: datatypes.JSON(`{}`), Status: models.EmailTaskQueued}
	require.NoError(t, db.Create(queued).Error)
	require.NoError(t, db.Create(retry).Error)
	require.NoError(t, broker.Publish(ctx, notifications.Task{ID: queued.ID}))
	require.NoError(t, broker.PublishAfter(ctx, notifications.Task{ID: retry.ID, Attempt: 1}, time.Hour))

	a := &App{DB: db, broker: broker}
	a.failUndelivered(broker.Drain())

	for _, id := range []string{queued.ID, retry.ID} {
		var row models.EmailTask
		require.NoError(t, db.First(&row, "id = ?", id).Error)
		assert.Equal(t, models.EmailTaskFailed, row.Status)
		assert.Equal(t, "undelivered at shutdown", row.LastError)
	}
}
