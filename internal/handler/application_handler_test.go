package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyaSox/Recruitment-system-sub000/internal/middleware"
	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
	"github.com/AyaSox/Recruitment-system-sub000/internal/repository"
	"github.com/AyaSox/Recruitment-system-sub000/internal/service"
	"github.com/AyaSox/Recruitment-system-sub000/pkg/storage"
)

type fakeAppRepo struct {
	apps        map[string]*models.Application
	lastFilter  models.ApplicationFilter
	versionsErr bool
}

func (f *fakeAppRepo) FindByID(_ context.Context, id string) (*models.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *app
	return &copied, nil
}

func (f *fakeAppRepo) ExistsForApplicant(context.Context, string, string) (bool, error) {
	return false, nil
}

func (f *fakeAppRepo) List(_ context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	f.lastFilter = filter
	return nil, 0, nil
}

func (f *fakeAppRepo) Create(_ context.Context, app *models.Application) error {
	if f.apps == nil {
		f.apps = map[string]*models.Application{}
	}
	app.ID = "app-created"
	f.apps[app.ID] = app
	return nil
}

func (f *fakeAppRepo) UpdateStatus(_ context.Context, app *models.Application) error {
	if f.versionsErr {
		return repository.ErrVersionMismatch
	}
	stored := f.apps[app.ID]
	stored.Status = app.Status
	stored.Version = app.Version + 1
	app.Version = stored.Version
	return nil
}

type fakeApplicantRepo struct {
	users map[string]*models.User
}

func (f *fakeApplicantRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeApplicantRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeApplicantRepo) Create(_ context.Context, user *models.User) error {
	if f.users == nil {
		f.users = map[string]*models.User{}
	}
	f.users[user.ID] = user
	return nil
}

func newApplicationHandlerFixture(appRepo *fakeAppRepo, jobRepo *fakeJobRepo, userRepo *fakeApplicantRepo) *ApplicationHandler {
	apps := service.NewApplicationService(appRepo, jobRepo, userRepo, nil, nil, nil, nil, nil, nil, nil, nil)
	return NewApplicationHandler(apps, nil, nil, nil, nil)
}

func applicantClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleApplicant, FullName: "Thabo M", Email: "thabo@example.com"}
}

func TestApplicationGetHidesForeignFromApplicant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	appRepo := &fakeAppRepo{apps: map[string]*models.Application{
		"app-1": {ID: "app-1", JobID: "job-1", ApplicantID: "someone-else", Status: models.StatusApplied, Version: 1},
	}}
	handler := newApplicationHandlerFixture(appRepo, &fakeJobRepo{}, &fakeApplicantRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/applications/app-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}
	c.Set(middleware.ContextUserKey, applicantClaims("u-1"))

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplicationListMineScopesToCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	appRepo := &fakeAppRepo{}
	handler := newApplicationHandlerFixture(appRepo, &fakeJobRepo{}, &fakeApplicantRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/applications/mine", nil)
	c.Set(middleware.ContextUserKey, applicantClaims("u-1"))

	handler.ListMine(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", appRepo.lastFilter.ApplicantID)
}

func TestApplicationListRejectsUnknownStatusFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newApplicationHandlerFixture(&fakeAppRepo{}, &fakeJobRepo{}, &fakeApplicantRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/applications?status=Promoted", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error["code"])
}

func TestApplicationUpdateStatusRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newApplicationHandlerFixture(&fakeAppRepo{}, &fakeJobRepo{}, &fakeApplicantRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/applications/app-1/status", bytes.NewBufferString("{not json"))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, staffClaims())

	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplicationUpdateStatusVersionConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	appRepo := &fakeAppRepo{
		apps: map[string]*models.Application{
			"app-1": {ID: "app-1", JobID: "job-1", ApplicantID: "u-1", Status: models.StatusApplied, Version: 3},
		},
		versionsErr: true,
	}
	jobRepo := &fakeJobRepo{jobs: map[string]*models.Job{
		"job-1": {ID: "job-1", Title: "Backend Engineer", IsPublished: true, ClosingDate: time.Now().Add(time.Hour)},
	}}
	userRepo := &fakeApplicantRepo{users: map[string]*models.User{
		"u-1": {ID: "u-1", Email: "thabo@example.com", FullName: "Thabo M"},
	}}
	handler := newApplicationHandlerFixture(appRepo, jobRepo, userRepo)

	body, _ := json.Marshal(map[string]interface{}{"status": "Screening", "version": 2})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/applications/app-1/status", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}
	c.Set(middleware.ContextUserKey, staffClaims())

	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "VERSION_CONFLICT", envelope.Error["code"])
}

func TestApplicationUpdateStatusSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	appRepo := &fakeAppRepo{apps: map[string]*models.Application{
		"app-1": {ID: "app-1", JobID: "job-1", ApplicantID: "u-1", Status: models.StatusApplied, Version: 1},
	}}
	jobRepo := &fakeJobRepo{jobs: map[string]*models.Job{
		"job-1": {ID: "job-1", Title: "Backend Engineer", IsPublished: true, ClosingDate: time.Now().Add(time.Hour)},
	}}
	userRepo := &fakeApplicantRepo{users: map[string]*models.User{
		"u-1": {ID: "u-1", Email: "thabo@example.com", FullName: "Thabo M"},
	}}
	handler := newApplicationHandlerFixture(appRepo, jobRepo, userRepo)

	body, _ := json.Marshal(map[string]interface{}{"status": "Screening", "version": 1})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/applications/app-1/status", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}
	c.Set(middleware.ContextUserKey, staffClaims())

	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "Screening", envelope.Data["status"])
}

func newResumeHandlerFixture(t *testing.T, appRepo *fakeAppRepo) (*ApplicationHandler, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Minute)
	apps := service.NewApplicationService(appRepo, &fakeJobRepo{}, &fakeApplicantRepo{}, nil, nil, nil, nil, nil, store, nil, nil)
	return NewApplicationHandler(apps, nil, nil, store, signer), store
}

func TestResumeLinkMissingFileNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	appRepo := &fakeAppRepo{apps: map[string]*models.Application{
		"app-1": {ID: "app-1", ApplicantID: "u-1", Status: models.StatusApplied, ResumePath: "resumes/gone.pdf", Version: 1},
	}}
	handler, _ := newResumeHandlerFixture(t, appRepo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/applications/app-1/resume-link", nil)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}
	c.Set(middleware.ContextUserKey, staffClaims())

	handler.ResumeLink(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResumeLinkAndDownloadRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	appRepo := &fakeAppRepo{apps: map[string]*models.Application{
		"app-1": {ID: "app-1", ApplicantID: "u-1", Status: models.StatusApplied, ResumePath: "resumes/cv.pdf", Version: 1},
	}}
	handler, store := newResumeHandlerFixture(t, appRepo)

	content := []byte("%PDF-1.4 resume body")
	_, err := store.Save("resumes/cv.pdf", content)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/applications/app-1/resume-link", nil)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}
	c.Set(middleware.ContextUserKey, staffClaims())

	handler.ResumeLink(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	url, _ := envelope.Data["url"].(string)
	token := strings.TrimPrefix(url, "/api/v1/resumes/download?token=")
	require.NotEmpty(t, token)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/resumes/download?token="+token, nil)

	handler.DownloadResume(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, content, rec.Body.Bytes())
}

func TestApplicationApplyGuestCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	appRepo := &fakeAppRepo{}
	jobRepo := &fakeJobRepo{jobs: map[string]*models.Job{
		"job-1": {ID: "job-1", Title: "Backend Engineer", IsPublished: true, ClosingDate: time.Now().Add(time.Hour)},
	}}
	userRepo := &fakeApplicantRepo{}
	handler := newApplicationHandlerFixture(appRepo, jobRepo, userRepo)

	form := "job_id=job-1&email=jane@example.com&full_name=Jane+Doe"
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/applications/guest", bytes.NewBufferString(form))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	handler.ApplyGuest(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	if assert.Len(t, userRepo.users, 1) {
		for _, u := range userRepo.users {
			assert.True(t, u.Guest)
			assert.Equal(t, "jane@example.com", u.Email)
		}
	}
}
