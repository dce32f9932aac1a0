package v1_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fursa-backend/config"
	"fursa-backend/internal/delivery/http/response"
	v1 "fursa-backend/internal/delivery/http/v1"
	"fursa-backend/internal/domain"
	"fursa-backend/pkg/apperror"
	"fursa-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	userID      = int64(7)
	validBearer = "Bearer good-token"
)

type harness struct {
	router   *gin.Engine
	tokens   *mockTokens
	auth     *mockAuthUC
	profiles *mockProfileUC
	skills   *mockSkillUC
	jobs     *mockJobUC
	apps     *mockApplicationUC
	health   *mockHealthUC
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{
		tokens:   new(mockTokens),
		auth:     new(mockAuthUC),
		profiles: new(mockProfileUC),
		skills:   new(mockSkillUC),
		jobs:     new(mockJobUC),
		apps:     new(mockApplicationUC),
		health:   new(mockHealthUC),
	}
	h.tokens.On("VerifyAccess", "good-token").Return(userID, nil).Maybe()
	h.auth.On("GetCurrentUser", mock.Anything, userID).Return(&domain.User{ID: userID}, nil).Maybe()

	secLog := security.NewSecurityLogger(zap.NewNop(), "fursa-backend", "test")
	cfg := &config.Config{
		CORSAllowedOrigins:       []string{"http://localhost:8081"},
		StorageDriver:            "s3",
		MaxUploadMB:              5,
		RateLimitWindowSeconds:   60,
		RateLimitGlobalThreshold: 100000,
		RateLimitLoginThreshold:  100000,
	}

	h.router = v1.NewRouter(v1.RouterDeps{
		AuthUC:        h.auth,
		ProfileUC:     h.profiles,
		SkillUC:       h.skills,
		JobUC:         h.jobs,
		ApplicationUC: h.apps,
		HealthUC:      h.health,
		Tokens:        h.tokens,
		LoginTracker:  security.NewLoginTracker(security.DefaultLoginTrackerConfig(), secLog),
		UploadLimiter: security.NewUploadLimiter(10, 50),
		SecurityLog:   secLog,
		Config:        cfg,
	})
	return h
}

func (h *harness) do(method, path string, body io.Reader, contentType string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authed {
		req.Header.Set("Authorization", validBearer)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) doJSON(method, path, body string, authed bool) *httptest.ResponseRecorder {
	return h.do(method, path, strings.NewReader(body), "application/json", authed)
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) (response.Response, map[string]interface{}) {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data, _ := body.Data.(map[string]interface{})
	return body, data
}

type formPart struct {
	name, filename, value string
}

func multipartBody(t *testing.T, parts ...formPart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename != "" {
			fw, err := mw.CreateFormFile(p.name, p.filename)
			require.NoError(t, err)
			_, err = fw.Write([]byte(p.value))
			require.NoError(t, err)
			continue
		}
		require.NoError(t, mw.WriteField(p.name, p.value))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	h.auth.On("Register", mock.Anything, domain.RegisterInput{Username: "amina", Email: "amina@example.com", Password: "secret1"}).
		Return(&domain.User{ID: 1, Username: "amina", Email: "amina@example.com"}, nil)

	w := h.doJSON(http.MethodPost, "/register/", `{"username":"amina","email":"amina@example.com","password":"secret1"}`, false)

	assert.Equal(t, http.StatusCreated, w.Code)
	body, data := envelope(t, w)
	assert.True(t, body.Success)
	assert.Equal(t, "Account created successfully!", body.Message)
	assert.Equal(t, "amina", data["username"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.auth.On("Register", mock.Anything, mock.Anything).Return(nil, apperror.FieldError("email", "Email already exists."))

	w := h.doJSON(http.MethodPost, "/register/", `{"username":"b","email":"a@example.com","password":"secret1"}`, false)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body, _ := envelope(t, w)
	assert.Equal(t, map[string]interface{}{"email": []interface{}{"Email already exists."}}, body.Error)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.auth.On("Login", mock.Anything, domain.LoginInput{Email: "a@example.com", Password: "secret1"}).
		Return(&domain.TokenPair{AccessToken: "acc", RefreshToken: "ref"}, nil)
	h.auth.On("Login", mock.Anything, domain.LoginInput{Email: "a@example.com", Password: "wrong"}).
		Return(nil, apperror.Unauthorized("Invalid credentials"))

	w := h.doJSON(http.MethodPost, "/login/", `{"email":"a@example.com","password":"secret1"}`, false)
	assert.Equal(t, http.StatusOK, w.Code)
	body, data := envelope(t, w)
	assert.Equal(t, "Login successful!", body.Message)
	assert.Equal(t, "acc", data["access_token"])
	assert.Equal(t, "ref", data["refresh_token"])

	w = h.doJSON(http.MethodPost, "/login/", `{"email":"a@example.com","password":"wrong"}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body, _ = envelope(t, w)
	assert.Equal(t, "Invalid credentials", body.Message)

	w = h.doJSON(http.MethodPost, "/login/", `not json`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshAcceptsBothFieldNames(t *testing.T) {
	h := newHarness(t)
	h.auth.On("Refresh", mock.Anything, "r1").Return("new-access", nil)
	h.auth.On("Refresh", mock.Anything, "").Return("", apperror.Unauthorized("Refresh token is required"))

	for _, body := range []string{`{"refresh":"r1"}`, `{"refresh_token":"r1"}`} {
		w := h.doJSON(http.MethodPost, "/token/refresh/", body, false)
		assert.Equal(t, http.StatusOK, w.Code)
		_, data := envelope(t, w)
		assert.Equal(t, "new-access", data["access_token"])
	}

	w := h.doJSON(http.MethodPost, "/token/refresh/", `{}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJobsArePublic(t *testing.T) {
	h := newHarness(t)
	h.jobs.On("ListJobs", mock.Anything).Return([]domain.Job{{ID: 1, Title: "Go Dev"}, {ID: 2, Title: "QA"}}, nil)
	h.jobs.On("GetJob", mock.Anything, int64(99)).Return(nil, apperror.NotFound("Not found."))

	w := h.do(http.MethodGet, "/jobs/", nil, "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	body, _ := envelope(t, w)
	assert.Len(t, body.Data, 2)

	w = h.do(http.MethodGet, "/jobs/99/", nil, "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodGet, "/jobs/abc/", nil, "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness(t)
	h.tokens.On("VerifyAccess", "refresh-token").Return(int64(0), errors.New("token type mismatch"))

	paths := []struct{ method, path string }{
		{http.MethodGet, "/profiles/"},
		{http.MethodGet, "/applications/"},
		{http.MethodPost, "/applications/"},
		{http.MethodPost, "/skills/"},
		{http.MethodPost, "/profiles/upload/"},
	}
	for _, p := range paths {
		w := h.do(p.method, p.path, nil, "", false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, p.path)

		req := httptest.NewRequest(p.method, p.path, nil)
		req.Header.Set("Authorization", "Bearer refresh-token")
		w = httptest.NewRecorder()
		h.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, p.path)
	}
	h.profiles.AssertNotCalled(t, "ListOwn", mock.Anything, mock.Anything)
}

func TestProfileReadsAreScopedToCaller(t *testing.T) {
	h := newHarness(t)
	own := &domain.Profile{ID: 3, UserID: userID, Name: "Amina", Skills: []domain.Skill{}}
	h.profiles.On("ListOwn", mock.Anything, userID).Return([]domain.Profile{*own}, nil)
	h.profiles.On("GetOwn", mock.Anything, userID, int64(3)).Return(own, nil)
	h.profiles.On("GetOwn", mock.Anything, userID, int64(4)).Return(nil, apperror.NotFound("Not found."))

	w := h.do(http.MethodGet, "/profiles/", nil, "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	body, _ := envelope(t, w)
	assert.Len(t, body.Data, 1)

	w = h.do(http.MethodGet, "/profiles/3/", nil, "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	_, data := envelope(t, w)
	assert.Equal(t, "Amina", data["name"])
	assert.EqualValues(t, userID, data["user"])

	w = h.do(http.MethodGet, "/profiles/4/", nil, "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatchProfileJSONOnlySendsSuppliedFields(t *testing.T) {
	h := newHarness(t)
	h.profiles.On("Update", mock.Anything, userID, int64(3), mock.MatchedBy(func(in domain.ProfileUpdate) bool {
		return in.Name != nil && *in.Name == "New" && in.Bio == nil && in.Skills == nil && in.ProfileImage == nil
	}), false).Return(&domain.Profile{ID: 3, Name: "New"}, nil)

	w := h.doJSON(http.MethodPatch, "/profiles/3/", `{"name":"New"}`, true)

	assert.Equal(t, http.StatusOK, w.Code)
	h.profiles.AssertExpectations(t)
}

func TestPutProfileMultipart(t *testing.T) {
	h := newHarness(t)
	h.profiles.On("Update", mock.Anything, userID, int64(3), mock.MatchedBy(func(in domain.ProfileUpdate) bool {
		return in.Name != nil && *in.Name == "Amina" &&
			in.Skills != nil && assert.ObjectsAreEqual([]string{"Python", "React", "Django"}, *in.Skills) &&
			in.Resume != nil && in.Resume.Filename == "cv.pdf" &&
			in.ProfileImage == nil
	}), true).Return(&domain.Profile{ID: 3, Name: "Amina"}, nil)

	body, ct := multipartBody(t,
		formPart{name: "name", value: "Amina"},
		formPart{name: "skills", value: "Python"},
		formPart{name: "skills", value: "React, Django"},
		formPart{name: "resume", filename: "cv.pdf", value: "%PDF-1.4 test"},
	)
	w := h.do(http.MethodPut, "/profiles/3/", body, ct, true)

	assert.Equal(t, http.StatusOK, w.Code)
	h.profiles.AssertExpectations(t)
}

func TestInvalidSkillRejected(t *testing.T) {
	h := newHarness(t)
	h.profiles.On("Update", mock.Anything, userID, int64(3), mock.Anything, false).
		Return(nil, apperror.Validation("Cobol is not a valid skill.", apperror.FieldErrors{"skills": {"Cobol is not a valid skill."}}))

	w := h.doJSON(http.MethodPatch, "/profiles/3/", `{"skills":["Python","Cobol"]}`, true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body, _ := envelope(t, w)
	assert.Equal(t, map[string]interface{}{"skills": []interface{}{"Cobol is not a valid skill."}}, body.Error)
}

func TestUploadImage(t *testing.T) {
	h := newHarness(t)
	h.profiles.On("UploadImage", mock.Anything, userID, mock.MatchedBy(func(fh *multipart.FileHeader) bool {
		return fh != nil && fh.Filename == "me.png"
	})).Return("https://cdn.example.com/profile_images/abc_me.jpg", nil)
	h.profiles.On("UploadImage", mock.Anything, userID, (*multipart.FileHeader)(nil)).
		Return("", apperror.FieldError("profileImage", "No image file provided."))

	body, ct := multipartBody(t, formPart{name: "profileImage", filename: "me.png", value: "png-bytes"})
	w := h.do(http.MethodPost, "/profiles/upload/", body, ct, true)
	assert.Equal(t, http.StatusOK, w.Code)
	_, data := envelope(t, w)
	assert.Equal(t, "https://cdn.example.com/profile_images/abc_me.jpg", data["profile_image"])

	body, ct = multipartBody(t, formPart{name: "other", value: "x"})
	w = h.do(http.MethodPost, "/profiles/upload/", body, ct, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApply(t *testing.T) {
	h := newHarness(t)
	app := &domain.Application{
		ID:        11,
		UserID:    userID,
		Job:       domain.JobSummary{ID: 3, Title: "Go Dev", Company: "Fursa", Location: "Nairobi"},
		AppliedOn: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	jobIs := func(id int64) interface{} {
		return mock.MatchedBy(func(in domain.ApplyInput) bool { return in.JobID != nil && *in.JobID == id })
	}
	h.apps.On("Apply", mock.Anything, userID, jobIs(3)).Return(app, true, nil).Once()
	h.apps.On("Apply", mock.Anything, userID, jobIs(3)).Return(app, false, nil).Once()
	h.apps.On("Apply", mock.Anything, userID, mock.MatchedBy(func(in domain.ApplyInput) bool { return in.JobID == nil })).
		Return(nil, false, apperror.FieldError("job", "Job ID is required."))
	h.apps.On("Apply", mock.Anything, userID, jobIs(404)).Return(nil, false, apperror.NotFound("Job not found."))

	w := h.doJSON(http.MethodPost, "/applications/", `{"job":3,"cover_letter":"hi"}`, true)
	assert.Equal(t, http.StatusCreated, w.Code)
	_, data := envelope(t, w)
	job, _ := data["job"].(map[string]interface{})
	assert.Equal(t, "Go Dev", job["title"])
	assert.Equal(t, "Nairobi", job["location"])

	w = h.doJSON(http.MethodPost, "/applications/", `{"job":"3"}`, true)
	assert.Equal(t, http.StatusOK, w.Code)
	body, _ := envelope(t, w)
	assert.Equal(t, "You have already applied for this job.", body.Message)

	w = h.doJSON(http.MethodPost, "/applications/", `{"cover_letter":"hi"}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body, _ = envelope(t, w)
	assert.Equal(t, "Job ID is required.", body.Message)

	w = h.doJSON(http.MethodPost, "/applications/", `{"job":404}`, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.doJSON(http.MethodPost, "/applications/", `{"job":"abc"}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplyMultipartWithResume(t *testing.T) {
	h := newHarness(t)
	h.apps.On("Apply", mock.Anything, userID, mock.MatchedBy(func(in domain.ApplyInput) bool {
		return in.JobID != nil && *in.JobID == 5 && in.CoverLetter == "hello" && in.Resume != nil && in.Resume.Filename == "cv.pdf"
	})).Return(&domain.Application{ID: 1, Job: domain.JobSummary{ID: 5}}, true, nil)

	body, ct := multipartBody(t,
		formPart{name: "job", value: "5"},
		formPart{name: "cover_letter", value: "hello"},
		formPart{name: "resume", filename: "cv.pdf", value: "%PDF-1.4"},
	)
	w := h.do(http.MethodPost, "/applications/", body, ct, true)

	assert.Equal(t, http.StatusCreated, w.Code)
	h.apps.AssertExpectations(t)
}

func TestListAndExportApplications(t *testing.T) {
	h := newHarness(t)
	h.apps.On("ListOwn", mock.Anything, userID).Return([]domain.Application{{ID: 1}}, nil)
	h.apps.On("ExportOwn", mock.Anything, userID, "csv").Return([]byte("id,job\n1,Go Dev\n"), "applications_20240501.csv", nil)
	h.apps.On("ExportOwn", mock.Anything, userID, "pdf").Return(nil, "", apperror.FieldError("format", "Unsupported export format. Use xlsx or csv."))
	h.apps.On("GetOwn", mock.Anything, userID, int64(2)).Return(nil, apperror.NotFound("Not found."))

	w := h.do(http.MethodGet, "/applications/", nil, "", true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodGet, "/applications/?format=csv", nil, "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=applications_20240501.csv", w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "id,job\n1,Go Dev\n", w.Body.String())

	w = h.do(http.MethodGet, "/applications/?format=pdf", nil, "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodGet, "/applications/2/", nil, "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSkillRoutes(t *testing.T) {
	h := newHarness(t)
	h.skills.On("List", mock.Anything).Return([]domain.Skill{{ID: 1, Name: "Python"}}, nil)
	h.skills.On("Create", mock.Anything, domain.SkillInput{Name: "Go"}).Return(&domain.Skill{ID: 6, Name: "Go"}, nil)
	h.skills.On("Update", mock.Anything, int64(6), domain.SkillInput{Name: "Golang"}).Return(&domain.Skill{ID: 6, Name: "Golang"}, nil)
	h.skills.On("Delete", mock.Anything, int64(6)).Return(nil)

	w := h.do(http.MethodGet, "/skills/", nil, "", false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.doJSON(http.MethodPost, "/skills/", `{"name":"Go"}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.doJSON(http.MethodPost, "/skills/", `{"name":"Go"}`, true)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = h.doJSON(http.MethodPatch, "/skills/6/", `{"name":"Golang"}`, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodDelete, "/skills/6/", nil, "", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	h.health.On("Check", mock.Anything).Return(&domain.HealthStatus{
		Status:   "unhealthy",
		Services: map[string]string{"database": "down", "redis": "disabled"},
	}, apperror.New(http.StatusServiceUnavailable, "Service Unavailable", errors.New("dial tcp")))

	w := h.do(http.MethodGet, "/health/", nil, "", false)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body, data := envelope(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, "unhealthy", data["status"])
	assert.NotContains(t, w.Body.String(), "dial tcp")
}
