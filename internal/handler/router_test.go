package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-desk-api/internal/dto"
	"github.com/noah-isme/civic-desk-api/internal/models"
	"github.com/noah-isme/civic-desk-api/internal/service"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
	"github.com/noah-isme/civic-desk-api/pkg/response"
)

type tokenGate map[string]*models.Principal

func (g tokenGate) Resolve(ctx context.Context, header string) (*models.Principal, error) {
	if header == "" {
		return nil, appErrors.ErrMissingCredential
	}
	if p, ok := g[header]; ok {
		return p, nil
	}
	return nil, appErrors.ErrInvalidCredential
}

var testGate = tokenGate{
	"Bearer citizen": {UserID: "u-1", Role: models.RoleCitizen},
	"Bearer staff":   {UserID: "s-1", Role: models.RoleStaff},
	"Bearer admin":   {UserID: "a-1", Role: models.RoleAdmin},
}

// Embedded interfaces leave unused methods nil; tests only call what they stub.
type requestServiceStub struct {
	requestService
	created   dto.CreateRequestPayload
	updated   dto.UpdateRequestPayload
	trackCode string
}

func (s *requestServiceStub) Create(ctx context.Context, principal models.Principal, payload dto.CreateRequestPayload) (*models.Request, error) {
	if principal.Role != models.RoleCitizen {
		return nil, appErrors.ErrForbidden
	}
	s.created = payload
	return &models.Request{ID: "r-1", RequestCode: "REQ-20260118-ABCDEF", UserID: principal.UserID, Title: payload.Title, Status: models.StatusPending}, nil
}

func (s *requestServiceStub) List(ctx context.Context, principal models.Principal, query dto.RequestQuery) (*models.RequestList, error) {
	return &models.RequestList{Items: []models.Request{{ID: "r-1"}}, Total: 1, Page: 1, Limit: 20, TotalPages: 1}, nil
}

func (s *requestServiceStub) Update(ctx context.Context, principal models.Principal, id string, payload dto.UpdateRequestPayload) (*models.Request, error) {
	if principal.IsCitizen() && payload.Status != nil {
		return nil, appErrors.ErrForbidden
	}
	s.updated = payload
	return &models.Request{ID: id, Status: *payload.Status}, nil
}

func (s *requestServiceStub) GetByCode(ctx context.Context, principal models.Principal, code string) (*models.RequestDetail, error) {
	s.trackCode = code
	return &models.RequestDetail{Request: models.Request{ID: "r-1", RequestCode: code}}, nil
}

func (s *requestServiceStub) Get(ctx context.Context, principal models.Principal, id string) (*models.RequestDetail, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
}

type exporterStub struct{}

func (exporterStub) Export(ctx context.Context, principal models.Principal, query dto.RequestQuery) (*service.ExportResult, error) {
	return &service.ExportResult{Filename: "requests_20260118_103000.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("Code\n"), Rows: 0, Truncated: true}, nil
}

type categoryServiceStub struct {
	categoryService
}

func (categoryServiceStub) List(ctx context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "c-1", Name: "Roads"}}, nil
}

func (categoryServiceStub) Create(ctx context.Context, principal models.Principal, payload dto.CategoryPayload) (*models.Category, error) {
	return &models.Category{ID: "c-2", Name: payload.Name}, nil
}

type assignmentServiceStub struct {
	assignmentService
	acceptedNotes *string
}

func (s *assignmentServiceStub) Accept(ctx context.Context, principal models.Principal, id string, payload dto.AssignmentActionPayload) (*models.Assignment, error) {
	s.acceptedNotes = payload.Notes
	return &models.Assignment{ID: id, Status: models.AssignmentInProgress}, nil
}

type attachmentServiceStub struct {
	attachmentService
	uploaded service.UploadInput
	body     string
}

func (s *attachmentServiceStub) MaxSizeBytes() int64 { return 1024 }

func (s *attachmentServiceStub) Upload(ctx context.Context, principal models.Principal, requestID string, input service.UploadInput) (*models.AttachmentLink, error) {
	raw, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	s.uploaded = input
	s.body = string(raw)
	return &models.AttachmentLink{Attachment: models.Attachment{ID: "att-1", RequestID: requestID, FileName: input.FileName}}, nil
}

func (s *attachmentServiceStub) Open(ctx context.Context, token string) (*models.Attachment, io.ReadCloser, error) {
	if token != "good" {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	body := "hello"
	return &models.Attachment{FileName: "photo.png", ContentType: "image/png", SizeBytes: int64(len(body))}, io.NopCloser(strings.NewReader(body)), nil
}

type notificationServiceStub struct {
	notificationService
}

func (notificationServiceStub) UnreadCount(ctx context.Context, principal models.Principal) (int, error) {
	return 3, nil
}

type userServiceStub struct {
	userService
}

func (userServiceStub) List(ctx context.Context, principal models.Principal, query dto.UserQuery) ([]models.User, *models.Pagination, error) {
	return []models.User{{ID: "u-1"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

type authServiceStub struct {
	authService
}

func (authServiceStub) Signin(ctx context.Context, req dto.SigninRequest, meta dto.SessionMeta) (*models.AuthResult, error) {
	if req.Password != "correct-horse" {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &models.AuthResult{User: &models.User{ID: "u-1", Email: req.Email}, Session: &models.Session{AccessToken: "token", ExpiresAt: time.Now().Add(time.Hour)}}, nil
}

func (authServiceStub) Signup(ctx context.Context, req dto.SignupRequest, meta dto.SessionMeta) (*models.AuthResult, error) {
	if req.Email == "taken@example.com" {
		return nil, appErrors.Clone(appErrors.ErrEmailTaken, "")
	}
	return &models.AuthResult{User: &models.User{ID: "u-2", Email: req.Email}, Session: &models.Session{AccessToken: "token"}}, nil
}

type fixture struct {
	router      *gin.Engine
	requests    *requestServiceStub
	assignments *assignmentServiceStub
	attachments *attachmentServiceStub
}

func newFixture() fixture {
	gin.SetMode(gin.TestMode)
	f := fixture{
		requests:    &requestServiceStub{},
		assignments: &assignmentServiceStub{},
		attachments: &attachmentServiceStub{},
	}
	f.router = NewRouter(RouterConfig{APIPrefix: "/api"}, testGate, service.NewMetricsService(), Handlers{
		Auth:          NewAuthHandler(authServiceStub{}),
		Requests:      NewRequestHandler(f.requests, exporterStub{}),
		Attachments:   NewAttachmentHandler(f.attachments),
		Categories:    NewCategoryHandler(categoryServiceStub{}),
		Assignments:   NewAssignmentHandler(f.assignments),
		Notifications: NewNotificationHandler(notificationServiceStub{}),
		Users:         NewUserHandler(userServiceStub{}),
		Ops:           NewMetricsHandler(service.NewMetricsService(), nil),
	}, nil)
	return f
}

func serve(r http.Handler, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture()

	for _, token := range []string{"", "forged"} {
		w := serve(f.router, http.MethodGet, "/api/requests", token, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		env := envelope(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "UNAUTHORIZED", env.Code)
		assert.Equal(t, "unauthorized", env.Error)
	}
}

func TestCreateRequestRoute(t *testing.T) {
	f := newFixture()
	payload := dto.CreateRequestPayload{CategoryID: "c-1", Title: "Broken light", Description: "The light has been off for a week."}

	w := serve(f.router, http.MethodPost, "/api/requests", "citizen", jsonBody(t, payload))
	require.Equal(t, http.StatusCreated, w.Code)
	env := envelope(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "Broken light", f.requests.created.Title)

	w = serve(f.router, http.MethodPost, "/api/requests", "staff", jsonBody(t, payload))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(f.router, http.MethodPost, "/api/requests", "citizen", strings.NewReader("{"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", envelope(t, w).Code)
}

func TestCitizenStatusChangeForbidden(t *testing.T) {
	f := newFixture()

	w := serve(f.router, http.MethodPut, "/api/requests/r-1", "citizen", strings.NewReader(`{"status":"resolved"}`))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(f.router, http.MethodPut, "/api/requests/r-1", "staff", strings.NewReader(`{"status":"resolved","resolution_notes":"Fixed"}`))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.requests.updated.ResolutionNotes)
	assert.Equal(t, "Fixed", *f.requests.updated.ResolutionNotes)
}

func TestStaticRequestRoutesWinOverID(t *testing.T) {
	f := newFixture()

	w := serve(f.router, http.MethodGet, "/api/requests/track/REQ-20260118-ABCDEF", "citizen", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "REQ-20260118-ABCDEF", f.requests.trackCode)

	w = serve(f.router, http.MethodGet, "/api/requests/missing", "citizen", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(f.router, http.MethodGet, "/api/requests/export?format=csv", "staff", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="requests_20260118_103000.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "true", w.Header().Get("X-Export-Truncated"))
	assert.Equal(t, "Code\n", w.Body.String())
}

func TestListCarriesMeta(t *testing.T) {
	f := newFixture()

	w := serve(f.router, http.MethodGet, "/api/users", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := envelope(t, w)
	assert.Equal(t, float64(1), env.Meta["total_pages"])
	assert.Contains(t, env.Meta, "processing_time_ms")

	w = serve(f.router, http.MethodGet, "/api/users", "staff", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCategoriesAllowAnonymousReads(t *testing.T) {
	f := newFixture()

	w := serve(f.router, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = serve(f.router, http.MethodGet, "/api/categories", "forged", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(f.router, http.MethodPost, "/api/categories", "staff", strings.NewReader(`{"name":"Roads"}`))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = serve(f.router, http.MethodPost, "/api/categories", "admin", strings.NewReader(`{"name":"Roads"}`))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAssignmentsAreStaffOnly(t *testing.T) {
	f := newFixture()

	w := serve(f.router, http.MethodPost, "/api/assignments/as-1/accept", "citizen", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(f.router, http.MethodPost, "/api/assignments/as-1/accept", "staff", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, f.assignments.acceptedNotes)

	w = serve(f.router, http.MethodPost, "/api/assignments/as-1/accept", "staff", strings.NewReader(`{"notes":"on it"}`))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.assignments.acceptedNotes)
	assert.Equal(t, "on it", *f.assignments.acceptedNotes)
}

func TestAttachmentUploadAndDownload(t *testing.T) {
	f := newFixture()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/requests/r-1/attachments", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer citizen")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "photo.png", f.attachments.uploaded.FileName)
	assert.Equal(t, "png-bytes", f.attachments.body)

	w = serve(f.router, http.MethodPost, "/api/requests/r-1/attachments", "citizen", strings.NewReader(`{}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file", envelope(t, w).Field)

	w = serve(f.router, http.MethodGet, "/api/attachments/download?token=good", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = serve(f.router, http.MethodGet, "/api/attachments/download?token=bad", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthAndOpsRoutes(t *testing.T) {
	f := newFixture()

	w := serve(f.router, http.MethodPost, "/api/auth/signin", "", strings.NewReader(`{"email":"a@b.co","password":"correct-horse"}`))
	require.Equal(t, http.StatusOK, w.Code)
	w = serve(f.router, http.MethodPost, "/api/auth/signin", "", strings.NewReader(`{"email":"a@b.co","password":"nope"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(f.router, http.MethodPost, "/api/auth/signup", "", strings.NewReader(`{"email":"new@example.com","password":"long-enough","full_name":"Lina Saleh"}`))
	assert.Equal(t, http.StatusCreated, w.Code)
	w = serve(f.router, http.MethodPost, "/api/auth/signup", "", strings.NewReader(`{"email":"taken@example.com","password":"long-enough","full_name":"Lina Saleh"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"email"`)

	w = serve(f.router, http.MethodGet, "/api/notifications/unread-count", "citizen", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":3`)

	assert.Equal(t, http.StatusOK, serve(f.router, http.MethodGet, "/api/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(f.router, http.MethodGet, "/ready", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(f.router, http.MethodGet, "/metrics", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(f.router, http.MethodGet, "/docs/index.html", "", nil).Code)
}

type failingPinger struct{}

func (failingPinger) PingContext(ctx context.Context) error { return context.DeadlineExceeded }

func TestReadyReportsDatabaseOutage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(nil, failingPinger{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
