package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"events-platform/internal/data/entity"
	"events-platform/internal/dto/request"
	"events-platform/internal/dto/response"
	"events-platform/pkg/apperror"
	"events-platform/pkg/jwt"
	"events-platform/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ==================== STUBS ====================

type stubAuthService struct {
	err     error
	signup  *request.SignupRequest
	login   *request.LoginRequest
	refresh *request.RefreshRequest
}

func (s *stubAuthService) Signup(_ context.Context, req *request.SignupRequest) error {
	s.signup = req
	return s.err
}

func (s *stubAuthService) VerifyEmail(context.Context, *request.VerifyEmailRequest) error {
	return s.err
}

func (s *stubAuthService) ResendOTP(context.Context, *request.ResendOTPRequest) error {
	return s.err
}

func (s *stubAuthService) Login(_ context.Context, req *request.LoginRequest) (*jwt.TokenPair, error) {
	s.login = req
	if s.err != nil {
		return nil, s.err
	}
	return &jwt.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}, nil
}

func (s *stubAuthService) Refresh(_ context.Context, req *request.RefreshRequest) (*response.AccessResponse, error) {
	s.refresh = req
	if s.err != nil {
		return nil, s.err
	}
	return &response.AccessResponse{Access: "new-access"}, nil
}

type stubUserService struct {
	userID uuid.UUID
}

func (s *stubUserService) GetProfile(_ context.Context, userID uuid.UUID) (*response.ProfileResponse, error) {
	s.userID = userID
	return &response.ProfileResponse{ID: userID.String(), Email: "seeker@example.com", Role: entity.RoleSeeker}, nil
}

type stubEventService struct {
	err     error
	listReq *request.EventListRequest
	gotID   string
	deleted string
}

func (s *stubEventService) Create(_ context.Context, _ utils.Principal, req *request.CreateEventRequest) (*response.EventResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &response.EventResponse{ID: uuid.NewString(), Title: req.Title}, nil
}

func (s *stubEventService) List(_ context.Context, _ utils.Principal, req *request.EventListRequest) (*response.PaginatedResponse[response.EventResponse], error) {
	s.listReq = req
	return response.NewPaginatedResponse([]response.EventResponse{}, req.CurrentPage(), req.Limit(), 0), nil
}

func (s *stubEventService) Get(_ context.Context, eventID string) (*response.EventResponse, error) {
	s.gotID = eventID
	if s.err != nil {
		return nil, s.err
	}
	return &response.EventResponse{Title: "Go meetup"}, nil
}

func (s *stubEventService) Update(_ context.Context, _ utils.Principal, eventID string, req *request.UpdateEventRequest) (*response.EventResponse, error) {
	s.gotID = eventID
	if s.err != nil {
		return nil, s.err
	}
	return &response.EventResponse{Title: *req.Title}, nil
}

func (s *stubEventService) Delete(_ context.Context, _ utils.Principal, eventID string) error {
	s.deleted = eventID
	return s.err
}

type stubEnrollmentService struct {
	err      error
	created  bool
	canceled string
	scope    string
}

func (s *stubEnrollmentService) Enroll(context.Context, utils.Principal, *request.CreateEnrollmentRequest) (*response.EnrollmentResponse, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	return &response.EnrollmentResponse{Status: entity.EnrollmentStatusEnrolled}, s.created, nil
}

func (s *stubEnrollmentService) Get(context.Context, utils.Principal, string) (*response.EnrollmentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &response.EnrollmentResponse{Status: entity.EnrollmentStatusEnrolled}, nil
}

func (s *stubEnrollmentService) Update(_ context.Context, _ utils.Principal, _ string, req *request.UpdateEnrollmentRequest) (*response.EnrollmentResponse, error) {
	return &response.EnrollmentResponse{Status: entity.EnrollmentStatus(req.Status)}, nil
}

func (s *stubEnrollmentService) Cancel(_ context.Context, _ utils.Principal, id string) (*response.EnrollmentResponse, error) {
	s.canceled = id
	return &response.EnrollmentResponse{Status: entity.EnrollmentStatusCanceled}, nil
}

func (s *stubEnrollmentService) List(context.Context, utils.Principal) ([]response.EnrollmentResponse, error) {
	s.scope = "all"
	return []response.EnrollmentResponse{}, nil
}

func (s *stubEnrollmentService) ListPast(context.Context, utils.Principal) ([]response.EnrollmentResponse, error) {
	s.scope = "past"
	return []response.EnrollmentResponse{}, nil
}

func (s *stubEnrollmentService) ListUpcoming(context.Context, utils.Principal) ([]response.EnrollmentResponse, error) {
	s.scope = "upcoming"
	return []response.EnrollmentResponse{}, nil
}

func (s *stubEnrollmentService) Roster(context.Context, utils.Principal, string) ([]response.EnrollmentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []response.EnrollmentResponse{{Status: entity.EnrollmentStatusEnrolled}}, nil
}

// ==================== HELPERS ====================

var seeker = utils.Principal{
	UserID:        uuid.MustParse("8f14e45f-ceea-4e7a-9c4b-2f1f3c2d8a11"),
	Email:         "seeker@example.com",
	Role:          entity.RoleSeeker,
	EmailVerified: true,
}

func do(t *testing.T, router http.Handler, method, path, body string, actor *utils.Principal) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req = req.WithContext(utils.SetPrincipal(req.Context(), *actor))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ==================== AUTH ====================

func TestAuthHandler_Signup(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/api/auth/signup", h.Signup)

	rec := do(t, r, http.MethodPost, "/api/auth/signup",
		`{"email":"new@example.com","password":"password123","role":"Seeker"}`, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "signup_success", decodeBody(t, rec)["code"])
	require.NotNil(t, svc.signup)
	assert.Equal(t, "new@example.com", svc.signup.Email)
	assert.Equal(t, "Seeker", svc.signup.Role)
}

func TestAuthHandler_InvalidJSON(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/api/auth/login", h.Login)

	rec := do(t, r, http.MethodPost, "/api/auth/login", `{"email":`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CodeValidation, decodeBody(t, rec)["code"])
}

func TestAuthHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid credentials", apperror.Unauthorized(apperror.CodeInvalidCredentials, "Invalid email or password."), http.StatusUnauthorized, apperror.CodeInvalidCredentials},
		{"unverified", apperror.Forbidden(apperror.CodeEmailNotVerified, "Email is not verified."), http.StatusForbidden, apperror.CodeEmailNotVerified},
		{"missing credentials", apperror.BadRequest(apperror.CodeMissingCredentials, "Email and password are required."), http.StatusBadRequest, apperror.CodeMissingCredentials},
		{"infrastructure", errors.New("connection refused"), http.StatusInternalServerError, apperror.CodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuthService{err: tt.err}, zap.NewNop())
			r := chi.NewRouter()
			r.Post("/api/auth/login", h.Login)

			rec := do(t, r, http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"x"}`, nil)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["detail"])
		})
	}
}

func TestAuthHandler_LoginAndRefresh(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/refresh", h.Refresh)

	rec := do(t, r, http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"secret"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "access-token", body["access"])
	assert.Equal(t, "refresh-token", body["refresh"])

	rec = do(t, r, http.MethodPost, "/api/auth/refresh", `{"refresh":"refresh-token"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new-access", decodeBody(t, rec)["access"])
	assert.Equal(t, "refresh-token", svc.refresh.Refresh)
}

func TestAuthHandler_VerifyAndResend(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/api/auth/verify-email", h.VerifyEmail)
	r.Post("/api/auth/resend-otp", h.ResendOTP)

	rec := do(t, r, http.MethodPost, "/api/auth/verify-email", `{"email":"a@b.c","otp":"123456"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "email_verified", decodeBody(t, rec)["code"])

	rec = do(t, r, http.MethodPost, "/api/auth/resend-otp", `{"email":"a@b.c"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "otp_sent", decodeBody(t, rec)["code"])
}

// ==================== USER ====================

func TestUserHandler_GetProfile(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/api/auth/profile", h.GetProfile)

	rec := do(t, r, http.MethodGet, "/api/auth/profile", "", &seeker)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, seeker.UserID, svc.userID)
	assert.Equal(t, "seeker@example.com", decodeBody(t, rec)["email"])

	rec = do(t, r, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperror.CodeNotAuthenticated, decodeBody(t, rec)["code"])
}

// ==================== EVENTS ====================

func eventRouter(h *EventHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", h.GetEvents)
		r.Post("/", h.CreateEvent)
		r.Get("/{id}", h.GetEvent)
		r.Patch("/{id}", h.UpdateEvent)
		r.Delete("/{id}", h.DeleteEvent)
	})
	return r
}

func TestEventHandler_ListParsesQuery(t *testing.T) {
	svc := &stubEventService{}
	r := eventRouter(NewEventHandler(svc, zap.NewNop()))

	rec := do(t, r, http.MethodGet,
		"/api/events/?page=2&per_page=5&location=berlin&language=English&q=go&starts_after=2026-06-01T00:00:00Z&starts_before=bogus",
		"", &seeker)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.listReq)
	assert.Equal(t, 2, svc.listReq.Page)
	assert.Equal(t, 5, svc.listReq.PerPage)
	assert.Equal(t, "berlin", svc.listReq.Location)
	assert.Equal(t, "English", svc.listReq.Language)
	assert.Equal(t, "go", svc.listReq.Query)
	require.NotNil(t, svc.listReq.StartsAfter)
	assert.True(t, svc.listReq.StartsAfter.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, svc.listReq.StartsBefore)

	pagination := decodeBody(t, rec)["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(5), pagination["per_page"])
}

func TestEventHandler_ListDefaults(t *testing.T) {
	svc := &stubEventService{}
	r := eventRouter(NewEventHandler(svc, zap.NewNop()))

	rec := do(t, r, http.MethodGet, "/api/events/?page=-1&per_page=abc", "", &seeker)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.listReq.Page)
	assert.Equal(t, request.DefaultPerPage, svc.listReq.PerPage)
}

func TestEventHandler_GetNotFound(t *testing.T) {
	svc := &stubEventService{err: apperror.NotFound(apperror.CodeEventNotFound, "Event not found.")}
	r := eventRouter(NewEventHandler(svc, zap.NewNop()))

	rec := do(t, r, http.MethodGet, "/api/events/not-a-uuid", "", &seeker)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperror.CodeEventNotFound, decodeBody(t, rec)["code"])
	assert.Equal(t, "not-a-uuid", svc.gotID)
}

func TestEventHandler_CreateUpdateDelete(t *testing.T) {
	svc := &stubEventService{}
	r := eventRouter(NewEventHandler(svc, zap.NewNop()))
	facilitator := seeker
	facilitator.Role = entity.RoleFacilitator

	rec := do(t, r, http.MethodPost, "/api/events/", `{"title":"Go meetup"}`, &facilitator)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Go meetup", decodeBody(t, rec)["title"])

	id := uuid.NewString()
	rec = do(t, r, http.MethodPatch, "/api/events/"+id, `{"title":"Renamed"}`, &facilitator)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", decodeBody(t, rec)["title"])
	assert.Equal(t, id, svc.gotID)

	rec = do(t, r, http.MethodDelete, "/api/events/"+id, "", &facilitator)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id, svc.deleted)
}

func TestEventHandler_PermissionDenied(t *testing.T) {
	svc := &stubEventService{err: apperror.PermissionDenied("Only facilitators can create events.")}
	r := eventRouter(NewEventHandler(svc, zap.NewNop()))

	rec := do(t, r, http.MethodPost, "/api/events/", `{"title":"Go meetup"}`, &seeker)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apperror.CodePermissionDenied, decodeBody(t, rec)["code"])
}

// ==================== ENROLLMENTS ====================

func enrollmentRouter(h *EnrollmentHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/events/{id}/enrollments", h.GetEventRoster)
	r.Route("/api/enrollments", func(r chi.Router) {
		r.Get("/", h.GetEnrollments)
		r.Post("/", h.CreateEnrollment)
		r.Get("/past", h.GetPastEnrollments)
		r.Get("/upcoming", h.GetUpcomingEnrollments)
		r.Get("/{id}", h.GetEnrollment)
		r.Patch("/{id}", h.UpdateEnrollment)
		r.Delete("/{id}", h.CancelEnrollment)
	})
	return r
}

func TestEnrollmentHandler_CreateStatus(t *testing.T) {
	tests := []struct {
		name    string
		created bool
		status  int
	}{
		{"new enrollment", true, http.StatusCreated},
		{"re-enrollment", false, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := enrollmentRouter(NewEnrollmentHandler(&stubEnrollmentService{created: tt.created}, zap.NewNop()))

			rec := do(t, r, http.MethodPost, "/api/enrollments/", `{"event":"`+uuid.NewString()+`"}`, &seeker)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "enrolled", decodeBody(t, rec)["status"])
		})
	}
}

func TestEnrollmentHandler_CreateRejected(t *testing.T) {
	svc := &stubEnrollmentService{err: apperror.BadRequest(apperror.CodeCapacityFull, "This event is full.")}
	r := enrollmentRouter(NewEnrollmentHandler(svc, zap.NewNop()))

	rec := do(t, r, http.MethodPost, "/api/enrollments/", `{"event":"`+uuid.NewString()+`"}`, &seeker)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CodeCapacityFull, decodeBody(t, rec)["code"])
}

func TestEnrollmentHandler_Listings(t *testing.T) {
	svc := &stubEnrollmentService{}
	r := enrollmentRouter(NewEnrollmentHandler(svc, zap.NewNop()))

	for path, scope := range map[string]string{
		"/api/enrollments/":         "all",
		"/api/enrollments/past":     "past",
		"/api/enrollments/upcoming": "upcoming",
	} {
		rec := do(t, r, http.MethodGet, path, "", &seeker)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, scope, svc.scope, path)
		assert.JSONEq(t, "[]", rec.Body.String(), path)
	}
}

func TestEnrollmentHandler_UpdateAndCancel(t *testing.T) {
	svc := &stubEnrollmentService{}
	r := enrollmentRouter(NewEnrollmentHandler(svc, zap.NewNop()))
	id := uuid.NewString()

	rec := do(t, r, http.MethodPatch, "/api/enrollments/"+id, `{"status":"canceled"}`, &seeker)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "canceled", decodeBody(t, rec)["status"])

	rec = do(t, r, http.MethodDelete, "/api/enrollments/"+id, "", &seeker)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "canceled", decodeBody(t, rec)["status"])
	assert.Equal(t, id, svc.canceled)
}

func TestEnrollmentHandler_GetNotFound(t *testing.T) {
	svc := &stubEnrollmentService{err: apperror.NotFound(apperror.CodeNotFound, "Not found.")}
	r := enrollmentRouter(NewEnrollmentHandler(svc, zap.NewNop()))

	rec := do(t, r, http.MethodGet, "/api/enrollments/"+uuid.NewString(), "", &seeker)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperror.CodeNotFound, decodeBody(t, rec)["code"])
}

func TestEnrollmentHandler_Roster(t *testing.T) {
	r := enrollmentRouter(NewEnrollmentHandler(&stubEnrollmentService{}, zap.NewNop()))

	rec := do(t, r, http.MethodGet, "/api/events/"+uuid.NewString()+"/enrollments", "", &seeker)

	require.Equal(t, http.StatusOK, rec.Code)
	var roster []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &roster))
	assert.Len(t, roster, 1)
}
