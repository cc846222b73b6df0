package adaptor

import (
	"net/http"

	"events-platform/internal/dto/request"
	"events-platform/internal/usecase"
	"events-platform/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.Signup(r.Context(), &req); err != nil {
		writeError(w, h.log, err, "signup")
		return
	}

	utils.ResponseMessage(w, http.StatusCreated,
		"User registered successfully. Please verify your email with the OTP sent.",
		"signup_success")
}

// VerifyEmail handles POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.VerifyEmail(r.Context(), &req); err != nil {
		writeError(w, h.log, err, "verify email")
		return
	}

	utils.ResponseMessage(w, http.StatusOK, "Email verified successfully.", "email_verified")
}

// ResendOTP handles POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req request.ResendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ResendOTP(r.Context(), &req); err != nil {
		writeError(w, h.log, err, "resend otp")
		return
	}

	utils.ResponseMessage(w, http.StatusOK, "A new OTP has been sent to your email.", "otp_sent")
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tokens, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, tokens)
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req request.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	access, err := h.service.Refresh(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err, "refresh token")
		return
	}

	utils.ResponseSuccess(w, access)
}
