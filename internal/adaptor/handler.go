package adaptor

import (
	"encoding/json"
	"net/http"

	"events-platform/internal/usecase"
	"events-platform/pkg/apperror"
	"events-platform/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Event      *EventHandler
	Enrollment *EnrollmentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(service.Auth, log),
		User:       NewUserHandler(service.User, log),
		Event:      NewEventHandler(service.Event, log),
		Enrollment: NewEnrollmentHandler(service.Enrollment, log),
	}
}

// writeError renders expected failures with their own status and code.
// Anything else is logged and reported as a 500.
func writeError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	if appErr, ok := apperror.As(err); ok && appErr.Status < http.StatusInternalServerError {
		log.Warn(operation+" failed",
			zap.String("code", appErr.Code),
			zap.String("detail", appErr.Detail),
		)
		utils.ResponseError(w, appErr)
		return
	}

	log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
	utils.ResponseInternalError(w)
}

// decodeJSON reads the request body into dst and answers 400 on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, apperror.CodeValidation, "Invalid request body.")
		return false
	}
	return true
}

// principal returns the caller set by the auth middleware.
func principal(w http.ResponseWriter, r *http.Request) (utils.Principal, bool) {
	p, ok := utils.GetPrincipal(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, apperror.CodeNotAuthenticated, "Authentication credentials were not provided.")
		return utils.Principal{}, false
	}
	return p, true
}
