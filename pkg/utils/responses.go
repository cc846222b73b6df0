package utils

import (
	"encoding/json"
	"net/http"

	"events-platform/pkg/apperror"
)

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Errors map[string]string `json:"errors,omitempty"`
}

// MessageResponse acknowledges an action that has no resource to return.
type MessageResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// ResponseJSON writes JSON response with custom status code
func ResponseJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if body == nil {
		return
	}
	json.NewEncoder(w).Encode(body)
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, data any) {
	ResponseJSON(w, http.StatusOK, data)
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, data any) {
	ResponseJSON(w, http.StatusCreated, data)
}

// returns 204 No Content
func ResponseNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func ResponseMessage(w http.ResponseWriter, status int, detail, code string) {
	ResponseJSON(w, status, MessageResponse{Detail: detail, Code: code})
}

// ------------- Error responses -------------

// ResponseError writes the {detail, code} envelope of an AppError.
func ResponseError(w http.ResponseWriter, err *apperror.AppError) {
	ResponseJSON(w, err.Status, ErrorResponse{
		Detail: err.Detail,
		Code:   err.Code,
		Errors: err.Fields,
	})
}

// returns 400 Bad Request
func ResponseBadRequest(w http.ResponseWriter, code, detail string) {
	ResponseError(w, apperror.BadRequest(code, detail))
}

// returns 401 Unauthorized
func ResponseUnauthorized(w http.ResponseWriter, code, detail string) {
	ResponseError(w, apperror.Unauthorized(code, detail))
}

// returns 403 Forbidden
func ResponseForbidden(w http.ResponseWriter, code, detail string) {
	ResponseError(w, apperror.Forbidden(code, detail))
}

// returns 404 Not Found
func ResponseNotFound(w http.ResponseWriter, code, detail string) {
	ResponseError(w, apperror.NotFound(code, detail))
}

// returns 405 Method Not Allowed
func ResponseMethodNotAllowed(w http.ResponseWriter, detail string) {
	ResponseError(w, apperror.MethodNotAllowed(detail))
}

// returns 500 Internal Server Error
func ResponseInternalError(w http.ResponseWriter) {
	ResponseError(w, apperror.Internal(nil))
}
