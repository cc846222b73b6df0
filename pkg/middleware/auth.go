package middleware

import (
	"context"
	"net/http"
	"strings"

	"events-platform/internal/data/entity"
	"events-platform/internal/usecase"
	"events-platform/pkg/apperror"
	"events-platform/pkg/jwt"
	"events-platform/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

// Auth validates the Bearer access token and loads the caller into the
// request context. The account is re-read on every request.
func Auth(jwtService *jwt.JWTService, users userFinder, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Extract token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, apperror.CodeNotAuthenticated, "Authentication credentials were not provided.")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				utils.ResponseUnauthorized(w, apperror.CodeNotAuthenticated, "Invalid token format. Use: Bearer <token>")
				return
			}

			// 2. Validate token
			claims, err := jwtService.ValidateToken(strings.TrimSpace(token), jwt.TokenTypeAccess)
			if err != nil {
				utils.ResponseUnauthorized(w, apperror.CodeTokenNotValid, "Token is invalid or expired.")
				return
			}

			// 3. Load user
			user, err := users.FindByID(r.Context(), claims.UserID)
			if err != nil {
				logger.Error("Failed to load authenticated user",
					zap.Error(err),
					zap.String("user_id", claims.UserID.String()),
				)
				utils.ResponseInternalError(w)
				return
			}
			if user == nil || !user.IsActive {
				utils.ResponseUnauthorized(w, apperror.CodeTokenNotValid, "User not found or inactive.")
				return
			}

			ctx := utils.SetPrincipal(r.Context(), utils.Principal{
				UserID:        user.ID,
				Email:         user.Email,
				Role:          user.Role,
				EmailVerified: user.EmailVerified,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireVerified rejects callers whose email is not verified yet.
func RequireVerified() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := utils.GetPrincipal(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, apperror.CodeNotAuthenticated, "Authentication credentials were not provided.")
				return
			}
			if !principal.EmailVerified {
				utils.ResponseForbidden(w, apperror.CodeEmailNotVerified, "Email is not verified. Please verify your email first.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCapability lets through callers whose role grants action.
func RequireCapability(action usecase.Action, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := utils.GetPrincipal(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, apperror.CodeNotAuthenticated, "Authentication credentials were not provided.")
				return
			}

			if !usecase.Can(principal.Role, action) {
				logger.Warn("Capability denied",
					zap.String("user_id", principal.UserID.String()),
					zap.String("role", string(principal.Role)),
					zap.String("action", string(action)),
					zap.String("path", r.URL.Path),
				)
				utils.ResponseForbidden(w, apperror.CodePermissionDenied, "You do not have permission to perform this action.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
