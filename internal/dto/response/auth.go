package response

import (
	"time"

	"events-platform/internal/data/entity"
)

type AccessResponse struct {
	Access string `json:"access"`
}

type ProfileResponse struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	Role            entity.UserRole `json:"role"`
	IsEmailVerified bool            `json:"is_email_verified"`
	DateJoined      time.Time       `json:"date_joined"`
}

func UserToProfile(user *entity.User) ProfileResponse {
	return ProfileResponse{
		ID:              user.ID.String(),
		Email:           user.Email,
		Role:            user.Role,
		IsEmailVerified: user.EmailVerified,
		DateJoined:      user.CreatedAt,
	}
}
