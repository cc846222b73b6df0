package response

import (
	"time"

	"events-platform/internal/data/entity"
)

type EventResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Language         string    `json:"language"`
	Location         string    `json:"location"`
	StartsAt         time.Time `json:"starts_at"`
	EndsAt           time.Time `json:"ends_at"`
	Capacity         *int      `json:"capacity"`
	CreatedBy        string    `json:"created_by"`
	CreatedByEmail   string    `json:"created_by_email"`
	AvailableSeats   *int      `json:"available_seats"`
	TotalEnrollments int       `json:"total_enrollments"`
	IsPast           bool      `json:"is_past"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func EventToResponse(e *entity.EventSummary, now time.Time) EventResponse {
	return EventResponse{
		ID:               e.ID.String(),
		Title:            e.Title,
		Description:      e.Description,
		Language:         e.Language,
		Location:         e.Location,
		StartsAt:         e.StartsAt,
		EndsAt:           e.EndsAt,
		Capacity:         e.Capacity,
		CreatedBy:        e.CreatedBy.String(),
		CreatedByEmail:   e.CreatorEmail,
		AvailableSeats:   e.AvailableSeats(),
		TotalEnrollments: e.EnrolledCount,
		IsPast:           e.IsPast(now),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
