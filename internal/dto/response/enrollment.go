package response

import (
	"time"

	"events-platform/internal/data/entity"
)

type EnrollmentResponse struct {
	ID            string                  `json:"id"`
	Event         string                  `json:"event"`
	EventTitle    string                  `json:"event_title"`
	EventStartsAt time.Time               `json:"event_starts_at"`
	EventEndsAt   time.Time               `json:"event_ends_at"`
	EventLocation string                  `json:"event_location"`
	EventLanguage string                  `json:"event_language"`
	Seeker        string                  `json:"seeker"`
	SeekerEmail   string                  `json:"seeker_email"`
	Status        entity.EnrollmentStatus `json:"status"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

func EnrollmentToResponse(d *entity.EnrollmentDetail) EnrollmentResponse {
	return EnrollmentResponse{
		ID:            d.ID.String(),
		Event:         d.EventID.String(),
		EventTitle:    d.EventTitle,
		EventStartsAt: d.EventStartsAt,
		EventEndsAt:   d.EventEndsAt,
		EventLocation: d.EventLocation,
		EventLanguage: d.EventLanguage,
		Seeker:        d.SeekerID.String(),
		SeekerEmail:   d.SeekerEmail,
		Status:        d.Status,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func EnrollmentsToResponse(details []entity.EnrollmentDetail) []EnrollmentResponse {
	out := make([]EnrollmentResponse, 0, len(details))
	for i := range details {
		out = append(out, EnrollmentToResponse(&details[i]))
	}
	return out
}
