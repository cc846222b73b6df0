package entity

import (
	"time"

	"github.com/google/uuid"
)

type EnrollmentStatus string

const (
	EnrollmentStatusEnrolled EnrollmentStatus = "enrolled"
	EnrollmentStatusCanceled EnrollmentStatus = "canceled"
)

// Enrollment is unique per (event, seeker); its status toggles, the row stays.
type Enrollment struct {
	BaseNoDelete
	EventID  uuid.UUID        `db:"event_id"`
	SeekerID uuid.UUID        `db:"seeker_id"`
	Status   EnrollmentStatus `db:"status"`
}

func (e *Enrollment) IsEnrolled() bool {
	return e.Status == EnrollmentStatusEnrolled
}

// EnrollmentDetail is an enrollment joined with its event and seeker.
type EnrollmentDetail struct {
	Enrollment
	EventTitle    string    `db:"event_title"`
	EventStartsAt time.Time `db:"event_starts_at"`
	EventEndsAt   time.Time `db:"event_ends_at"`
	EventLocation string    `db:"event_location"`
	EventLanguage string    `db:"event_language"`
	SeekerEmail   string    `db:"seeker_email"`
}
