package entity

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	BaseNoDelete
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Language    string    `db:"language"`
	Location    string    `db:"location"`
	StartsAt    time.Time `db:"starts_at"`
	EndsAt      time.Time `db:"ends_at"`
	Capacity    *int      `db:"capacity"`
	CreatedBy   uuid.UUID `db:"created_by"`
}

// IsPast reports whether the event has already ended.
func (e *Event) IsPast(now time.Time) bool {
	return now.After(e.EndsAt)
}

// EventSummary is an event joined with its creator and enrolled count.
type EventSummary struct {
	Event
	CreatorEmail  string `db:"creator_email"`
	EnrolledCount int    `db:"enrolled_count"`
}

// AvailableSeats is nil for uncapped events and never negative.
func (e *EventSummary) AvailableSeats() *int {
	if e.Capacity == nil {
		return nil
	}
	seats := *e.Capacity - e.EnrolledCount
	if seats < 0 {
		seats = 0
	}
	return &seats
}

// IsFull reports whether a capped event has no seats left.
func (e *EventSummary) IsFull() bool {
	seats := e.AvailableSeats()
	return seats != nil && *seats <= 0
}
