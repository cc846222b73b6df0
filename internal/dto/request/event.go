package request

import (
	"encoding/json"
	"time"
)

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required"`
	Language    string    `json:"language" validate:"required,max=50"`
	Location    string    `json:"location" validate:"required,max=200"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Capacity    *int      `json:"capacity" validate:"omitempty,gte=1"`
}

// OptionalInt tells an absent field apart from an explicit null.
type OptionalInt struct {
	Set   bool
	Value *int
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// UpdateEventRequest is a partial update; nil fields keep their value.
// Capacity sent as null removes the seat limit.
type UpdateEventRequest struct {
	Title       *string     `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string     `json:"description" validate:"omitempty,min=1"`
	Language    *string     `json:"language" validate:"omitempty,min=1,max=50"`
	Location    *string     `json:"location" validate:"omitempty,min=1,max=200"`
	StartsAt    *time.Time  `json:"starts_at"`
	EndsAt      *time.Time  `json:"ends_at"`
	Capacity    OptionalInt `json:"capacity"`
}

// EventListRequest is built from the query string of GET /api/events.
type EventListRequest struct {
	PaginatedRequest
	Location     string
	Language     string
	Query        string
	StartsAfter  *time.Time
	StartsBefore *time.Time
}
