package entity

import (
	"time"
)

// EmailOTP is a one-time code sent to an address to prove ownership.
type EmailOTP struct {
	BaseSimple
	Email    string `db:"email"`
	Code     string `db:"code"`
	Attempts int    `db:"attempts"`
	IsUsed   bool   `db:"is_used"`
}

func (o *EmailOTP) ExpiresAt(window time.Duration) time.Time {
	return o.CreatedAt.Add(window)
}

func (o *EmailOTP) IsExpired(now time.Time, window time.Duration) bool {
	return now.After(o.ExpiresAt(window))
}

// CanAttempt reports whether another submission may be checked.
func (o *EmailOTP) CanAttempt(now time.Time, window time.Duration, maxAttempts int) bool {
	return o.Attempts < maxAttempts && !o.IsUsed && !o.IsExpired(now, window)
}
