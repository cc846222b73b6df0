package entity

// UserRole is the closed set of account roles.
type UserRole string

const (
	RoleSeeker      UserRole = "Seeker"
	RoleFacilitator UserRole = "Facilitator"
)

func (r UserRole) Valid() bool {
	return r == RoleSeeker || r == RoleFacilitator
}

type User struct {
	Base
	Email         string   `db:"email"`
	PasswordHash  string   `db:"password"`
	Role          UserRole `db:"role"`
	EmailVerified bool     `db:"email_verified"`
	IsActive      bool     `db:"is_active"`
}
