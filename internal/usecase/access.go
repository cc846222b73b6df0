package usecase

import "events-platform/internal/data/entity"

// Action is a capability checked against the caller's role.
type Action string

const (
	ActionViewEvents      Action = "events:view"
	ActionManageEvents    Action = "events:manage"
	ActionEnroll          Action = "enrollments:create"
	ActionViewEnrollments Action = "enrollments:view"
)

var capabilities = map[entity.UserRole]map[Action]bool{
	entity.RoleSeeker: {
		ActionViewEvents:      true,
		ActionEnroll:          true,
		ActionViewEnrollments: true,
	},
	entity.RoleFacilitator: {
		ActionViewEvents:   true,
		ActionManageEvents: true,
	},
}

// Can reports whether role grants action. Unknown roles grant nothing.
func Can(role entity.UserRole, action Action) bool {
	return capabilities[role][action]
}
