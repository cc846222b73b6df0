package request

type CreateEnrollmentRequest struct {
	Event string `json:"event"`
}

type UpdateEnrollmentRequest struct {
	Status string `json:"status" validate:"required,oneof=enrolled canceled"`
}
