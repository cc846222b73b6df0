package jobs

import (
	"context"
	"fmt"

	"events-platform/internal/usecase"
	"events-platform/pkg/queue"

	"github.com/google/uuid"
)

type followupSender interface {
	SendFollowup(ctx context.Context, enrollmentID uuid.UUID) error
}

// FollowupHandler sends the delayed enrollment confirmation.
func FollowupHandler(sender followupSender) TaskHandler {
	return func(ctx context.Context, task queue.Task) error {
		var payload usecase.FollowupPayload
		if err := task.Decode(&payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", task.Name, err)
		}
		if payload.EnrollmentID == uuid.Nil {
			return fmt.Errorf("%s task %s has no enrollment id", task.Name, task.ID)
		}
		return sender.SendFollowup(ctx, payload.EnrollmentID)
	}
}
