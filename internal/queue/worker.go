package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

func (j *Queue) HandleBulkGenerateTask(ctx context.Context, task *asynq.Task) error {
	var payload BulkGeneratePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	results := j.cs.GenerateBulk(ctx, payload.UserID, &payload.Request)
	for _, r := range results {
		if r.Error != "" {
			log.Printf("Bulk topic %q failed: %s", r.Title, r.Error)
		}
	}

	return nil
}

// HandlePromoteScheduleTask fires at the schedule's publish instant. The
// claim inside promotion keeps it safe against the poller handling the same
// schedule first.
func (j *Queue) HandlePromoteScheduleTask(ctx context.Context, task *asynq.Task) error {
	var payload PromoteSchedulePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return j.ss.PromoteOne(ctx, payload.ScheduleID)
}
