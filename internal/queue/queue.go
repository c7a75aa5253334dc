package queue

import (
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

func EnqueueBulkGenerate(asynqClient *asynq.Client, payload BulkGeneratePayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeBulkGenerate, taskPayload)

	_, err = asynqClient.Enqueue(task)
	if err != nil {
		return err
	}

	log.Printf("Bulk generation task enqueued: user=%d topics=%d", payload.UserID, len(payload.Request.Topics))
	return nil
}

// EnqueuePromotion registers a delayed task so a due schedule is picked up
// close to its publish instant instead of waiting for the next poll tick.
func EnqueuePromotion(asynqClient *asynq.Client, payload PromoteSchedulePayload, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePromoteSchedule, taskPayload)

	_, err = asynqClient.Enqueue(task, asynq.ProcessIn(delay))
	if err != nil {
		return err
	}

	log.Printf("Promotion task scheduled: %+v", payload)
	return nil
}
