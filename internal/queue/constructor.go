package queue

import (
	"github.com/blogpilot/blogpilot/internal/service"
	"github.com/blogpilot/blogpilot/internal/transfer"
)

type Queue struct {
	cs service.ContentService
	ss service.SchedulerService
}

func NewQueue(cs service.ContentService, ss service.SchedulerService) *Queue {
	return &Queue{
		cs: cs,
		ss: ss,
	}
}

const (
	TaskTypeBulkGenerate    = "generate:bulk"
	TaskTypePromoteSchedule = "schedule:promote"
)

type BulkGeneratePayload struct {
	UserID  int64                        `json:"user_id"`
	Request transfer.BulkGenerateRequest `json:"request"`
}

type PromoteSchedulePayload struct {
	ScheduleID int64 `json:"schedule_id"`
}
