package job

import (
	"context"
	"log/slog"

	"github.com/blogpilot/blogpilot/internal/service"
)

// PromoteSchedulesJob is the polling side of promotion. It sweeps everything
// due on each tick; queue nudges only make publication more punctual.
type PromoteSchedulesJob struct {
	ss service.SchedulerService
}

func NewPromoteSchedulesJob(ss service.SchedulerService) *PromoteSchedulesJob {
	return &PromoteSchedulesJob{
		ss: ss,
	}
}

func (c *PromoteSchedulesJob) PromoteDue() {
	ctx := context.Background()

	if err := c.ss.PromoteDueSchedules(ctx); err != nil {
		slog.Info(err.Error())
	}
}
