package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/blogpilot/blogpilot/internal/models"
	"github.com/blogpilot/blogpilot/internal/queue"
	"github.com/blogpilot/blogpilot/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

type ScheduleHandler struct {
	s           service.SchedulerService
	AsynqClient *asynq.Client
}

func NewScheduleHandler(service service.SchedulerService, asynqClient *asynq.Client) *ScheduleHandler {
	return &ScheduleHandler{s: service, AsynqClient: asynqClient}
}

func (h *ScheduleHandler) ListSchedules(c *fiber.Ctx) error {
	userID := GetUserID(c)

	schedules, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list schedules",
		})
	}

	return c.Status(fiber.StatusOK).JSON(schedules)
}

func (h *ScheduleHandler) PublicationHistory(c *fiber.Ctx) error {
	userID := GetUserID(c)
	scheduleID := c.QueryInt("id", 0)

	entries, err := h.s.History(c.Context(), userID, int64(scheduleID))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to get publication history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(entries)
}

func (h *ScheduleHandler) ScheduleDraft(c *fiber.Ctx) error {
	userID := GetUserID(c)

	scheduleID := c.QueryInt("id", 0)
	date := c.Query("date")
	timeOfDay := c.Query("time")

	sched, err := h.s.ScheduleDraft(c.Context(), userID, int64(scheduleID), date, timeOfDay)
	if err != nil {
		if errors.Is(err, models.ErrSchedulingConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	delay := time.Until(sched.PublishAt)
	if delay < 0 {
		delay = 0
	}
	err = queue.EnqueuePromotion(h.AsynqClient, queue.PromoteSchedulePayload{ScheduleID: sched.ID}, delay)
	if err != nil {
		// The poller still picks the schedule up; the nudge is best effort.
		slog.Warn("failed to enqueue promotion task", "schedule_id", sched.ID, "error", err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(sched)
}

func (h *ScheduleHandler) CancelSchedule(c *fiber.Ctx) error {
	userID := GetUserID(c)
	scheduleID := c.QueryInt("id", 0)

	err := h.s.Cancel(c.Context(), userID, int64(scheduleID))
	if err != nil {
		if errors.Is(err, models.ErrSchedulingConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
