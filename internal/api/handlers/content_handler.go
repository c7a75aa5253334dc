package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/blogpilot/blogpilot/internal/models"
	"github.com/blogpilot/blogpilot/internal/queue"
	"github.com/blogpilot/blogpilot/internal/service"
	"github.com/blogpilot/blogpilot/internal/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

type ContentHandler struct {
	s           service.ContentService
	AsynqClient *asynq.Client
}

func NewContentHandler(service service.ContentService, asynqClient *asynq.Client) *ContentHandler {
	return &ContentHandler{s: service, AsynqClient: asynqClient}
}

func (h *ContentHandler) Generate(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	resp, err := h.s.Generate(c.Context(), userID, &req)
	if err != nil {
		var pubErr *models.PublishError
		if errors.As(err, &pubErr) && resp != nil {
			// Content was generated and saved; only immediate publication
			// failed. Return the content so the caller can retry.
			return c.Status(fiber.StatusBadGateway).JSON(resp)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if resp.Scheduling != nil && resp.Scheduling.Status == models.ScheduleStatusScheduled {
		h.nudgePromotion(resp.Scheduling)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// nudgePromotion enqueues a delayed task so the schedule is promoted at its
// publish instant. The cron poller covers the case where the nudge is lost.
func (h *ContentHandler) nudgePromotion(outcome *transfer.SchedulingOutcome) {
	publishAt, err := time.Parse(time.RFC3339, outcome.PublishAt)
	if err != nil {
		slog.Warn("invalid publish instant on scheduling outcome", "schedule_id", outcome.ScheduleID, "error", err.Error())
		return
	}

	delay := time.Until(publishAt)
	if delay < 0 {
		delay = 0
	}

	err = queue.EnqueuePromotion(h.AsynqClient, queue.PromoteSchedulePayload{ScheduleID: outcome.ScheduleID}, delay)
	if err != nil {
		slog.Warn("failed to enqueue promotion task", "schedule_id", outcome.ScheduleID, "error", err.Error())
	}
}

func (h *ContentHandler) GenerateBulk(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.BulkGenerateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if len(req.Topics) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No topics provided",
		})
	}

	err := queue.EnqueueBulkGenerate(h.AsynqClient, queue.BulkGeneratePayload{
		UserID:  userID,
		Request: req,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error enqueuing bulk generation",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Bulk generation started",
		"topics":  len(req.Topics),
	})
}

func (h *ContentHandler) ListContents(c *fiber.Ctx) error {
	userID := GetUserID(c)

	contents, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list generated contents",
		})
	}

	return c.Status(fiber.StatusOK).JSON(contents)
}
