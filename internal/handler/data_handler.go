package handler

import (
	"errors"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/middleware"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/port"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/service"
	"github.com/gofiber/fiber/v3"
)

// DataHandler exposes the sync, classification, stats, and refresh
// pipeline stages per item kind.
type DataHandler struct {
	refresh *service.RefreshService
}

// NewDataHandler creates a new data handler.
func NewDataHandler(refresh *service.RefreshService) *DataHandler {
	return &DataHandler{refresh: refresh}
}

// Register sets up data routes.
func (h *DataHandler) Register(router fiber.Router) {
	data := router.Group("/data")

	data.Post("/sync/mail", h.SyncMail)
	data.Post("/sync/event", h.SyncEvents)
	data.Post("/classify/mail", h.ClassifyMail)
	data.Post("/classify/event", h.ClassifyEvents)
	data.Get("/stats/mail", h.MailStats)
	data.Get("/stats/event", h.EventStats)
	data.Post("/refresh/mail", h.RefreshMail)
	data.Post("/refresh/event", h.RefreshEvents)
}

// SyncMail fetches new messages from Gmail and reconciles them.
func (h *DataHandler) SyncMail(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	result, err := h.refresh.SyncMail(c.Context(), uc.UserID)
	if err != nil {
		return pipelineError(c, err)
	}
	return syncResponse(c, result)
}

// SyncEvents fetches new events from Google Calendar and reconciles them.
func (h *DataHandler) SyncEvents(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	result, err := h.refresh.SyncEvents(c.Context(), uc.UserID)
	if err != nil {
		return pipelineError(c, err)
	}
	return syncResponse(c, result)
}

// ClassifyMail classifies all uncategorized mail rows.
func (h *DataHandler) ClassifyMail(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	updated, err := h.refresh.ClassifyMail(c.Context(), uc.UserID)
	if err != nil {
		return pipelineError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "updated_count": updated})
}

// ClassifyEvents classifies all uncategorized event rows.
func (h *DataHandler) ClassifyEvents(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	updated, err := h.refresh.ClassifyEvents(c.Context(), uc.UserID)
	if err != nil {
		return pipelineError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "updated_count": updated})
}

// MailStats returns the per-category mail report.
func (h *DataHandler) MailStats(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	report, err := h.refresh.MailStats(c.Context(), uc.UserID)
	if err != nil {
		return pipelineError(c, err)
	}
	return reportResponse(c, report)
}

// EventStats returns the per-category event report.
func (h *DataHandler) EventStats(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	report, err := h.refresh.EventStats(c.Context(), uc.UserID)
	if err != nil {
		return pipelineError(c, err)
	}
	return reportResponse(c, report)
}

// RefreshMail runs the full mail pipeline: sync, classify, stats.
func (h *DataHandler) RefreshMail(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	report, err := h.refresh.RefreshMail(c.Context(), uc.UserID)
	if err != nil {
		return pipelineError(c, err)
	}
	return reportResponse(c, report)
}

// RefreshEvents runs the full event pipeline: sync, classify, stats.
func (h *DataHandler) RefreshEvents(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	report, err := h.refresh.RefreshEvents(c.Context(), uc.UserID)
	if err != nil {
		return pipelineError(c, err)
	}
	return reportResponse(c, report)
}

func syncResponse(c fiber.Ctx, result *domain.SyncResult) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"synced":  result.Inserted,
		"skipped": result.Skipped(),
		"deleted": result.Deleted,
	})
}

func reportResponse(c fiber.Ctx, report *domain.CategoryReport) error {
	return c.JSON(fiber.Map{
		"status":        "ok",
		"total":         report.Total,
		"categoryCount": report.CategoryCount,
		"categories":    report.Categories,
	})
}

// pipelineError maps pipeline failures to HTTP statuses. A user without a
// stored credential gets 404; everything else is a 500.
func pipelineError(c fiber.Ctx, err error) error {
	if errors.Is(err, port.ErrNoCredential) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no linked account, sign in with Google first",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
