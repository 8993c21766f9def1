package handler

import (
	"strconv"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/adapter/store"
	"github.com/gofiber/fiber/v3"
)

// AuditHandler exposes the request audit trail.
type AuditHandler struct {
	store *store.PostgresStore
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(s *store.PostgresStore) *AuditHandler {
	return &AuditHandler{store: s}
}

// Register sets up audit routes.
func (h *AuditHandler) Register(router fiber.Router) {
	router.Get("/data/audit", h.List)
}

// List returns recent audit records, optionally filtered by action.
func (h *AuditHandler) List(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	action := c.Query("action", "")

	logs, err := h.store.ListAuditLogs(c.Context(), limit, action)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"logs": logs, "count": len(logs)})
}
