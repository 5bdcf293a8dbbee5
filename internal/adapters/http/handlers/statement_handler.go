package handlers

import (
	"strconv"
	"time"

	"nja-ledger/internal/core/services"
	"nja-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// StatementHandler handles yearly statement requests
type StatementHandler struct {
	statementService *services.StatementService
}

// NewStatementHandler creates a new statement handler
func NewStatementHandler(statementService *services.StatementService) *StatementHandler {
	return &StatementHandler{statementService: statementService}
}

// Yearly returns the statement for a calendar year. The year comes
// from the path or the query string, defaulting to the current year.
func (h *StatementHandler) Yearly(c *fiber.Ctx) error {
	year := time.Now().Year()
	raw := c.Params("year")
	if raw == "" {
		raw = c.Query("year")
	}
	if raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1900 || parsed > 2200 {
			return response.BadRequest(c, "invalid year")
		}
		year = parsed
	}

	statement, err := h.statementService.Yearly(c.Context(), year)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "statement generated", statement)
}
