package handlers

import (
	"nja-ledger/internal/adapters/persistence/repositories"
	"nja-ledger/internal/pkg/pagination"
	"nja-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TransactionHandler exposes the read side of the audit trail. It talks
// to the repository directly; the log has no business rules to enforce
// on reads.
type TransactionHandler struct {
	logRepo *repositories.TransactionLogRepository
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logRepo *repositories.TransactionLogRepository) *TransactionHandler {
	return &TransactionHandler{logRepo: logRepo}
}

// List lists audit trail entries, newest first
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	filter := repositories.TransactionLogFilter{
		MemberID: queryUintPtr(c, "member_id"),
		Type:     c.Query("type"),
		DateFrom: queryDatePtr(c, "date_from"),
		DateTo:   queryDatePtr(c, "date_to"),
	}

	entries, total, err := h.logRepo.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "failed to list transactions")
	}
	return response.Success(c, "transactions retrieved", pagination.NewResponse(entries, params, total))
}
