package handlers

import (
	"time"

	"nja-ledger/internal/adapters/http/middleware"
	"nja-ledger/internal/adapters/persistence/repositories"
	"nja-ledger/internal/core/services"
	"nja-ledger/internal/pkg/pagination"
	"nja-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// WithdrawalHandler handles withdrawal workflow requests
type WithdrawalHandler struct {
	withdrawalService *services.WithdrawalService
}

// NewWithdrawalHandler creates a new withdrawal handler
func NewWithdrawalHandler(withdrawalService *services.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalService: withdrawalService}
}

type createWithdrawalRequest struct {
	MemberID uint            `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
	Reason   string          `json:"reason"`
}

// Create submits a withdrawal request
func (h *WithdrawalHandler) Create(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "not authenticated")
	}

	var req createWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	// Members request for themselves; administrators may file on behalf
	// of any member.
	memberID := req.MemberID
	if memberID == 0 || !actor.Admin {
		memberID = actor.ID
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			return response.BadRequest(c, "invalid date format, use YYYY-MM-DD")
		}
		date = parsed
	}

	withdrawal, err := h.withdrawalService.Request(c.Context(), &services.RequestWithdrawalInput{
		MemberID: memberID,
		Amount:   req.Amount,
		Date:     date,
		Reason:   req.Reason,
	}, actor)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Created(c, "withdrawal request submitted", withdrawal)
}

// List lists withdrawals matching the query filters
func (h *WithdrawalHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	filter := repositories.WithdrawalFilter{
		MemberID: queryUintPtr(c, "member_id"),
		Status:   c.Query("status"),
		DateFrom: queryDatePtr(c, "date_from"),
		DateTo:   queryDatePtr(c, "date_to"),
	}

	withdrawals, total, err := h.withdrawalService.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "withdrawals retrieved", pagination.NewResponse(withdrawals, params, total))
}

// Get gets a withdrawal by ID
func (h *WithdrawalHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "invalid withdrawal id")
	}

	withdrawal, err := h.withdrawalService.GetByID(c.Context(), id)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "withdrawal retrieved", withdrawal)
}

type decideWithdrawalRequest struct {
	Status string `json:"status"`
}

// Decide approves or rejects a pending withdrawal
func (h *WithdrawalHandler) Decide(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "not authenticated")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "invalid withdrawal id")
	}

	var req decideWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	withdrawal, err := h.withdrawalService.Decide(c.Context(), id, req.Status, actor)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "withdrawal "+withdrawal.Status, withdrawal)
}
