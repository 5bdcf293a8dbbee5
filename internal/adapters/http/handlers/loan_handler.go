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

// LoanHandler handles loan workflow and repayment requests
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

type createLoanRequest struct {
	MemberID      uint            `json:"member_id"`
	Amount        decimal.Decimal `json:"amount"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	Purpose       string          `json:"purpose"`
	RequestedDate string          `json:"requested_date"`
	DueDate       string          `json:"due_date"`
	Notes         string          `json:"notes"`
}

// Create submits a loan request
func (h *LoanHandler) Create(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "not authenticated")
	}

	var req createLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	memberID := req.MemberID
	if memberID == 0 || !actor.Admin {
		memberID = actor.ID
	}

	requestedDate := time.Now()
	if req.RequestedDate != "" {
		parsed, err := parseDate(req.RequestedDate)
		if err != nil {
			return response.BadRequest(c, "invalid requested_date format, use YYYY-MM-DD")
		}
		requestedDate = parsed
	}
	if req.DueDate == "" {
		return response.BadRequest(c, "due_date is required")
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return response.BadRequest(c, "invalid due_date format, use YYYY-MM-DD")
	}

	loan, err := h.loanService.Request(c.Context(), &services.RequestLoanInput{
		MemberID:      memberID,
		Amount:        req.Amount,
		InterestRate:  req.InterestRate,
		Purpose:       req.Purpose,
		RequestedDate: requestedDate,
		DueDate:       dueDate,
		Notes:         req.Notes,
	}, actor)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Created(c, "loan request submitted", loan.ToResponse())
}

// List lists loans matching the query filters
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	filter := repositories.LoanFilter{
		MemberID: queryUintPtr(c, "member_id"),
		Status:   c.Query("status"),
	}

	loans, total, err := h.loanService.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return handleDomainError(c, err)
	}

	responses := make([]interface{}, 0, len(loans))
	for _, l := range loans {
		responses = append(responses, l.ToResponse())
	}
	return response.Success(c, "loans retrieved", pagination.NewResponse(responses, params, total))
}

// Get gets a loan with its derived repayment figures
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "invalid loan id")
	}

	detail, err := h.loanService.GetDetail(c.Context(), id)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "loan retrieved", detail)
}

type decideLoanRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

// Decide approves or rejects a pending loan
func (h *LoanHandler) Decide(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "not authenticated")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "invalid loan id")
	}

	var req decideLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	loan, err := h.loanService.Decide(c.Context(), id, req.Decision, actor, req.Notes)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "loan "+loan.Status, loan.ToResponse())
}

type defaultLoanRequest struct {
	Notes string `json:"notes"`
}

// Default marks an active loan as defaulted
func (h *LoanHandler) Default(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "not authenticated")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "invalid loan id")
	}

	var req defaultLoanRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "invalid request body")
	}

	loan, err := h.loanService.MarkDefaulted(c.Context(), id, actor, req.Notes)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "loan marked as defaulted", loan.ToResponse())
}

type createRepaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"`
	Notes       string          `json:"notes"`
}

// CreateRepayment records a repayment against a loan
func (h *LoanHandler) CreateRepayment(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "not authenticated")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "invalid loan id")
	}

	var req createRepaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	paymentDate := time.Now()
	if req.PaymentDate != "" {
		parsed, err := parseDate(req.PaymentDate)
		if err != nil {
			return response.BadRequest(c, "invalid payment_date format, use YYYY-MM-DD")
		}
		paymentDate = parsed
	}

	repayment, err := h.loanService.RecordRepayment(c.Context(), id, &services.RecordRepaymentInput{
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Notes:       req.Notes,
	}, actor)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Created(c, "repayment recorded", repayment)
}

// ListRepayments lists repayments for a loan
func (h *LoanHandler) ListRepayments(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "invalid loan id")
	}

	repayments, err := h.loanService.ListRepayments(c.Context(), id)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "repayments retrieved", repayments)
}
