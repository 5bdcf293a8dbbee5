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

// ContributionHandler handles contribution ledger requests
type ContributionHandler struct {
	contributionService *services.ContributionService
}

// NewContributionHandler creates a new contribution handler
func NewContributionHandler(contributionService *services.ContributionService) *ContributionHandler {
	return &ContributionHandler{contributionService: contributionService}
}

type createContributionRequest struct {
	MemberID    uint            `json:"member_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// Create records a contribution
func (h *ContributionHandler) Create(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "not authenticated")
	}

	var req createContributionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			return response.BadRequest(c, "invalid date format, use YYYY-MM-DD")
		}
		date = parsed
	}

	contribution, err := h.contributionService.Record(c.Context(), &services.RecordContributionInput{
		MemberID:    req.MemberID,
		Amount:      req.Amount,
		Date:        date,
		Category:    req.Category,
		Description: req.Description,
	}, actor)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Created(c, "contribution recorded", contribution)
}

// List lists contributions matching the query filters
func (h *ContributionHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	filter := repositories.ContributionFilter{
		MemberID: queryUintPtr(c, "member_id"),
		Category: c.Query("category"),
		DateFrom: queryDatePtr(c, "date_from"),
		DateTo:   queryDatePtr(c, "date_to"),
	}

	contributions, total, err := h.contributionService.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "contributions retrieved", pagination.NewResponse(contributions, params, total))
}

// Get gets a contribution by ID
func (h *ContributionHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "invalid contribution id")
	}

	contribution, err := h.contributionService.GetByID(c.Context(), id)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "contribution retrieved", contribution)
}

// CategoryTotals returns per-category sums for the query filters
func (h *ContributionHandler) CategoryTotals(c *fiber.Ctx) error {
	filter := repositories.ContributionFilter{
		MemberID: queryUintPtr(c, "member_id"),
		DateFrom: queryDatePtr(c, "date_from"),
		DateTo:   queryDatePtr(c, "date_to"),
	}

	totals, err := h.contributionService.CategoryTotals(c.Context(), filter)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "category totals retrieved", totals)
}
