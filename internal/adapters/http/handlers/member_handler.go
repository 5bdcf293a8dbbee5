package handlers

import (
	"nja-ledger/internal/adapters/http/middleware"
	"nja-ledger/internal/adapters/persistence/models"
	"nja-ledger/internal/core/services"
	"nja-ledger/internal/pkg/pagination"
	"nja-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles member account requests
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// Register creates a new member account pending approval
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	member, err := h.memberService.Register(c.Context(), &input)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Created(c, "registration received, pending approval", member.ToResponse())
}

// List lists members with pagination
func (h *MemberHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	activeOnly := c.QueryBool("active_only", false)

	members, total, err := h.memberService.List(c.Context(), activeOnly, params.Offset, params.Limit)
	if err != nil {
		return handleDomainError(c, err)
	}

	responses := make([]*models.MemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, m.ToResponse())
	}
	return response.Success(c, "members retrieved", pagination.NewResponse(responses, params, total))
}

// Get gets a member by ID
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "invalid member id")
	}

	member, err := h.memberService.GetByID(c.Context(), id)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "member retrieved", member.ToResponse())
}

// GetBalance returns the member's derived balance and contribution total
func (h *MemberHandler) GetBalance(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "invalid member id")
	}

	total, err := h.memberService.GetTotalContributions(c.Context(), id)
	if err != nil {
		return handleDomainError(c, err)
	}
	balance, err := h.memberService.GetBalance(c.Context(), id)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "balance retrieved", fiber.Map{
		"member_id":           id,
		"total_contributions": total,
		"balance":             balance,
	})
}

// Approve activates a pending member
func (h *MemberHandler) Approve(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "not authenticated")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "invalid member id")
	}

	member, err := h.memberService.Approve(c.Context(), id, actor)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "member approved", member.ToResponse())
}

// Deactivate disables a member account
func (h *MemberHandler) Deactivate(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "not authenticated")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "invalid member id")
	}

	member, err := h.memberService.Deactivate(c.Context(), id, actor)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "member deactivated", member.ToResponse())
}
