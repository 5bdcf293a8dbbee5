package handlers

import (
	"errors"

	"nja-ledger/internal/adapters/http/middleware"
	"nja-ledger/internal/core/services"
	"nja-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService   *services.AuthService
	memberService *services.MemberService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, memberService *services.MemberService) *AuthHandler {
	return &AuthHandler{authService: authService, memberService: memberService}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns an access token
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "email and password are required")
	}

	token, member, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, err.Error())
		case errors.Is(err, services.ErrAccountInactive):
			return response.Forbidden(c, err.Error())
		default:
			return response.InternalServerError(c, "login failed")
		}
	}

	return response.Success(c, "login successful", fiber.Map{
		"access_token": token,
		"member":       member.ToResponse(),
	})
}

// Me returns the authenticated member's own account
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "not authenticated")
	}

	member, err := h.memberService.GetByID(c.Context(), actor.ID)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "ok", member.ToResponse())
}
