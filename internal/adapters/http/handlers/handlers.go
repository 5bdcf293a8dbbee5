package handlers

import (
	"errors"
	"strconv"
	"time"

	"nja-ledger/internal/core/domain"
	"nja-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// handleDomainError maps the ledger error taxonomy onto HTTP status
// codes. Every handler funnels service errors through here so the
// mapping lives in exactly one place.
func handleDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		return response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, domain.ErrPermissionDenied):
		return response.Forbidden(c, err.Error())
	default:
		return response.InternalServerError(c, "internal error")
	}
}

// parseDate parses a YYYY-MM-DD date string
func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

// parseIDParam parses the :id path parameter
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// queryUintPtr parses an optional uint query parameter
func queryUintPtr(c *fiber.Ctx, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	v := uint(id)
	return &v
}

// queryDatePtr parses an optional YYYY-MM-DD query parameter
func queryDatePtr(c *fiber.Ctx, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	d, err := parseDate(raw)
	if err != nil {
		return nil
	}
	return &d
}
