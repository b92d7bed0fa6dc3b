package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workorder-service/internal/auth"
	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/service"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// actorFromContext resolves the authenticated operator for service calls.
func actorFromContext(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return service.Actor{}, util.NewUnauthorized("authentication required")
	}
	return service.Actor{
		Username:    principal.User.Username,
		DisplayName: principal.User.DisplayName,
		Role:        principal.Role,
	}, nil
}

// orderKeyFromParams reads the kind/number pair identifying an order.
func orderKeyFromParams(c *fiber.Ctx) (domain.OrderKind, string, error) {
	kind := domain.OrderKind(strings.ToUpper(c.Params("kind")))
	if !kind.Valid() {
		return "", "", util.NewValidationError("unknown order kind", map[string]any{"kind": c.Params("kind")})
	}
	number := c.Params("number")
	if number == "" {
		return "", "", util.NewValidationError("order number required", nil)
	}
	return kind, number, nil
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func optionalString(val string) *string {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(val)
	return &trimmed
}
