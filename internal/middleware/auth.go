package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/parfumier/internal/config"
	"github.com/example/parfumier/internal/models"
	"github.com/example/parfumier/internal/utils"
)

const collectorContextKey = "currentCollector"

// AuthMiddleware validates the bearer token and loads the full collector
// record into context. Soft-deleted accounts are rejected here, so every
// protected route sees the live ban status rather than the one baked into
// the token.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		claims, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		collectorID, err := claims.CollectorID()
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token subject")
		}

		var collector models.Collector
		if err := db.First(&collector, "id = ?", collectorID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "account not found")
			}
			return err
		}

		if collector.IsDeleted {
			reason := collector.DeleteReason
			if reason == "" {
				reason = "Unknown reason"
			}
			return fiber.NewError(fiber.StatusForbidden, fmt.Sprintf("Account locked: %s", reason))
		}

		c.Locals(collectorContextKey, &collector)
		return c.Next()
	}
}

// CurrentCollector extracts the authenticated collector from context.
func CurrentCollector(c *fiber.Ctx) (*models.Collector, bool) {
	value := c.Locals(collectorContextKey)
	if value == nil {
		return nil, false
	}

	collector, ok := value.(*models.Collector)
	return collector, ok
}

// RequireAdmin rejects non-admin callers. It composes after AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		collector, ok := CurrentCollector(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		if !collector.IsAdmin {
			return fiber.NewError(fiber.StatusForbidden, "admin only")
		}

		return c.Next()
	}
}

// RequireSelf only lets callers through when the named path parameter
// matches their own account ID.
func RequireSelf(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		collector, ok := CurrentCollector(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		if collector.ID.String() != c.Params(param) {
			return fiber.NewError(fiber.StatusForbidden, "can only modify own account")
		}

		return c.Next()
	}
}
