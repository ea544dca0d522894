package middleware

import (
	"strings"

	"video-uploader/pkg/constants"
	apperrors "video-uploader/pkg/errors"
	"video-uploader/pkg/errors/i18n"

	"github.com/gofiber/fiber/v2"
)

// OwnerHeader carries the caller identity set by the authenticating gateway.
const OwnerHeader = "X-User-ID"

const ownerKey = "ownerID"

func RequireOwner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		owner := strings.TrimSpace(c.Get(OwnerHeader))
		if owner == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(apperrors.ErrorResponse{
				Error:   "unauthorized",
				Message: i18n.T("unauthorized"),
				Retry:   constants.RetryNone,
			})
		}
		c.Locals(ownerKey, owner)
		return c.Next()
	}
}

func OwnerID(c *fiber.Ctx) string {
	owner, _ := c.Locals(ownerKey).(string)
	return owner
}
