package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/utils"
)

// JWTFromCookie accepts the jm_token cookie or an Authorization bearer token.
func JWTFromCookie(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies("jm_token")
		if tokenStr == "" {
			auth := c.Get(fiber.HeaderAuthorization)
			if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
				tokenStr = strings.TrimSpace(auth[7:])
			}
		}
		if tokenStr == "" {
			return fiber.ErrUnauthorized
		}

		token, _, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals("user", token)
		return c.Next()
	}
}
