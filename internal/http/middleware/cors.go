package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const (
	corsAllowMethods = "GET,POST,PUT,DELETE,OPTIONS"
	corsAllowHeaders = "Content-Type,Authorization"
	corsMaxAge       = 86400
)

// CORS applies the CORS policy to every response, errors included.
// Every OPTIONS request is answered here with 200 and an empty body and never reaches
// the router.
func CORS(allowOrigins string) fiber.Handler {
	allowOrigins = strings.TrimSpace(allowOrigins)
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	allowAll := allowOrigins == "*"
	allowed := map[string]bool{}
	for _, o := range strings.Split(allowOrigins, ",") {
		allowed[strings.TrimSpace(o)] = true
	}

	h := cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: corsAllowMethods,
		AllowHeaders: corsAllowHeaders,
		MaxAge:       corsMaxAge,
	})

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			origin := c.Get(fiber.HeaderOrigin)
			switch {
			case allowAll:
				c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
			case allowed[origin]:
				c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
				c.Vary(fiber.HeaderOrigin)
			}
			c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
			c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
			c.Set(fiber.HeaderAccessControlMaxAge, strconv.Itoa(corsMaxAge))
			c.Status(fiber.StatusOK)
			return nil
		}

		err := h(c)

		// Requests without an Origin header are outside the scope of the cors package.
		if allowAll && len(c.Response().Header.Peek(fiber.HeaderAccessControlAllowOrigin)) == 0 {
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
			c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
			c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
		}
		return err
	}
}
