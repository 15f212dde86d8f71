package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/session"
)

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionData, ok := readSession(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		hasPermission, err := authService.HasPermission(sessionData.User.ID, permission)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", sessionData.User.ID).Str("permission", permission).
				Msg("Failed to check permission")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", sessionData.User.ID).Str("permission", permission).
				Msg("User lacks required permission")

			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// AddPermissionsToLocals adds the permissions of the session user to fiber.Locals
// so templates can render conditionally.
func AddPermissionsToLocals(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionData, ok := readSession(c)
		if !ok {
			return c.Next()
		}

		permissions, err := authService.GetUserPermissions(sessionData.User.ID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", sessionData.User.ID).
				Msg("Failed to get user permissions")

			return c.Next()
		}

		granted := make(map[string]bool, len(permissions))
		for _, p := range permissions {
			granted[p] = true
		}

		c.Locals("permissions", permissions)
		c.Locals("hasPermission", func(perm string) bool {
			return granted[perm]
		})

		return c.Next()
	}
}

func readSession(c *fiber.Ctx) (*session.Data, bool) {
	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" {
		return nil, false
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		log.Debug().Err(err).Msg("Failed to read session")

		return nil, false
	}

	if sessionData.User.ID == 0 {
		return nil, false
	}

	return sessionData, true
}
