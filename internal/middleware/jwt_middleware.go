package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/AshivPrajapati/Online-Bookstore/internal/models"
	"github.com/AshivPrajapati/Online-Bookstore/internal/services"
)

// Context keys populated by AuthRequired for downstream handlers.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalRole     = "role"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token. On
// success it stores the caller's id, username and role in the context.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		// JSON numbers decode as float64.
		userID, ok := claims["user_id"].(float64)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}
		role, _ := claims["role"].(string)
		username, _ := claims["username"].(string)

		c.Locals(LocalUserID, uint(userID))
		c.Locals(LocalUsername, username)
		c.Locals(LocalRole, models.Role(role))

		return c.Next()
	}
}

// AdminRequired rejects callers whose role lacks administrative
// capabilities. Must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(models.Role)
		if !ok || !role.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}

// CallerID returns the authenticated user's id from the context.
func CallerID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalUserID).(uint)
	return id
}

// CallerRole returns the authenticated user's role from the context.
func CallerRole(c *fiber.Ctx) models.Role {
	role, ok := c.Locals(LocalRole).(models.Role)
	if !ok {
		return models.RoleCustomer
	}
	return role
}
