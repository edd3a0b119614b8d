package middleware

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/advisernote/advisernote/app/models"
	"github.com/advisernote/advisernote/app/repository"
	"github.com/advisernote/advisernote/internal/pkg/database"
	"github.com/advisernote/advisernote/internal/pkg/subscription"
	"github.com/advisernote/advisernote/internal/pkg/usercontext"
)

// APITokenAuthMiddleware authenticates requests carrying a user bearer token.
// Falls through to an existing session context when no token is present.
func APITokenAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractTokenFromHeader(c)
		if token == "" {
			// A session set by UserContextMiddleware is also acceptable.
			if usercontext.IsLoggedIn(c) {
				return c.Next()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing bearer token"})
		}

		db := database.GetDB()
		if db == nil {
			log.Print("api token middleware: database unavailable")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Database unavailable"})
		}

		hash := models.HashAPIToken(token)
		repo := repository.GetGlobalFactory().GetUserRepository()
		user, profile, err := repo.GetByAPITokenHash(hash)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid bearer token"})
			}
			log.Printf("api token lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Token verification failed"})
		}

		if user.Status != models.STATUS_ACTIVE {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "User inactive"})
		}

		// Refresh last-used timestamp best-effort.
		now := time.Now()
		if err := db.Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{"last_login_at": now}).Error; err != nil {
			log.Printf("failed to update token usage timestamp for user %d: %v", user.ID, err)
		}

		userCtx := usercontext.UserContext{
			UserID:     user.ID,
			Username:   user.Name,
			IsLoggedIn: true,
			IsAdmin:    user.Role == models.ROLE_ADMIN,
			Subscribed: subscription.IsActive(profile),
		}
		c.Locals("USER_CONTEXT", userCtx)
		c.Locals(usercontext.KeyFromProtected, true)
		c.Locals(usercontext.KeyUserID, user.ID)
		c.Locals(usercontext.KeyUsername, user.Name)
		c.Locals(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)

		return c.Next()
	}
}

func extractTokenFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
