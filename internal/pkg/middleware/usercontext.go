package middleware

import (
	"github.com/advisernote/advisernote/app/controllers"
	"github.com/advisernote/advisernote/app/models"
	"github.com/advisernote/advisernote/internal/pkg/database"
	"github.com/advisernote/advisernote/internal/pkg/session"
	"github.com/advisernote/advisernote/internal/pkg/subscription"
	"github.com/advisernote/advisernote/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware sets up the complete user context for every request.
// This centralizes user session handling and eliminates code duplication.
func UserContextMiddleware(c *fiber.Ctx) error {
	// Get session with error handling
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		// On error: set as anonymous user
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			IsLoggedIn: false,
			IsAdmin:    false,
		})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	// Get user ID from session
	userID := sess.Get(controllers.USER_ID)
	if userID == nil {
		// Anonymous user - no session data
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			IsLoggedIn: false,
			IsAdmin:    false,
		})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	// User is logged in - get additional data
	username := session.GetSessionValue(c, controllers.USER_NAME)
	isAdmin := sess.Get(controllers.USER_IS_ADMIN)

	// Determine subscription state with session-first strategy
	subscribed := false
	switch session.GetSessionValue(c, controllers.USER_SUBSCRIBED) {
	case "true":
		subscribed = true
	case "false":
		subscribed = false
	default:
		if db := database.GetDB(); db != nil {
			if p, err := models.GetOrCreateProfile(db, userID.(uint)); err == nil {
				subscribed = subscription.IsActive(p)
			}
		}
		// cache in session for subsequent requests
		if subscribed {
			_ = session.SetSessionValue(c, controllers.USER_SUBSCRIBED, "true")
		} else {
			_ = session.SetSessionValue(c, controllers.USER_SUBSCRIBED, "false")
		}
	}

	// Set complete user context
	userCtx := usercontext.UserContext{
		UserID:     userID.(uint),
		Username:   username,
		IsLoggedIn: true,
		IsAdmin:    isAdmin != nil && isAdmin.(bool),
		Subscribed: subscribed,
	}
	c.Locals("USER_CONTEXT", userCtx)
	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUserID, userID.(uint))
	c.Locals(usercontext.KeyUsername, username)
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)

	return c.Next()
}
