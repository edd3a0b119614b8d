package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/advisernote/advisernote/app/models"
	"github.com/advisernote/advisernote/app/repository"
	"github.com/advisernote/advisernote/internal/pkg/session"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a new account and its subscription profile.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	user, err := models.CreateUser(strings.TrimSpace(req.Name), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Name, valid email and a password of at least 6 characters are required")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if _, err := repo.GetByEmail(user.Email); err == nil {
		return jsonError(c, fiber.StatusConflict, "conflict", "An account with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("register lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Registration failed")
	}

	token := user.GenerateAPIToken()
	if err := repo.Create(user); err != nil {
		log.Printf("register create failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Registration failed")
	}
	if _, err := repository.GetGlobalFactory().GetProfileRepository().GetOrCreateByUserID(user.ID); err != nil {
		log.Printf("profile create failed for user %d: %v", user.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"token": token,
	})
}

// HandleLogin authenticates a user, establishes the web session and returns
// a fresh bearer token for API calls.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !user.CheckPassword(req.Password) {
		// notice: do not inform the caller which part of the login failed
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid email or password")
	}
	if !user.IsActive() {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "Account is not active")
	}

	token := user.GenerateAPIToken()
	now := time.Now()
	user.LastLoginAt = &now
	if err := repo.Update(user); err != nil {
		log.Printf("login update failed for user %d: %v", user.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Login failed")
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		log.Printf("session load failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Login failed")
	}
	sess.Set(AUTH_KEY, true)
	sess.Set(USER_ID, user.ID)
	sess.Set(USER_NAME, user.Name)
	sess.Set(USER_IS_ADMIN, user.Role == models.ROLE_ADMIN)
	sess.Delete(USER_SUBSCRIBED)
	if err := sess.Save(); err != nil {
		log.Printf("session save failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Login failed")
	}

	return c.JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"token": token,
	})
}

// HandleLogout destroys the web session.
func HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			log.Printf("session destroy failed: %v", err)
		}
	}
	return c.JSON(fiber.Map{"ok": true})
}
