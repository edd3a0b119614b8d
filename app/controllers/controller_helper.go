package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Terminal rejection reasons recorded in the webhook event ledger.
var (
	errInvalidSignature = errors.New("invalid notification signature")
	errMissingUserID    = errors.New("missing user correlation field")
)

// Session keys shared with the usercontext middleware.
const (
	AUTH_KEY        string = "authenticated"
	USER_ID         string = "user_id"
	USER_NAME       string = "username"
	USER_IS_ADMIN   string = "isAdmin"
	USER_SUBSCRIBED string = "subscribed"
)

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}
