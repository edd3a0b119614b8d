package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/advisernote/advisernote/internal/pkg/usercontext"
)

// HandleIndex renders the landing page.
func HandleIndex(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	return c.Render("index", fiber.Map{
		"Title":      "AdviserNote AI",
		"IsLoggedIn": userCtx.IsLoggedIn,
		"Username":   userCtx.Username,
		"Flash":      flash.Get(c),
	})
}

// HandlePricing renders the pricing page.
func HandlePricing(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	return c.Render("pricing", fiber.Map{
		"Title":      "Pricing | AdviserNote AI",
		"IsLoggedIn": userCtx.IsLoggedIn,
		"Subscribed": userCtx.Subscribed,
		"Flash":      flash.Get(c),
	})
}

// HandleDashboard renders the member dashboard with subscription status.
// Meeting history is not persisted yet; the page says so instead of showing
// placeholder data.
func HandleDashboard(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	return c.Render("dashboard", fiber.Map{
		"Title":      "Dashboard | AdviserNote AI",
		"IsLoggedIn": userCtx.IsLoggedIn,
		"Username":   userCtx.Username,
		"Subscribed": userCtx.Subscribed,
		"Flash":      flash.Get(c),
	})
}
