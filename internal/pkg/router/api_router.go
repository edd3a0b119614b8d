package router

import (
	"github.com/advisernote/advisernote/app/controllers"
	"github.com/advisernote/advisernote/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{Max: 60}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// Session/auth endpoints
	auth := api.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)
	auth.Post("/logout", controllers.HandleLogout)

	// Server-to-server payment notification endpoints, unauthenticated by
	// design; each verifies its provider's signature itself.
	api.Post("/payfast/notify", controllers.HandlePayfastITN)
	api.Post("/webhook", controllers.HandlePaymentWebhook)

	// API v1 routes, bearer token or session
	v1 := api.Group("/v1", middleware.APITokenAuthMiddleware())
	v1.Post("/checkout", controllers.HandleCreateCheckout)
	v1.Post("/transcribe", controllers.HandleTranscribe)
	v1.Post("/summarise", controllers.HandleSummarise)
	v1.Post("/generate-pdf", controllers.HandleGeneratePDF)

	admin := v1.Group("/admin", middleware.RequireAdmin)
	admin.Post("/subscription", controllers.HandleAdminSubscriptionUpdate)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
