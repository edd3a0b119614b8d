package router

import (
	"github.com/advisernote/advisernote/app/controllers"
	"github.com/advisernote/advisernote/internal/pkg/middleware"
	"github.com/advisernote/advisernote/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Initialize controllers with their long-lived clients
	controllers.InitializePaymentController()
	controllers.InitializeNoteController()

	// Public pages
	app.Get("/", controllers.HandleIndex)
	app.Get("/pricing", controllers.HandlePricing)
	app.Get("/dashboard", middleware.RequireAuth, controllers.HandleDashboard)

	// Browser return from the hosted payment page
	app.Get("/payment/return", controllers.HandlePayfastReturn)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
