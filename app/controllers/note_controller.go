package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/advisernote/advisernote/app/repository"
	"github.com/advisernote/advisernote/internal/pkg/entitlements"
	"github.com/advisernote/advisernote/internal/pkg/openai"
	"github.com/advisernote/advisernote/internal/pkg/pdf"
	"github.com/advisernote/advisernote/internal/pkg/usercontext"
)

var (
	aiClient     *openai.Client
	pdfGenerator *pdf.Generator
	profileStore repository.ProfileRepository
)

// InitializeNoteController builds the long-lived AI client and PDF
// generator once at process start.
func InitializeNoteController() {
	aiClient = openai.NewClientFromEnv()
	pdfGenerator = pdf.NewGenerator()
	profileStore = repository.GetGlobalFactory().GetProfileRepository()
}

// HandleTranscribe forwards an uploaded audio file to the transcription API.
func HandleTranscribe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Please log in")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "No file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Could not read uploaded file")
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Context(), 120*time.Second)
	defer cancel()

	text, err := aiClient.Transcribe(ctx, fileHeader.Filename, file)
	if err != nil {
		return aiError(c, "Transcription failed", err)
	}

	return c.JSON(fiber.Map{"text": text})
}

type summariseRequest struct {
	Text string `json:"text"`
}

// HandleSummarise forwards text to the summarization API. Requires an
// active subscription; the gate runs before any outbound call.
func HandleSummarise(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Please log in")
	}

	profile, err := profileStore.GetOrCreateByUserID(userCtx.UserID)
	if err != nil {
		log.Printf("summarise: profile load failed for user %d: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load subscription state")
	}
	if !entitlements.CanUse(profile, entitlements.FeatureSummarise) {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "Active subscription required to generate summaries")
	}

	var req summariseRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "No text provided")
	}

	ctx, cancel := context.WithTimeout(c.Context(), 120*time.Second)
	defer cancel()

	summary, err := aiClient.Summarize(ctx, req.Text)
	if err != nil {
		return aiError(c, "Summarization failed", err)
	}

	return c.JSON(fiber.Map{"summary": summary})
}

type generatePDFRequest struct {
	Summary string `json:"summary"`
	Title   string `json:"title"`
	Date    string `json:"date"`
}

// HandleGeneratePDF renders a summary as a downloadable PDF document.
func HandleGeneratePDF(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Please log in")
	}

	var req generatePDFRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Summary) == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "No summary provided")
	}

	doc, err := pdfGenerator.Generate(req.Title, req.Date, req.Summary)
	if err != nil {
		log.Printf("pdf generation failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to generate PDF")
	}

	filename := strings.TrimSpace(req.Title)
	if filename == "" {
		filename = "summary"
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.pdf"`, filename))
	return c.Send(doc)
}

// aiError passes the provider's status and message through where available.
func aiError(c *fiber.Ctx, fallback string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return jsonError(c, apiErr.StatusCode, "upstream_error", apiErr.Message)
	}
	log.Printf("%s: %v", fallback, err)
	return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", fallback)
}
