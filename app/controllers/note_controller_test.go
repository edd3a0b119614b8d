package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/advisernote/advisernote/app/models"
	"github.com/advisernote/advisernote/internal/pkg/openai"
	"github.com/advisernote/advisernote/internal/pkg/pdf"
	"github.com/advisernote/advisernote/internal/pkg/usercontext"
)

// fakeProfileRepo serves subscription profiles from memory.
type fakeProfileRepo struct {
	profiles map[uint]*models.Profile
}

func (f *fakeProfileRepo) GetOrCreateByUserID(userID uint) (*models.Profile, error) {
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	p := &models.Profile{UserID: userID}
	f.profiles[userID] = p
	return p, nil
}

func (f *fakeProfileRepo) Save(profile *models.Profile) error {
	f.profiles[profile.UserID] = profile
	return nil
}

// withUserContext injects a fixed user context, standing in for the session
// and API token middlewares.
func withUserContext(userCtx usercontext.UserContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("USER_CONTEXT", userCtx)
		return c.Next()
	}
}

func loggedInUser() usercontext.UserContext {
	return usercontext.UserContext{UserID: 1, Username: "Thandi", IsLoggedIn: true}
}

func TestHandleGeneratePDF(t *testing.T) {
	pdfGenerator = pdf.NewGenerator()

	app := fiber.New()
	app.Post("/api/v1/generate-pdf", withUserContext(loggedInUser()), HandleGeneratePDF)

	body, _ := json.Marshal(map[string]string{
		"summary": "Client agreed to increase monthly contributions.",
		"title":   "March Review",
		"date":    "2026-03-15T10:30:00Z",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate-pdf", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, `attachment; filename="March Review.pdf"`, resp.Header.Get(fiber.HeaderContentDisposition))

	doc, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestHandleGeneratePDFDefaultsFilename(t *testing.T) {
	pdfGenerator = pdf.NewGenerator()

	app := fiber.New()
	app.Post("/api/v1/generate-pdf", withUserContext(loggedInUser()), HandleGeneratePDF)

	body, _ := json.Marshal(map[string]string{"summary": "Body only."})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate-pdf", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="summary.pdf"`, resp.Header.Get(fiber.HeaderContentDisposition))
}

func TestHandleGeneratePDFRejectsEmptySummary(t *testing.T) {
	pdfGenerator = pdf.NewGenerator()

	app := fiber.New()
	app.Post("/api/v1/generate-pdf", withUserContext(loggedInUser()), HandleGeneratePDF)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate-pdf", strings.NewReader(`{"summary":"  "}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestNoteHandlersRequireLogin(t *testing.T) {
	pdfGenerator = pdf.NewGenerator()
	aiClient = &openai.Client{HTTPClient: http.DefaultClient}

	app := fiber.New()
	app.Post("/transcribe", HandleTranscribe)
	app.Post("/summarise", HandleSummarise)
	app.Post("/generate-pdf", HandleGeneratePDF)

	for _, path := range []string{"/transcribe", "/summarise", "/generate-pdf"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, 5000)
		assert.NoError(t, err, path)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)

		var payload map[string]string
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload), path)
		assert.Equal(t, "unauthorized", payload["error"], path)
	}
}

func TestHandleSummariseRequiresActiveSubscription(t *testing.T) {
	var upstreamCalls int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "won't be reached"}}},
		})
	}))
	defer upstream.Close()

	aiClient = &openai.Client{
		APIKey:     "sk-test",
		APIBaseURL: upstream.URL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
	profileStore = &fakeProfileRepo{profiles: map[uint]*models.Profile{
		1: {UserID: 1, Subscribed: false},
	}}

	app := fiber.New()
	app.Post("/api/v1/summarise", withUserContext(loggedInUser()), HandleSummarise)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/summarise", strings.NewReader(`{"text":"long transcript"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var payload map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "forbidden", payload["error"])

	// The gate runs before any outbound call.
	assert.Zero(t, upstreamCalls)
}

func TestHandleSummarise(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "Short summary."}}},
		})
	}))
	defer upstream.Close()

	aiClient = &openai.Client{
		APIKey:     "sk-test",
		APIBaseURL: upstream.URL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
	expires := time.Now().Add(24 * time.Hour)
	profileStore = &fakeProfileRepo{profiles: map[uint]*models.Profile{
		1: {UserID: 1, Subscribed: true, SubscriptionExpiresAt: &expires},
	}}

	app := fiber.New()
	app.Post("/api/v1/summarise", withUserContext(loggedInUser()), HandleSummarise)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/summarise", strings.NewReader(`{"text":"long transcript"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 10000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "Short summary.", payload["summary"])
}

func TestHandleTranscribe(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"text": "transcribed words"})
	}))
	defer upstream.Close()

	aiClient = &openai.Client{
		APIKey:     "sk-test",
		APIBaseURL: upstream.URL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}

	app := fiber.New()
	app.Post("/api/v1/transcribe", withUserContext(loggedInUser()), HandleTranscribe)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "meeting.mp3")
	assert.NoError(t, err)
	_, err = part.Write([]byte("fake audio"))
	assert.NoError(t, err)
	assert.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := app.Test(req, 10000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "transcribed words", payload["text"])
}

func TestHandleTranscribeMissingFile(t *testing.T) {
	aiClient = &openai.Client{APIKey: "sk-test", HTTPClient: http.DefaultClient}

	app := fiber.New()
	app.Post("/api/v1/transcribe", withUserContext(loggedInUser()), HandleTranscribe)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe", nil)
	resp, err := app.Test(req, 5000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAIErrorPassthrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "Rate limit reached"}})
	}))
	defer upstream.Close()

	aiClient = &openai.Client{
		APIKey:     "sk-test",
		APIBaseURL: upstream.URL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}

	app := fiber.New()
	app.Post("/api/v1/transcribe", withUserContext(loggedInUser()), HandleTranscribe)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "meeting.mp3")
	part.Write([]byte("fake audio"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := app.Test(req, 10000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	var payload map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "upstream_error", payload["error"])
	assert.Equal(t, "Rate limit reached", payload["message"])
}
