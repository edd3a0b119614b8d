package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/advisernote/advisernote/internal/pkg/env"
)

const (
	defaultAPIBaseURL = "https://api.openai.com/v1"

	transcriptionModel = "whisper-1"
	summaryModel       = "gpt-4o"

	summarySystemPrompt = "You are a helpful assistant that summarizes text concisely and clearly. Provide a summary that captures the main points."
)

// Client talks to the OpenAI-compatible transcription and summarization API.
type Client struct {
	APIKey     string
	APIBaseURL string

	HTTPClient *http.Client
}

// APIError carries the provider's status code and message so handlers can
// pass them through.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai: api answered %d: %s", e.StatusCode, e.Message)
}

// NewClientFromEnv constructs a client from environment config.
func NewClientFromEnv() *Client {
	return &Client{
		APIKey:     strings.TrimSpace(env.GetEnv("OPENAI_API_KEY", "")),
		APIBaseURL: strings.TrimRight(env.GetEnv("OPENAI_API_BASE_URL", defaultAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.APIKey != ""
}

// Transcribe uploads an audio file to the transcription endpoint and returns
// the recognized text.
func (c *Client) Transcribe(ctx context.Context, filename string, file io.Reader) (string, error) {
	if !c.Configured() {
		return "", errors.New("OPENAI_API_KEY is not configured")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := mw.WriteField("model", transcriptionModel); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	var result struct {
		Text string `json:"text"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

// Summarize forwards text to the chat completion endpoint and returns the
// generated summary.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if !c.Configured() {
		return "", errors.New("OPENAI_API_KEY is not configured")
	}

	payload := map[string]any{
		"model": summaryModel,
		"messages": []map[string]string{
			{"role": "system", "content": summarySystemPrompt},
			{"role": "user", "content": "Please summarize the following text:\n\n" + text},
		},
		"temperature": 0.7,
		"max_tokens":  1000,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", errors.New("openai: no summary generated")
	}
	return result.Choices[0].Message.Content, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		msg := ""
		if err := json.Unmarshal(raw, &apiErr); err == nil {
			msg = apiErr.Error.Message
		}
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return json.Unmarshal(raw, out)
}
