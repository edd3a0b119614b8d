package payfast

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/advisernote/advisernote/internal/pkg/env"
)

const defaultValidateURL = "https://www.payfast.co.za/eng/query/validate"

// Client performs the synchronous server-to-server re-validation of a
// received notification against PayFast's official verification endpoint.
type Client struct {
	ValidateURL string
	HTTPClient  *http.Client
}

// NewClientFromEnv constructs a validation client from environment config.
func NewClientFromEnv() *Client {
	return &Client{
		ValidateURL: strings.TrimSpace(env.GetEnv("PAYFAST_VALIDATE_URL", defaultValidateURL)),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Validate posts the received notification parameters back to the provider.
// A non-success response means the provider does not recognize the
// notification; the caller acknowledges receipt without mutating state.
func (c *Client) Validate(ctx context.Context, params map[string]string) error {
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ValidateURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("payfast: validate endpoint answered %d", resp.StatusCode)
	}
	return nil
}
