package payfast

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/advisernote/advisernote/app/models"
	"github.com/advisernote/advisernote/internal/pkg/env"
)

const defaultProcessURL = "https://www.payfast.co.za/eng/process"

// ErrNotConfigured is returned when merchant credentials are absent from the
// environment. Handlers surface it as a 500 without leaking detail.
var ErrNotConfigured = errors.New("payfast: merchant credentials not configured")

// Checkout builds signed parameter sets for PayFast's hosted payment page.
// The browser performs the redirect; this never contacts the provider.
type Checkout struct {
	MerchantID   string
	MerchantKey  string
	Passphrase   string
	ProcessURL   string
	PublicDomain string
}

// NewCheckoutFromEnv constructs a checkout builder from environment config.
func NewCheckoutFromEnv() *Checkout {
	return &Checkout{
		MerchantID:   strings.TrimSpace(env.GetEnv("PAYFAST_MERCHANT_ID", "")),
		MerchantKey:  strings.TrimSpace(env.GetEnv("PAYFAST_MERCHANT_KEY", "")),
		Passphrase:   strings.TrimSpace(env.GetEnv("PAYFAST_PASSPHRASE", "")),
		ProcessURL:   strings.TrimSpace(env.GetEnv("PAYFAST_PROCESS_URL", defaultProcessURL)),
		PublicDomain: strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"), "/"),
	}
}

// Build assembles the provider parameter set for a logged-in user plus its
// signature. Amount is a decimal string in major units and is converted to
// minor units (cents) for the provider.
func (ch *Checkout) Build(user *models.User, amount, itemName string) (map[string]string, string, error) {
	if ch.MerchantID == "" || ch.MerchantKey == "" {
		return nil, "", ErrNotConfigured
	}
	amount = strings.TrimSpace(amount)
	itemName = strings.TrimSpace(itemName)
	if user == nil || amount == "" || itemName == "" {
		return nil, "", ErrInvalidInput
	}

	cents, err := ToMinorUnits(amount)
	if err != nil {
		return nil, "", err
	}

	userID := strconv.FormatUint(uint64(user.ID), 10)
	params := map[string]string{
		"merchant_id":      ch.MerchantID,
		"merchant_key":     ch.MerchantKey,
		"return_url":       ch.PublicDomain + "/payment/return",
		"cancel_url":       ch.PublicDomain + "/pricing",
		"notify_url":       ch.PublicDomain + "/api/payfast/notify",
		"name_first":       user.Name,
		"email_address":    user.Email,
		"item_name":        itemName,
		"item_description": "Subscription - " + itemName,
		"amount":           cents,
		// Correlation fields carrying the internal user id back on the ITN.
		"m_payment_id": userID,
		"custom_int1":  userID,
	}

	signature, err := Signature(params, ch.Passphrase)
	if err != nil {
		return nil, "", err
	}
	return params, signature, nil
}

// ToMinorUnits converts a decimal major-unit amount ("49.99") into the
// provider's integer minor-unit string ("4999").
func ToMinorUnits(amount string) (string, error) {
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil || f <= 0 {
		return "", ErrInvalidInput
	}
	return strconv.FormatInt(int64(math.Round(f*100)), 10), nil
}
