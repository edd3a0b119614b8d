package payfast

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Payment status vocabulary pushed by PayFast on ITN notifications.
const (
	StatusComplete  = "COMPLETE"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

// Well-known ITN field names.
const (
	FieldMerchantID    = "merchant_id"
	FieldPaymentStatus = "payment_status"
	FieldMPaymentID    = "m_payment_id"
	FieldCustomInt1    = "custom_int1"
	FieldPFPaymentID   = "pf_payment_id"
)

// ParseNotification flattens a received ITN body into a string map. PayFast
// posts form-encoded bodies; older integrations relay JSON, so both are
// accepted.
func ParseNotification(contentType string, body []byte) (map[string]string, error) {
	if strings.Contains(contentType, "application/json") {
		var raw map[string]any
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("payfast: invalid json notification: %w", err)
		}
		params := make(map[string]string, len(raw))
		for k, v := range raw {
			switch val := v.(type) {
			case string:
				params[k] = val
			case float64:
				params[k] = strconv.FormatFloat(val, 'f', -1, 64)
			case bool:
				params[k] = fmt.Sprintf("%t", val)
			case nil:
				params[k] = ""
			default:
				b, _ := json.Marshal(val)
				params[k] = string(b)
			}
		}
		return params, nil
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("payfast: invalid form notification: %w", err)
	}
	params := make(map[string]string, len(values))
	for k := range values {
		params[k] = values.Get(k)
	}
	return params, nil
}

// CorrelationUserID extracts the internal user identifier from a
// notification, preferring m_payment_id and falling back to custom_int1.
func CorrelationUserID(params map[string]string) string {
	if v := strings.TrimSpace(params[FieldMPaymentID]); v != "" {
		return v
	}
	return strings.TrimSpace(params[FieldCustomInt1])
}
