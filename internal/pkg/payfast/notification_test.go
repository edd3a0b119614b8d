package payfast

import "testing"

func TestParseNotificationForm(t *testing.T) {
	body := "merchant_id=10000100&payment_status=COMPLETE&m_payment_id=7&amount_gross=49.99&item_name=AdviserNote+Monthly"
	params, err := ParseNotification("application/x-www-form-urlencoded", []byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params[FieldPaymentStatus] != StatusComplete {
		t.Fatalf("payment_status = %q", params[FieldPaymentStatus])
	}
	if params["item_name"] != "AdviserNote Monthly" {
		t.Fatalf("item_name = %q", params["item_name"])
	}
}

func TestParseNotificationJSON(t *testing.T) {
	body := `{"merchant_id":"10000100","payment_status":"COMPLETE","custom_int1":7,"amount_gross":49.99,"sandbox":true,"token":null}`
	params, err := ParseNotification("application/json; charset=utf-8", []byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params[FieldCustomInt1] != "7" {
		t.Fatalf("custom_int1 = %q, want 7", params[FieldCustomInt1])
	}
	if params["amount_gross"] != "49.99" {
		t.Fatalf("amount_gross = %q, want 49.99", params["amount_gross"])
	}
	if params["sandbox"] != "true" {
		t.Fatalf("sandbox = %q", params["sandbox"])
	}
	if params["token"] != "" {
		t.Fatalf("token = %q, want empty", params["token"])
	}
}

func TestParseNotificationInvalidJSON(t *testing.T) {
	if _, err := ParseNotification("application/json", []byte("{nope")); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestCorrelationUserID(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   string
	}{
		{"prefers m_payment_id", map[string]string{FieldMPaymentID: "12", FieldCustomInt1: "99"}, "12"},
		{"falls back to custom_int1", map[string]string{FieldCustomInt1: "99"}, "99"},
		{"trims whitespace", map[string]string{FieldMPaymentID: " 12 "}, "12"},
		{"blank m_payment_id falls back", map[string]string{FieldMPaymentID: "  ", FieldCustomInt1: "7"}, "7"},
		{"nothing set", map[string]string{}, ""},
	}
	for _, tt := range tests {
		if got := CorrelationUserID(tt.params); got != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}
