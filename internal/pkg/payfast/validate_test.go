package payfast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	var gotStatus, gotMerchant string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotStatus = r.PostFormValue(FieldPaymentStatus)
		gotMerchant = r.PostFormValue(FieldMerchantID)
		w.Write([]byte("VALID"))
	}))
	defer server.Close()

	c := &Client{ValidateURL: server.URL, HTTPClient: &http.Client{Timeout: 5 * time.Second}}
	err := c.Validate(context.Background(), map[string]string{
		FieldMerchantID:    "10000100",
		FieldPaymentStatus: StatusComplete,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStatus != StatusComplete || gotMerchant != "10000100" {
		t.Fatalf("parameters not relayed: status=%q merchant=%q", gotStatus, gotMerchant)
	}
}

func TestValidateRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := &Client{ValidateURL: server.URL, HTTPClient: &http.Client{Timeout: 5 * time.Second}}
	if err := c.Validate(context.Background(), map[string]string{"a": "1"}); err == nil {
		t.Fatal("expected error for non-2xx answer")
	}
}
