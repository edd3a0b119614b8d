package pdf

import (
	"bytes"
	"testing"
)

func TestGenerate(t *testing.T) {
	g := NewGenerator()
	out, err := g.Generate("Quarterly Review", "2026-03-15T10:30:00Z", "Client agreed to rebalance the portfolio.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not start with PDF header: %q", out[:min(8, len(out))])
	}
	if len(out) < 500 {
		t.Fatalf("suspiciously small document: %d bytes", len(out))
	}
}

func TestGenerateWithoutOptionalFields(t *testing.T) {
	g := NewGenerator()
	out, err := g.Generate("", "", "Summary body only.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("output is not a PDF document")
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-03-15T10:30:00Z", "15 Mar 2026 10:30"},
		{"15 March 2026", "15 March 2026"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := formatDate(tt.in); got != tt.want {
			t.Fatalf("formatDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
