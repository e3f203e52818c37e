package middleware

import (
	"strings"
	"testing"
)

func TestRedactor_String(t *testing.T) {
	r := NewRedactor(RedactOptions{})

	tests := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"plain", "/api/v1/crypto/list", "/api/v1/crypto/list"},
		{"uuid", "/user/3f2b8c1e-1234-4abc-8def-0123456789ab", "/user/[REDACTED:id]"},
		{"email", "email=bob.smith+x@mail.example.org", "email=[REDACTED:email]"},
		{"phone", "tel 555-123-4567", "tel [REDACTED:phone]"},
		{"bearer", "Authorization: Bearer abc.def-ghi", "Authorization: Bearer [REDACTED:token]"},
		{"bare jwt", "t=eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ1In0.sig_-x", "t=[REDACTED:token]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.String(tt.in); got != tt.want {
				t.Fatalf("String(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRedactor_UUIDNotMistakenForPhone(t *testing.T) {
	r := NewRedactor(RedactOptions{})
	got := r.String("id=11111111-2222-4333-8444-555555555555")
	if strings.Contains(got, "phone") {
		t.Fatalf("uuid redacted as phone: %q", got)
	}
}

func TestRedactor_Headers(t *testing.T) {
	r := NewRedactor(RedactOptions{MaskHeaders: []string{" X-Custom ", ""}})
	out := r.Headers(map[string][]string{
		"Authorization":     {"Bearer x"},
		"Cookie":            {"sid=1"},
		"X-Custom":          {"secret"},
		"X-Cg-Demo-Api-Key": {"k"},
		"X-Forwarded-For":   {"a@b.io", "1.2.3.4"},
	})
	for _, k := range []string{"Authorization", "Cookie", "X-Custom", "X-Cg-Demo-Api-Key"} {
		if out[k] != "[REDACTED]" {
			t.Fatalf("%s = %q, want masked", k, out[k])
		}
	}
	if out["X-Forwarded-For"] != "[REDACTED:email], 1.2.3.4" {
		t.Fatalf("X-Forwarded-For = %q", out["X-Forwarded-For"])
	}
}
