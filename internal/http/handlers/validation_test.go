package handlers

import (
	"net/http"
	"testing"
)

func TestBindMessages(t *testing.T) {
	r := testRouter(New(&stubConv{}, stubFav{}, stubAuth{}, stubUsers{}), nil)

	tests := []struct {
		name, path string
		body       any
		msg        string
	}{
		{"bad json", "/auth/signup", `{"name":`, "invalid JSON body"},
		{"missing name", "/auth/signup", map[string]string{"email": "a@b.com", "password": "abc123"}, "name is required"},
		{"short name", "/auth/signup", map[string]string{"name": "Al", "email": "al@b.com", "password": "abc123"}, "name must be at least 3 characters long"},
		{"bad email", "/auth/signup", map[string]string{"name": "Alice", "email": "not-an-email", "password": "abc123"}, "must be a valid email address"},
		{"long password", "/auth/signup", map[string]string{"name": "Alice", "email": "alice@b.com", "password": "abc123abc123abc123abc"}, "password must not exceed 20 characters"},
		{"letters only", "/auth/signup", map[string]string{"name": "Alice", "email": "alice@b.com", "password": "abcdefg"}, "password must contain at least one letter and one number"},
		{"digits only", "/auth/signup", map[string]string{"name": "Alice", "email": "alice@b.com", "password": "1234567"}, "password must contain at least one letter and one number"},
		{"short crypto", "/crypto/convert", map[string]any{"crypto": "bt", "amount": 1}, "crypto must be at least 3 characters long"},
		{"long crypto", "/crypto/favorite", map[string]any{"crypto": "abcdefghijklmnopqrstuvwxyz01234"}, "crypto must not exceed 30 characters"},
		{"zero amount", "/crypto/convert", map[string]any{"crypto": "bitcoin", "amount": 0}, "amount must be greater than 0"},
		{"missing amount", "/crypto/convert", map[string]any{"crypto": "bitcoin"}, "amount must be greater than 0"},
		{"tiny amount", "/crypto/convert", map[string]any{"crypto": "bitcoin", "amount": 0.001}, "amount must be greater than 0"},
		{"negative amount", "/crypto/convert", map[string]any{"crypto": "bitcoin", "amount": -5}, "amount must be greater than 0"},
		{"amount not a number", "/crypto/convert", `{"crypto":"bitcoin","amount":"lots"}`, "invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, tt.path, "u1", tt.body)
			expectError(t, w, http.StatusBadRequest, ErrCodeBadRequest, tt.msg)
		})
	}
}
