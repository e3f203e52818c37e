package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tbourn/go-crypto-backend/internal/domain"
	"github.com/tbourn/go-crypto-backend/internal/services"
)

func TestSignup(t *testing.T) {
	authSvc := stubAuth{signup: func(_ context.Context, name, email, pw string) (*services.AuthResult, error) {
		if email == "taken@example.com" {
			return nil, services.ErrEmailTaken
		}
		return &services.AuthResult{
			User:        &domain.User{ID: "u1", Name: name, Email: email, PasswordHash: "secret-hash"},
			AccessToken: "tok",
		}, nil
	}}
	r := testRouter(New(nil, nil, authSvc, nil), nil)

	w := do(t, r, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "John Doe", "email": "john@example.com", "password": "password1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var got map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]string{"id": "u1", "name": "John Doe", "email": "john@example.com", "access_token": "tok"}
	if len(got) != len(want) {
		t.Fatalf("unexpected fields: %v", got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s = %q, want %q", k, got[k], v)
		}
	}

	w = do(t, r, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "John Doe", "email": "taken@example.com", "password": "password1",
	})
	expectError(t, w, http.StatusConflict, ErrCodeConflict, "User with this email already exists")
}

func TestLogin(t *testing.T) {
	authSvc := stubAuth{login: func(_ context.Context, email, pw string) (*services.AuthResult, error) {
		if email == "john@example.com" && pw == "password1" {
			return &services.AuthResult{User: &domain.User{ID: "u1", Name: "John", Email: email}, AccessToken: "tok"}, nil
		}
		return nil, services.ErrInvalidCredentials
	}}
	r := testRouter(New(nil, nil, authSvc, nil), nil)

	w := do(t, r, http.MethodPost, "/auth/login", "", map[string]string{"email": "john@example.com", "password": "password1"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var got AuthResponse
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.AccessToken != "tok" || got.ID != "u1" {
		t.Fatalf("unexpected response: %+v", got)
	}

	w = do(t, r, http.MethodPost, "/auth/login", "", map[string]string{"email": "john@example.com", "password": "wrong12"})
	expectError(t, w, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid credentials")

	w = do(t, r, http.MethodPost, "/auth/login", "", map[string]string{"email": "john@example.com", "password": "x"})
	expectError(t, w, http.StatusBadRequest, ErrCodeBadRequest, "password must be at least 6 characters long")
}
