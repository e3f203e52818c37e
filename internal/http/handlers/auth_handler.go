package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crypto-backend/internal/services"
)

// SignupRequest is the JSON payload for POST /auth/signup.
type SignupRequest struct {
	Name     string `json:"name"     binding:"required,min=3,max=50"                 example:"John Doe"`
	Email    string `json:"email"    binding:"required,email,min=6,max=100"          example:"user@example.com"`
	Password string `json:"password" binding:"required,min=6,max=20,letterdigit"     example:"password1"`
}

// LoginRequest is the JSON payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email,min=6,max=100" example:"user@example.com"`
	Password string `json:"password" binding:"required,min=6,max=20"        example:"password1"`
}

// AuthResponse carries the account and its access token.
type AuthResponse struct {
	ID          string `json:"id"           example:"123e4567-e89b-12d3-a456-426614174000"`
	Name        string `json:"name"         example:"John Doe"`
	Email       string `json:"email"        example:"user@example.com"`
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

func authResponse(res *services.AuthResult) AuthResponse {
	return AuthResponse{
		ID:          res.User.ID,
		Name:        res.User.Name,
		Email:       res.User.Email,
		AccessToken: res.AccessToken,
	}
}

// Signup godoc
// @ID          signup
// @Summary     Register a user
// @Description Creates an account and returns it with a bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.SignupRequest  true  "Signup payload"
// @Success     201   {object}  handlers.AuthResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409   {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/signup [post]
func (h *Handlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}

	res, err := h.authSvc.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		msg := ""
		if errors.Is(err, services.ErrEmailTaken) {
			msg = "User with this email already exists"
		}
		writeError(c, err, msg)
		return
	}
	ok(c, http.StatusCreated, authResponse(res))
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies credentials and returns a bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Credentials"
// @Success     200   {object}  handlers.AuthResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid credentials"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}

	res, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		msg := ""
		if errors.Is(err, services.ErrInvalidCredentials) {
			msg = "Invalid credentials"
		}
		writeError(c, err, msg)
		return
	}
	ok(c, http.StatusOK, authResponse(res))
}
