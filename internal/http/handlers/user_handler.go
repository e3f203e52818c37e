package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crypto-backend/internal/domain"
	"github.com/tbourn/go-crypto-backend/internal/http/middleware"
	"github.com/tbourn/go-crypto-backend/internal/services"
)

// UpdateUserRequest is the JSON payload for PATCH /user/{id}. Omitted fields
// are left unchanged.
type UpdateUserRequest struct {
	Name *string `json:"name" binding:"omitempty,min=3,max=50" example:"Jane Doe"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID    string `json:"id"    example:"123e4567-e89b-12d3-a456-426614174000"`
	Email string `json:"email" example:"user@example.com"`
	Name  string `json:"name"  example:"Jane Doe"`
}

func userResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

// userError maps account errors; verb completes "You are not allowed to
// <verb> this account."
func userError(c *gin.Context, err error, id, verb string) {
	var msg string
	switch {
	case errors.Is(err, services.ErrForbidden):
		msg = fmt.Sprintf("You are not allowed to %s this account.", verb)
	case errors.Is(err, services.ErrUserNotFound):
		msg = fmt.Sprintf("User with ID %s not found.", id)
	}
	writeError(c, err, msg)
}

// Me godoc
// @ID          currentUser
// @Summary     Current user
// @Description Returns the authenticated user's profile.
// @Tags        User
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.UserResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Router      /user/me [get]
func (h *Handlers) Me(c *gin.Context) {
	uid := middleware.UserID(c)
	u, err := h.usersSvc.Profile(c.Request.Context(), uid)
	if err != nil {
		userError(c, err, uid, "view")
		return
	}
	ok(c, http.StatusOK, userResponse(u))
}

// GetUser godoc
// @ID          getUser
// @Summary     Get user by id
// @Tags        User
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "User ID"  format(uuid)
// @Success     200  {object}  handlers.UserResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Not your account"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Router      /user/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	id := c.Param("id")
	u, err := h.usersSvc.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		userError(c, err, id, "view")
		return
	}
	ok(c, http.StatusOK, userResponse(u))
}

// UpdateUser godoc
// @ID          updateUser
// @Summary     Update user
// @Description Updates the caller's own account.
// @Tags        User
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                      true  "User ID"  format(uuid)
// @Param       body  body      handlers.UpdateUserRequest  true  "Fields to change"
// @Success     200   {object}  handlers.UserResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403   {object}  handlers.ErrorResponse  "Not your account"
// @Failure     404   {object}  handlers.ErrorResponse  "User not found"
// @Router      /user/{id} [patch]
func (h *Handlers) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}

	u, err := h.usersSvc.Update(c.Request.Context(), middleware.UserID(c), id, req.Name)
	if err != nil {
		userError(c, err, id, "edit")
		return
	}
	ok(c, http.StatusOK, userResponse(u))
}

// DeleteUser godoc
// @ID          deleteUser
// @Summary     Delete user
// @Description Soft-deletes the caller's own account. The email becomes available for signup again.
// @Tags        User
// @Security    BearerAuth
// @Param       id   path    string  true  "User ID"  format(uuid)
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Not your account"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Router      /user/{id} [delete]
func (h *Handlers) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.usersSvc.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		userError(c, err, id, "delete")
		return
	}
	noContent(c)
}
