package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crypto-backend/internal/http/middleware"
	"github.com/tbourn/go-crypto-backend/internal/services"
)

// FavoriteRequest is the JSON payload for POST /crypto/favorite and
// POST /crypto/unfavorite.
type FavoriteRequest struct {
	Crypto string `json:"crypto" binding:"required,min=3,max=30" example:"ethereum"`
}

// UnfavoriteResponse reports how many favorites were removed.
type UnfavoriteResponse struct {
	Count int64 `json:"count" example:"1"`
}

// AddFavorite godoc
// @ID          addFavorite
// @Summary     Add a favorite
// @Description Adds an asset to the caller's favorites.
// @Tags        Crypto
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.FavoriteRequest  true  "Asset"
// @Success     201   {object}  domain.Favorite
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401   {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     409   {object}  handlers.ErrorResponse  "Already a favorite"
// @Router      /crypto/favorite [post]
func (h *Handlers) AddFavorite(c *gin.Context) {
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}

	fav, err := h.favSvc.Add(c.Request.Context(), middleware.UserID(c), req.Crypto)
	if err != nil {
		msg := ""
		if errors.Is(err, services.ErrFavoriteExists) {
			msg = fmt.Sprintf("Crypto %s is already in favorites", strings.TrimSpace(req.Crypto))
		}
		writeError(c, err, msg)
		return
	}
	ok(c, http.StatusCreated, fav)
}

// RemoveFavorite godoc
// @ID          removeFavorite
// @Summary     Remove a favorite
// @Description Removes an asset from the caller's favorites. Removing a non-favorite returns count 0.
// @Tags        Crypto
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.FavoriteRequest  true  "Asset"
// @Success     200   {object}  handlers.UnfavoriteResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401   {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /crypto/unfavorite [post]
func (h *Handlers) RemoveFavorite(c *gin.Context) {
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}

	n, err := h.favSvc.Remove(c.Request.Context(), middleware.UserID(c), req.Crypto)
	if err != nil {
		writeError(c, err, "")
		return
	}
	ok(c, http.StatusOK, UnfavoriteResponse{Count: n})
}

// ListFavorites godoc
// @ID          listFavorites
// @Summary     List favorites
// @Description Returns the caller's favorites, newest first.
// @Tags        Crypto
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}   domain.Favorite
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /crypto/favorites [get]
func (h *Handlers) ListFavorites(c *gin.Context) {
	favs, err := h.favSvc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err, "")
		return
	}
	ok(c, http.StatusOK, favs)
}
