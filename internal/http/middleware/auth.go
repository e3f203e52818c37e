package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crypto-backend/internal/auth"
)

const ctxKeyUserID = "userID"

// TokenParser validates a raw access token.
type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer"
// token with 401. On success the token subject is stored for UserID.
func RequireAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		c.Set(ctxKeyUserID, claims.UserID())
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" before RequireAuth.
func UserID(c *gin.Context) string {
	v, _ := c.Get(ctxKeyUserID)
	return asString(v)
}

func bearerToken(h string) (string, bool) {
	scheme, tok, found := strings.Cut(strings.TrimSpace(h), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// abortJSON writes the same envelope as handlers.ErrorResponse.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": RequestIDFrom(c),
		"code":       code,
		"message":    msg,
	})
}
