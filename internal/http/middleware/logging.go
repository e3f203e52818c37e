// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the request ID injector, the access logger and the
// panic recovery handler. Recommended order:
//
//  1. RequestID()
//  2. AccessLog()
//  3. Recovery()
//
// so that panics and errors carry the correlation ID and are logged. The
// request-scoped logger is stored under the "logger" Gin context key and is
// read back with LoggerFrom.
package middleware

import (
	"net/http"
	"regexp"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-crypto-backend/internal/observability"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// requestIDHeader is the HTTP header used to propagate the correlation ID.
	requestIDHeader = "X-Request-ID"
	// maxQueryLogLength caps the number of bytes of the raw query string logged.
	maxQueryLogLength = 2048
	// maxRequestIDLength bounds client-supplied correlation IDs.
	maxRequestIDLength = 128
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._\-:]+$`)

// RequestID attaches (or propagates) a correlation identifier per request.
// A client-supplied X-Request-ID is reused only when it is short and made of
// token characters; otherwise a new UUID is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > maxRequestIDLength || !requestIDPattern.MatchString(rid) {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// AccessLog writes one structured log line per request with personal data
// and credentials scrubbed, and attaches a request-scoped zerolog.Logger to
// the context for handlers.
//
// Level is chosen by outcome: error for 5xx or collected gin errors, warn
// for 4xx, info otherwise. The user id is read after the handler chain so
// authenticated requests are attributed.
func AccessLog(opts RedactOptions) gin.HandlerFunc {
	red := NewRedactor(opts)

	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		path := c.FullPath()
		if path == "" {
			// Fallback when route not matched / 404.
			path = red.String(c.Request.URL.Path)
		}

		l := observability.WithTrace(c.Request.Context(), log.With()).
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set("logger", &l)

		query := red.String(truncate(c.Request.URL.RawQuery, maxQueryLogLength))
		headers := red.Headers(c.Request.Header)

		c.Next()

		status := c.Writer.Status()
		uid, _ := c.Get("userID")

		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0:
			ev = l.Error().Str("errors", red.String(c.Errors.String()))
		case status >= http.StatusInternalServerError:
			ev = l.Error()
		case status >= http.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		ev.
			Str("user_id", asString(uid)).
			Str("remote_ip", c.ClientIP()).
			Str("query", query).
			Int64("bytes_in", c.Request.ContentLength).
			Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}

// Recovery converts panics into a JSON 500 with the request ID and logs the
// stack. If the handler already wrote a response only the status is forced.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid, _ := c.Get(requestIDKey)
				LoggerFrom(c).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", asString(rid)).
					Msg("panic recovered")

				if !c.Writer.Written() {
					c.Header(requestIDHeader, asString(rid))
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"request_id": asString(rid),
						"code":       "internal_error",
						"message":    "internal server error",
					})
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or a plain one when
// AccessLog did not run. The result is never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get("logger"); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// RequestIDFrom returns the correlation ID set by RequestID.
func RequestIDFrom(c *gin.Context) string {
	v, _ := c.Get(requestIDKey)
	if s := asString(v); s != "" {
		return s
	}
	return c.Writer.Header().Get(requestIDHeader)
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate caps s at max bytes and appends an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
