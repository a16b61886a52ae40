package middleware

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RonaldAllanRivera/ride-info/internal/auth"
	"github.com/RonaldAllanRivera/ride-info/internal/logger"
	"github.com/RonaldAllanRivera/ride-info/internal/redis"
)

const (
	// IdempotencyHeader is the request header naming an idempotency key.
	IdempotencyHeader = "Idempotency-Key"
	// ReplayedHeader marks a response served from the idempotency store.
	ReplayedHeader = "Idempotent-Replayed"
)

// responseWriter wraps gin.ResponseWriter to capture the response.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response for a repeated mutating request
// carrying the same Idempotency-Key. Keys are scoped to the caller, method
// and path. Store failures degrade to normal processing.
func Idempotency(store redis.ResponseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || !isMutating(c.Request.Method) {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		storeKey := scopedKey(c, key)

		cached, err := store.Get(ctx, storeKey)
		if err != nil {
			logger.Warn("Idempotency lookup failed", zap.Error(err), zap.String("key", storeKey))
			c.Next()
			return
		}

		if cached != nil {
			for k, v := range cached.Headers {
				for _, val := range v {
					c.Header(k, val)
				}
			}
			c.Header(ReplayedHeader, "true")
			if len(cached.Body) == 0 {
				c.AbortWithStatus(cached.StatusCode)
				return
			}
			c.Data(cached.StatusCode, cached.Headers.Get("Content-Type"), cached.Body)
			c.Abort()
			return
		}

		w := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusInternalServerError {
			return
		}
		response := &redis.CachedResponse{
			StatusCode: status,
			Body:       w.body.Bytes(),
			Headers:    extractResponseHeaders(c),
		}
		if err := store.Save(ctx, storeKey, response); err != nil {
			logger.Warn("Idempotency save failed", zap.Error(err), zap.String("key", storeKey))
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func scopedKey(c *gin.Context, key string) string {
	owner := "anonymous"
	if p, ok := auth.PrincipalFrom(c.Request.Context()); ok {
		owner = strconv.FormatInt(p.UserID, 10)
	}
	return owner + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key
}

// extractResponseHeaders extracts headers to cache.
func extractResponseHeaders(c *gin.Context) http.Header {
	headers := make(http.Header)
	for _, name := range []string{"Content-Type", "Location"} {
		if v := c.Writer.Header().Get(name); v != "" {
			headers.Set(name, v)
		}
	}
	return headers
}
