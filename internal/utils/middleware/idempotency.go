package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/colorstudio/server/internal/port/outbound"
	apperrors "github.com/colorstudio/server/internal/shared/errors"
)

const (
	// IdempotencyKeyHeader is the header for idempotency key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader marks a replayed response.
	IdempotentReplayHeader = "Idempotent-Replayed"
	// defaultIdempotencyTTL is the default TTL for stored responses.
	defaultIdempotencyTTL = 24 * time.Hour
	// defaultIdempotencyLockTTL bounds how long an in-flight claim is held.
	defaultIdempotencyLockTTL = 2 * time.Minute
	// idempotencyStoreTimeout bounds saving and unlocking once the handler returned.
	idempotencyStoreTimeout = 5 * time.Second
)

// IdempotencyConfig holds idempotency middleware configuration.
type IdempotencyConfig struct {
	// TTL is the time to live for stored responses.
	TTL time.Duration
	// LockTTL must exceed the slowest request, or a retry may run concurrently.
	LockTTL time.Duration
	// Methods are the HTTP methods to apply idempotency check.
	// Default: POST, PUT, PATCH
	Methods []string
}

// DefaultIdempotencyConfig returns the default idempotency configuration.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     defaultIdempotencyTTL,
		LockTTL: defaultIdempotencyLockTTL,
		Methods: []string{"POST", "PUT", "PATCH"},
	}
}

// idempotencyResponse stores the cached response.
type idempotencyResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// idempotencyResponseWriter wraps gin.ResponseWriter to capture the response.
type idempotencyResponseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *idempotencyResponseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency returns a middleware that replays the stored response for a
// repeated Idempotency-Key, so a retried generation is never charged twice.
// Keys are scoped to the authenticated user, the route and the request body,
// so reusing a key with a different body runs the request. Server errors and
// 402 responses are not stored, so they can be retried once the cause is gone.
// The response is stored even if the client disconnected, because the handler
// may already have spent credits.
func Idempotency(store outbound.IdempotencyStorePort, cfg IdempotencyConfig, log *zap.Logger) gin.HandlerFunc {
	if cfg.TTL == 0 {
		cfg.TTL = defaultIdempotencyTTL
	}
	if cfg.LockTTL == 0 {
		cfg.LockTTL = defaultIdempotencyLockTTL
	}
	if len(cfg.Methods) == 0 {
		cfg.Methods = []string{"POST", "PUT", "PATCH"}
	}

	methodSet := make(map[string]bool)
	for _, m := range cfg.Methods {
		methodSet[m] = true
	}

	return func(c *gin.Context) {
		if store == nil || !methodSet[c.Request.Method] {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abortWithAppError(c, apperrors.BadRequest("Invalid request body"))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		ctx := c.Request.Context()
		cacheKey := idempotencyCacheKey(GetUserID(c), c.Request.Method, c.FullPath(), idempotencyKey, body)

		if data, err := store.Load(ctx, cacheKey); err == nil {
			var cached idempotencyResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				c.Header(IdempotentReplayHeader, "true")
				c.Data(cached.StatusCode, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		}

		locked, err := store.Lock(ctx, cacheKey, cfg.LockTTL)
		if err != nil {
			log.Warn("idempotency lock failed, continuing without replay protection", zap.Error(err))
			c.Next()
			return
		}
		if !locked {
			abortWithAppError(c, apperrors.Conflict("A request with this idempotency key is already being processed"))
			return
		}

		defer func() {
			unlockCtx, cancel := detachedStoreContext(ctx)
			defer cancel()
			if err := store.Unlock(unlockCtx, cacheKey); err != nil {
				log.Warn("idempotency unlock failed", zap.Error(err))
			}
		}()

		respWriter := &idempotencyResponseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = respWriter

		c.Next()

		status := c.Writer.Status()
		if !storableStatus(status) {
			return
		}
		data, err := json.Marshal(&idempotencyResponse{
			StatusCode:  status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			Body:        respWriter.body.Bytes(),
		})
		if err != nil {
			return
		}
		saveCtx, cancel := detachedStoreContext(ctx)
		defer cancel()
		if err := store.Save(saveCtx, cacheKey, data, cfg.TTL); err != nil {
			log.Warn("store idempotent response failed", zap.Error(err))
		}
	}
}

// detachedStoreContext keeps request values but survives a client disconnect.
func detachedStoreContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), idempotencyStoreTimeout)
}

// storableStatus reports whether a response may be replayed for a repeated key.
// A 402 depends on the balance, which changes when credits are bought.
func storableStatus(status int) bool {
	if status < 200 || status >= 500 {
		return false
	}
	return status != http.StatusPaymentRequired
}

// idempotencyCacheKey scopes a client key to the caller, route and body.
func idempotencyCacheKey(userID uuid.UUID, method, route, idempotencyKey string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(userID.String() + ":" + method + ":" + route + ":" + idempotencyKey + ":"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
