package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/idempotency"
	"tradebook/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		ctx := c.Request.Context()

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(ctx, "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}

			body := gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			}
			if appErr.Retryable {
				body["retryable"] = true
			}

			settleIdempotency(c, appErr.HTTPStatus, body, appErr.Retryable)
			c.JSON(appErr.HTTPStatus, body)
			return
		}

		logger.Error(ctx, "unhandled error", "error", err)

		body := gin.H{
			"code":    apperror.CodeInternal,
			"message": "Internal server error",
			"details": map[string]any{
				"request_id": c.GetString("request_id"),
			},
		}

		settleIdempotency(c, http.StatusInternalServerError, body, false)
		c.JSON(http.StatusInternalServerError, body)
	}
}

// settleIdempotency records a permanent failure for replay, or frees the key
// when the client may retry the same request.
func settleIdempotency(c *gin.Context, status int, body any, retryable bool) {
	key, store, ok := idempotencyFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var err error
	if retryable {
		err = store.ReleaseKey(ctx, key)
	} else {
		err = store.FailKey(ctx, key, status, "application/json", body)
	}
	if err != nil {
		logger.Warn(ctx, "idempotency key not settled", "key", key, "error", err)
	}
}

func idempotencyFromContext(c *gin.Context) (string, idempotency.Store, bool) {
	key := c.GetString(ContextIdempotencyKey)
	if key == "" {
		return "", nil, false
	}
	v, ok := c.Get(ContextIdempotencyStore)
	if !ok {
		return "", nil, false
	}
	store, ok := v.(idempotency.Store)
	return key, store, ok && store != nil
}
