package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxCorrelationIDLength = 128

// Correlation allows a single in-flight request per X-Correlation-ID.
// Requests without the header get a fresh id and are never rejected.
// A store error lets the request through rather than blocking commands.
func Correlation(store shared.InFlightStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderCorrelationID)
		supplied := id != ""
		if !supplied {
			id = newID()
		}
		if len(id) > maxCorrelationIDLength {
			abort(c, http.StatusBadRequest, dto.ErrCodeValidation, "X-Correlation-ID is too long")
			return
		}

		c.Header(HeaderCorrelationID, id)
		c.Request = c.Request.WithContext(logger.WithCorrelationID(c.Request.Context(), id))

		if !supplied {
			c.Next()
			return
		}

		token, acquired, err := store.Acquire(c.Request.Context(), id, ttl)
		if err != nil {
			logger.GetGinLogger(c).Warn("In-flight store unavailable, admitting request",
				zap.String("correlation_id", id), zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			status, resp := dto.FromError(shared.ErrRequestInFlight)
			c.AbortWithStatusJSON(status, resp)
			return
		}

		defer func() {
			// The request context may already be cancelled here.
			if err := store.Release(context.WithoutCancel(c.Request.Context()), id, token); err != nil {
				logger.GetGinLogger(c).Warn("Failed to release correlation id",
					zap.String("correlation_id", id), zap.Error(err))
			}
		}()
		c.Next()
	}
}

// Timeout bounds the request context. A handler that returns after the
// deadline without writing gets a 504 envelope.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !c.Writer.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			abort(c, http.StatusGatewayTimeout, dto.ErrCodeTimeout, "Request timed out")
		}
	}
}
