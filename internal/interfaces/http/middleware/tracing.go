package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns the otelgin middleware followed by a handler that tags the
// server span with the request, correlation and operator ids. Health probes
// are not traced.
func Tracing(serviceName string, enabled bool) []gin.HandlerFunc {
	if !enabled {
		return nil
	}
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName, otelgin.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		})),
		enrichSpan,
	}
}

func enrichSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	c.Next()
	if !span.IsRecording() {
		return
	}

	if id := c.Writer.Header().Get(HeaderRequestID); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if id := c.Writer.Header().Get(HeaderCorrelationID); id != "" {
		span.SetAttributes(attribute.String("correlation_id", id))
	}
	if claims := ClaimsFrom(c); claims != nil {
		span.SetAttributes(attribute.String("operator", claims.Username))
	}
	if name := c.Param("name"); name != "" {
		span.SetAttributes(attribute.String("command", name))
	}
	if c.Writer.Status() >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(c.Writer.Status()))
	}
}
