package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/zfogg/clipfeed/internal/util"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware traces HTTP requests with OpenTelemetry.
// It wraps otelgin and adds feed attributes to the server span.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if id := util.GetViewerID(c); id != "" {
			span.SetAttributes(attribute.String("viewer.id", id))
		}
		if sessionID := c.Param("id"); sessionID != "" {
			span.SetAttributes(attribute.String("route.id", sessionID))
		}
		if tag := c.Query("q"); tag != "" {
			span.SetAttributes(attribute.String("query.q", tag))
		}

		for _, ginErr := range c.Errors {
			if ginErr.Err != nil {
				span.RecordError(ginErr.Err, trace.WithStackTrace(true))
				span.SetStatus(codes.Error, ginErr.Error())
			}
		}
	}
}
