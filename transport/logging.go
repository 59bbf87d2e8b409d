package transport

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pipedocs/docpipe/logger"
)

// WithLogging logs method, target, elapsed time, and status or error for
// every call passing through it. It never alters the response or suppresses
// an error.
func WithLogging(log *logger.Logger) Middleware {
	return func(next Caller) Caller {
		return func(ctx context.Context, req Request) (*Response, error) {
			callID := uuid.NewString()
			start := time.Now()

			resp, err := next(ctx, req)

			fields := map[string]interface{}{
				"call_id":     callID,
				"method":      req.Method,
				"target":      req.Target,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			switch {
			case err != nil:
				fields["error"] = err.Error()
				log.Error("call failed", fields)
			default:
				fields["status"] = resp.StatusCode
				log.Debug("call completed", fields)
			}

			return resp, err
		}
	}
}
