// internal/platform/adapter.go

// Package platform wraps heterogeneous AI chat-completion backends behind one
// interface. Adapters are stateless, time out instead of hanging, and never
// retry; skip-or-retry decisions belong to the orchestrator.
package platform

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/ranksight/ranksight-backend/internal/models"
)

// DefaultTimeout bounds each outbound platform call.
const DefaultTimeout = 30 * time.Second

// Response is the uniform result of one chat completion.
type Response struct {
	Text       string
	DurationMs int64
}

// Adapter is the uniform interface over one backend. Failures (timeouts,
// backend errors, malformed payloads) come back wrapped around
// apperrors.ErrPlatformUnavailable so one dead backend never aborts a fan-out.
type Adapter interface {
	Name() models.PlatformType
	ChatComplete(ctx context.Context, prompt string) (*Response, error)
}

// Credentials configures one backend.
type Credentials struct {
	APIKey  string
	Model   string
	BaseURL string
}

// newLimiter builds the client-side limiter shared by adapter implementations
// so bursts of fan-outs do not trip upstream rate limits.
func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		rps = 2
	}
	if burst <= 0 {
		burst = 4
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
