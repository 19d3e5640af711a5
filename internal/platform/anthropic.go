// internal/platform/anthropic.go
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ranksight/ranksight-backend/internal/apperrors"
	"github.com/ranksight/ranksight-backend/internal/models"
)

// AnthropicAdapter speaks the Anthropic messages wire format.
type AnthropicAdapter struct {
	creds   Credentials
	client  *http.Client
	limiter *rate.Limiter
}

func NewAnthropicAdapter(creds Credentials, timeout time.Duration) *AnthropicAdapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AnthropicAdapter{
		creds:   creds,
		client:  &http.Client{Timeout: timeout},
		limiter: newLimiter(2, 4),
	}
}

func (a *AnthropicAdapter) Name() models.PlatformType {
	return models.PlatformAnthropic
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *AnthropicAdapter) ChatComplete(ctx context.Context, prompt string) (*Response, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPlatformUnavailable, "anthropic: rate limiter interrupted: %v", err)
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     a.creds.Model,
		MaxTokens: 1024,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := strings.TrimRight(a.creds.BaseURL, "/") + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.creds.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPlatformUnavailable, "anthropic request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrPlatformUnavailable, "anthropic returned status %d", resp.StatusCode)
	}

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPlatformUnavailable, "anthropic: malformed response: %v", err)
	}
	if parsed.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrPlatformUnavailable, "anthropic: %s", parsed.Error.Message)
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Wrap(apperrors.ErrPlatformUnavailable, "anthropic: response contained no text")
	}

	return &Response{
		Text:       text,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}
