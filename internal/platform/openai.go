// internal/platform/openai.go
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

// OpenAIAdapter speaks the OpenAI chat-completions wire format. Gemini and
// Perplexity expose OpenAI-compatible endpoints, so the same adapter serves
// all three with different base URLs and models.
type OpenAIAdapter struct {
	name    models.PlatformType
	creds   Credentials
	client  *http.Client
	limiter *rate.Limiter
}

func NewOpenAIAdapter(name models.PlatformType, creds Credentials, timeout time.Duration) *OpenAIAdapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIAdapter{
		name:    name,
		creds:   creds,
		client:  &http.Client{Timeout: timeout},
		limiter: newLimiter(2, 4),
	}
}

func (a *OpenAIAdapter) Name() models.PlatformType {
	return a.name
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *OpenAIAdapter) ChatComplete(ctx context.Context, prompt string) (*Response, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPlatformUnavailable, "%s: rate limiter interrupted: %v", a.name, err)
	}

	body, err := json.Marshal(openAIRequest{
		Model:    a.creds.Model,
		Messages: []openAIMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := strings.TrimRight(a.creds.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.creds.APIKey)

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPlatformUnavailable, "%s request failed: %v", a.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrPlatformUnavailable, "%s returned status %d", a.name, resp.StatusCode)
	}

	var parsed openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPlatformUnavailable, "%s: malformed response: %v", a.name, err)
	}
	if parsed.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrPlatformUnavailable, "%s: %s", a.name, parsed.Error.Message)
	}
	// Fail closed on shape mismatch rather than passing empty text downstream.
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return nil, apperrors.Wrap(apperrors.ErrPlatformUnavailable, "%s: response contained no content", a.name)
	}

	return &Response{
		Text:       parsed.Choices[0].Message.Content,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}
