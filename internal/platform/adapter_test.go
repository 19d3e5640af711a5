// internal/platform/adapter_test.go
package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranksight/ranksight-backend/internal/apperrors"
	"github.com/ranksight/ranksight-backend/internal/models"
)

func TestOpenAIAdapterChatComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Nike and Adidas lead the market."}}]}`))
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(models.PlatformOpenAI, Credentials{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: server.URL,
	}, 5*time.Second)

	resp, err := adapter.ChatComplete(context.Background(), "best running shoes?")
	require.NoError(t, err)
	assert.Equal(t, "Nike and Adidas lead the market.", resp.Text)
	assert.GreaterOrEqual(t, resp.DurationMs, int64(0))
}

func TestOpenAIAdapterFailsClosedOnEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(models.PlatformOpenAI, Credentials{APIKey: "k", BaseURL: server.URL}, 5*time.Second)

	_, err := adapter.ChatComplete(context.Background(), "prompt")
	assert.True(t, errors.Is(err, apperrors.ErrPlatformUnavailable))
}

func TestOpenAIAdapterBackendErrorIsTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(models.PlatformGemini, Credentials{APIKey: "k", BaseURL: server.URL}, 5*time.Second)

	_, err := adapter.ChatComplete(context.Background(), "prompt")
	assert.True(t, errors.Is(err, apperrors.ErrPlatformUnavailable))
}

func TestAnthropicAdapterChatComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		w.Write([]byte(`{"content":[{"type":"text","text":"Adidas is a popular choice."}]}`))
	}))
	defer server.Close()

	adapter := NewAnthropicAdapter(Credentials{APIKey: "test-key", BaseURL: server.URL}, 5*time.Second)

	resp, err := adapter.ChatComplete(context.Background(), "best running shoes?")
	require.NoError(t, err)
	assert.Equal(t, "Adidas is a popular choice.", resp.Text)
}

func TestAnthropicAdapterMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	adapter := NewAnthropicAdapter(Credentials{APIKey: "k", BaseURL: server.URL}, 5*time.Second)

	_, err := adapter.ChatComplete(context.Background(), "prompt")
	assert.True(t, errors.Is(err, apperrors.ErrPlatformUnavailable))
}

func TestAdapterTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(models.PlatformOpenAI, Credentials{APIKey: "k", BaseURL: server.URL}, 50*time.Millisecond)

	_, err := adapter.ChatComplete(context.Background(), "prompt")
	assert.True(t, errors.Is(err, apperrors.ErrPlatformUnavailable))
}

func TestRegistryOrderedStableAndCapped(t *testing.T) {
	registry := NewRegistryFromCredentials(map[models.PlatformType]Credentials{
		models.PlatformPerplexity: {APIKey: "k", BaseURL: "https://api.perplexity.ai"},
		models.PlatformOpenAI:     {APIKey: "k", BaseURL: "https://api.openai.com/v1"},
		models.PlatformAnthropic:  {APIKey: "k", BaseURL: "https://api.anthropic.com/v1"},
		models.PlatformGemini:     {}, // no key, not enabled
	}, time.Second)

	all := registry.Ordered(0)
	require.Len(t, all, 3)
	assert.Equal(t, models.PlatformOpenAI, all[0].Name())
	assert.Equal(t, models.PlatformAnthropic, all[1].Name())
	assert.Equal(t, models.PlatformPerplexity, all[2].Name())

	capped := registry.Ordered(2)
	require.Len(t, capped, 2)
	assert.Equal(t, models.PlatformOpenAI, capped[0].Name())
}
