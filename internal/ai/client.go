package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const defaultMaxTokens = 2000

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// Client отправляет промпт генеративной модели и возвращает текст ответа.
type Client interface {
	Complete(ctx context.Context, system, prompt string, temperature float64, maxOutputTokens int) (string, error)
}

type ClientConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	Timeout        time.Duration
	CircuitBreaker bool
}

// NewClient создает клиент выбранного провайдера, при необходимости оборачивая его в circuit breaker.
func NewClient(ctx context.Context, cfg ClientConfig) (Client, error) {
	var client Client

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderGemini:
		gemini, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		client = gemini
	case ProviderGroq, "":
		client = NewGroqClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.CircuitBreaker {
		client = NewBreakerClient(cfg.Provider, client)
	}

	return client, nil
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}

// UnavailableClient always fails; used when no provider is configured so that
// extraction degrades to the fallback and plan generation reports the cause.
type UnavailableClient struct {
	Reason error
}

func (c UnavailableClient) Complete(context.Context, string, string, float64, int) (string, error) {
	if c.Reason != nil {
		return "", c.Reason
	}
	return "", errors.New("ai provider is not configured")
}
