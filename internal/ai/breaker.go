package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"example.com/learning-path/backend/internal/metrics"
)

// BreakerClient wraps a Client with a circuit breaker so that a failing
// provider is not hammered while it is down. Rejected calls surface as
// ordinary client errors and take the same path as transport failures.
type BreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker[string]
	name   string
}

// NewBreakerClient оборачивает клиент circuit breaker'ом.
// Цепь размыкается при доле ошибок >= 60% минимум на 5 запросах и
// пробует восстановиться через 30 секунд.
func NewBreakerClient(name string, client Client) *BreakerClient {
	cbName := "ai-" + name
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("ai circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerClient{client: client, cb: cb, name: cbName}
}

// Complete выполняет запрос к провайдеру под защитой circuit breaker.
func (b *BreakerClient) Complete(ctx context.Context, system, prompt string, temperature float64, maxOutputTokens int) (string, error) {
	text, err := b.cb.Execute(func() (string, error) {
		return b.client.Complete(ctx, system, prompt, temperature, maxOutputTokens)
	})
	if err != nil {
		outcome := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, outcome).Inc()
		return "", err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return text, nil
}

// Close закрывает обернутый клиент.
func (b *BreakerClient) Close() error {
	if closer, ok := b.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// State возвращает текущее состояние цепи.
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
