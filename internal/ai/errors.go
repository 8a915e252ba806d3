package ai

import (
	"errors"
	"fmt"
)

var (
	ErrInput                = errors.New("invalid input")
	ErrUpstreamUnavailable  = errors.New("generative service unavailable")
	ErrNoStructureFound     = errors.New("no json structure found in ai response")
	ErrMalformedStructure   = errors.New("malformed json structure in ai response")
	ErrInvalidPlanStructure = errors.New("invalid plan structure")
)

// GenerationError описывает сбой генерации: вид ошибки (одна из sentinel-ошибок выше) и исходную причину.
type GenerationError struct {
	Kind error
	Err  error
}

func newGenerationError(kind, err error) *GenerationError {
	return &GenerationError{Kind: kind, Err: err}
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Retryable сообщает, может ли повторный вызов с теми же данными завершиться успешно.
func (e *GenerationError) Retryable() bool {
	return !errors.Is(e.Kind, ErrInput)
}

// KindName возвращает машинное имя вида ошибки для ответов API и метрик.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrInput):
		return "input_error"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ErrNoStructureFound):
		return "no_structure_found"
	case errors.Is(err, ErrMalformedStructure):
		return "malformed_structure"
	case errors.Is(err, ErrInvalidPlanStructure):
		return "invalid_plan_structure"
	default:
		return "internal"
	}
}
