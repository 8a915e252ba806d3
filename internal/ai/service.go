package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"example.com/learning-path/backend/internal/models"
)

const (
	defaultPlanTemperature       = 0.7
	defaultPlanMaxTokens         = 2000
	defaultExtractionTemperature = 0.3
	defaultExtractionMaxTokens   = 500
)

// Exchange хранит данные обмена с моделью для журнала AI-запросов.
type Exchange struct {
	Prompt string
	Raw    string
	Err    error
}

type ExtractionResult struct {
	models.GoalExtraction
	Fallback bool `json:"fallback"`
}

type Service struct {
	client Client
	parser Parser

	planTemperature       float64
	planMaxTokens         int
	extractionTemperature float64
	extractionMaxTokens   int
}

type Option func(*Service)

// WithExtractor задает стратегию поиска JSON в ответе модели.
func WithExtractor(extractor Extractor) Option {
	return func(s *Service) {
		s.parser = NewParser(extractor)
	}
}

// WithPlanGeneration задает температуру и лимит токенов для генерации плана.
func WithPlanGeneration(temperature float64, maxTokens int) Option {
	return func(s *Service) {
		s.planTemperature = temperature
		s.planMaxTokens = maxTokens
	}
}

// WithExtractionGeneration задает температуру и лимит токенов для разбора цели.
func WithExtractionGeneration(temperature float64, maxTokens int) Option {
	return func(s *Service) {
		s.extractionTemperature = temperature
		s.extractionMaxTokens = maxTokens
	}
}

// Close освобождает ресурсы клиента, если он их держит (SDK Gemini).
func (s *Service) Close() error {
	if closer, ok := s.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// NewService создает сервис работы с AI-клиентом.
func NewService(client Client, opts ...Option) *Service {
	s := &Service{
		client:                client,
		parser:                NewParser(nil),
		planTemperature:       defaultPlanTemperature,
		planMaxTokens:         defaultPlanMaxTokens,
		extractionTemperature: defaultExtractionTemperature,
		extractionMaxTokens:   defaultExtractionMaxTokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GeneratePlan запрашивает у модели учебный план и валидирует ответ.
// Запасного генератора нет: любая ошибка возвращается вызывающему как *GenerationError.
func (s *Service) GeneratePlan(ctx context.Context, profile models.UserProfile, courses []models.Course) (models.Plan, Exchange, error) {
	if err := validatePlanInput(profile, courses); err != nil {
		return models.Plan{}, Exchange{}, newGenerationError(ErrInput, err)
	}

	prompt, err := BuildPlanPrompt(profile, ProjectCatalog(courses))
	if err != nil {
		return models.Plan{}, Exchange{}, newGenerationError(ErrInput, fmt.Errorf("build plan prompt: %w", err))
	}

	exchange := Exchange{Prompt: prompt}

	raw, err := s.client.Complete(ctx, PlanSystemInstruction, prompt, s.planTemperature, s.planMaxTokens)
	if err != nil {
		exchange.Err = newGenerationError(ErrUpstreamUnavailable, err)
		return models.Plan{}, exchange, exchange.Err
	}
	exchange.Raw = raw

	object, err := s.parser.Parse(raw)
	if err != nil {
		exchange.Err = err
		return models.Plan{}, exchange, err
	}

	plan, err := NormalizePlan(object)
	if err != nil {
		exchange.Err = err
		return models.Plan{}, exchange, err
	}

	return plan, exchange, nil
}

// GenerateExtraction разбирает свободное описание цели обучения.
// Любой сбой модели, парсинга или нормализации заменяется детерминированным
// результатом FallbackExtraction с Fallback=true; ошибка наружу не выходит.
func (s *Service) GenerateExtraction(ctx context.Context, description string, availableTags []string) (ExtractionResult, Exchange) {
	exchange := Exchange{Prompt: BuildExtractionPrompt(description, availableTags)}

	extraction, raw, err := s.extract(ctx, exchange.Prompt, availableTags)
	exchange.Raw = raw
	if err != nil {
		exchange.Err = err
		return ExtractionResult{
			GoalExtraction: FallbackExtraction(description, availableTags),
			Fallback:       true,
		}, exchange
	}

	return ExtractionResult{GoalExtraction: extraction}, exchange
}

func (s *Service) extract(ctx context.Context, prompt string, availableTags []string) (extraction models.GoalExtraction, raw string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("ai extraction panicked: %v", recovered)
		}
	}()

	raw, err = s.client.Complete(ctx, ExtractionSystemInstruction, prompt, s.extractionTemperature, s.extractionMaxTokens)
	if err != nil {
		return models.GoalExtraction{}, raw, newGenerationError(ErrUpstreamUnavailable, err)
	}

	object, err := s.parser.Parse(raw)
	if err != nil {
		return models.GoalExtraction{}, raw, err
	}

	return NormalizeExtraction(object, availableTags), raw, nil
}

func validatePlanInput(profile models.UserProfile, courses []models.Course) error {
	if isEmptyProfile(profile) {
		return errors.New("missing profile")
	}
	if strings.TrimSpace(profile.TargetDomain) == "" {
		return errors.New("missing target domain")
	}
	if len(courses) == 0 {
		return errors.New("missing courses")
	}
	if profile.HoursPerWeek <= 0 || profile.DeadlineWeeks <= 0 {
		return errors.New("hoursPerWeek and deadlineWeeks must be greater than 0")
	}
	return nil
}

func isEmptyProfile(profile models.UserProfile) bool {
	return profile.UserID == 0 &&
		strings.TrimSpace(profile.TargetDomain) == "" &&
		strings.TrimSpace(profile.CurrentLevel) == "" &&
		len(profile.Interests) == 0 &&
		profile.HoursPerWeek == 0 &&
		profile.DeadlineWeeks == 0
}
