package ai

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"example.com/learning-path/backend/internal/models"
)

//go:embed schemas/plan.schema.json
var planSchemaJSON string

var loadPlanSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(planSchemaJSON))
})

// NormalizePlan проверяет структуру плана из ответа модели и заполняет производные поля.
// Шаги не переупорядочиваются, totalHours не сверяется с бюджетом, courseId не
// сверяется с каталогом.
func NormalizePlan(raw map[string]any) (models.Plan, error) {
	if err := validatePlanShape(raw); err != nil {
		return models.Plan{}, err
	}

	items, _ := raw["steps"].([]any)
	steps := make([]models.PlanStep, 0, len(items))
	for _, item := range items {
		fields, _ := item.(map[string]any)
		steps = append(steps, normalizeStep(fields))
	}

	plan := models.Plan{Steps: steps}

	if total, ok := toInt(raw["totalHours"]); ok {
		plan.TotalHours = total
	} else {
		plan.TotalHours = models.SumHours(steps)
	}

	if reasoning, ok := raw["reasoning"].(string); ok {
		plan.Reasoning = reasoning
	}

	return plan, nil
}

func normalizeStep(fields map[string]any) models.PlanStep {
	step, _ := toInt(fields["step"])
	courseID, _ := toInt(fields["courseId"])
	hours, _ := toInt(fields["hours"])
	note, _ := fields["note"].(string)

	return models.PlanStep{
		Step:     step,
		CourseID: courseID,
		Hours:    hours,
		Note:     note,
	}
}

func validatePlanShape(raw map[string]any) error {
	if raw == nil {
		return newGenerationError(ErrInvalidPlanStructure, errors.New("empty response object"))
	}

	schema, err := loadPlanSchema()
	if err != nil {
		return newGenerationError(ErrInvalidPlanStructure, fmt.Errorf("load plan schema: %w", err))
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return newGenerationError(ErrInvalidPlanStructure, err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			messages = append(messages, resultErr.String())
		}
		return newGenerationError(ErrInvalidPlanStructure, errors.New(strings.Join(messages, "; ")))
	}

	return nil
}
