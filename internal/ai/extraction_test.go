package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"example.com/learning-path/backend/internal/models"
)

// TestNormalizeExtractionDefaults проверяет значения по умолчанию для пустого ответа.
func TestNormalizeExtractionDefaults(t *testing.T) {
	got := NormalizeExtraction(map[string]any{}, nil)

	assert.Equal(t, models.GoalExtraction{
		TargetDomain:  "General",
		CurrentLevel:  "Beginner",
		Tags:          []string{},
		HoursPerWeek:  10,
		DeadlineWeeks: 12,
	}, got)
}

// TestNormalizeExtractionCoercion проверяет приведение и откат числовых полей.
func TestNormalizeExtractionCoercion(t *testing.T) {
	tests := []struct {
		name      string
		hours     any
		weeks     any
		wantHours int
		wantWeeks int
	}{
		{name: "numbers", hours: float64(15), weeks: float64(20), wantHours: 15, wantWeeks: 20},
		{name: "numeric strings", hours: " 8 ", weeks: "6", wantHours: 8, wantWeeks: 6},
		{name: "fractional", hours: 7.9, weeks: 3.2, wantHours: 7, wantWeeks: 3},
		{name: "garbage", hours: "a lot", weeks: true, wantHours: 10, wantWeeks: 12},
		{name: "non-positive", hours: float64(-3), weeks: float64(0), wantHours: 10, wantWeeks: 12},
		{name: "null", hours: nil, weeks: []any{1}, wantHours: 10, wantWeeks: 12},
		{name: "out of range", hours: 1e30, weeks: -1e30, wantHours: 10, wantWeeks: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeExtraction(map[string]any{"hoursPerWeek": tt.hours, "deadlineWeeks": tt.weeks}, nil)
			assert.Equal(t, tt.wantHours, got.HoursPerWeek)
			assert.Equal(t, tt.wantWeeks, got.DeadlineWeeks)
		})
	}
}

// TestNormalizeExtractionScalars проверяет строковые поля неверного типа.
func TestNormalizeExtractionScalars(t *testing.T) {
	got := NormalizeExtraction(map[string]any{"targetDomain": float64(42), "currentLevel": "  "}, nil)
	assert.Equal(t, "General", got.TargetDomain)
	assert.Equal(t, "Beginner", got.CurrentLevel)

	got = NormalizeExtraction(map[string]any{"targetDomain": "Web Development", "currentLevel": "Advanced"}, nil)
	assert.Equal(t, "Web Development", got.TargetDomain)
	assert.Equal(t, "Advanced", got.CurrentLevel)
}

// TestNormalizeExtractionWhitelist проверяет фильтрацию тегов с написанием из белого списка.
func TestNormalizeExtractionWhitelist(t *testing.T) {
	raw := map[string]any{"tags": []any{"PYTHON", "rust", "Sql", float64(3), "python"}}

	got := NormalizeExtraction(raw, []string{"Python", "SQL", "Docker"})
	assert.Equal(t, []string{"Python", "SQL"}, got.Tags)
}

// TestNormalizeExtractionNoWhitelist проверяет пропуск тегов без фильтрации.
func TestNormalizeExtractionNoWhitelist(t *testing.T) {
	raw := map[string]any{"tags": []any{"Kubernetes", "helm", "invented-tag"}}

	got := NormalizeExtraction(raw, nil)
	assert.Equal(t, []string{"Kubernetes", "helm", "invented-tag"}, got.Tags)

	got = NormalizeExtraction(map[string]any{"tags": "go, rust"}, nil)
	assert.Empty(t, got.Tags)
}
