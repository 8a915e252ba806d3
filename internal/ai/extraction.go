package ai

import (
	"strings"

	"example.com/learning-path/backend/internal/models"
)

// NormalizeExtraction приводит ответ модели к полной GoalExtraction.
// Никогда не возвращает ошибку: каждое поле независимо получает значение по умолчанию.
func NormalizeExtraction(raw map[string]any, whitelist []string) models.GoalExtraction {
	extraction := models.GoalExtraction{
		TargetDomain:  models.DefaultDomain,
		CurrentLevel:  models.DefaultLevel,
		HoursPerWeek:  models.DefaultHoursPerWeek,
		DeadlineWeeks: models.DefaultDeadlineWeeks,
	}

	if domain, ok := toNonEmptyString(raw["targetDomain"]); ok {
		extraction.TargetDomain = domain
	}
	if level, ok := toNonEmptyString(raw["currentLevel"]); ok {
		extraction.CurrentLevel = level
	}
	if hours, ok := toInt(raw["hoursPerWeek"]); ok && hours > 0 {
		extraction.HoursPerWeek = hours
	}
	if weeks, ok := toInt(raw["deadlineWeeks"]); ok && weeks > 0 {
		extraction.DeadlineWeeks = weeks
	}

	extraction.Tags = filterTags(stringList(raw["tags"]), whitelist)
	return extraction
}

// filterTags оставляет только теги из белого списка (без учета регистра) в его написании.
// Пустой белый список пропускает теги без фильтрации.
func filterTags(tags, whitelist []string) []string {
	if len(whitelist) == 0 {
		return tags
	}

	allowed := whitelistIndex(whitelist)
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, tag := range tags {
		key := normalizeTag(tag)
		original, ok := allowed[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, original)
	}

	return out
}

// whitelistIndex строит отображение lowercase -> исходное написание; при
// повторах побеждает первое вхождение.
func whitelistIndex(whitelist []string) map[string]string {
	index := make(map[string]string, len(whitelist))
	for _, tag := range whitelist {
		key := normalizeTag(tag)
		if key == "" {
			continue
		}
		if _, exists := index[key]; !exists {
			index[key] = tag
		}
	}
	return index
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func stringList(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
