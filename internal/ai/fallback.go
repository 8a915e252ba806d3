package ai

import (
	"strings"

	"example.com/learning-path/backend/internal/models"
)

// FallbackExtraction разбирает описание цели по фиксированным таблицам ключевых слов
// без обращения к модели. Всегда возвращает полный результат.
func FallbackExtraction(description string, whitelist []string) models.GoalExtraction {
	lowered := strings.ToLower(description)

	return models.GoalExtraction{
		TargetDomain:  detectDomain(lowered),
		CurrentLevel:  models.DefaultLevel,
		Tags:          detectTags(lowered, whitelist),
		HoursPerWeek:  models.DefaultHoursPerWeek,
		DeadlineWeeks: models.DefaultDeadlineWeeks,
	}
}

func detectDomain(lowered string) string {
	for _, entry := range domainTable {
		for _, keyword := range entry.Keywords {
			if strings.Contains(lowered, keyword) {
				return entry.Domain
			}
		}
	}
	return models.DefaultDomain
}

func detectTags(lowered string, whitelist []string) []string {
	tokens := tokenize(lowered)

	if len(whitelist) > 0 {
		allowed := whitelistIndex(whitelist)
		tags := collectTokens(tokens, func(token string) (string, bool) {
			original, ok := allowed[token]
			return original, ok
		})
		if len(tags) == 0 {
			limit := min(fallbackWhitelistTags, len(whitelist))
			return append([]string(nil), whitelist[:limit]...)
		}
		return tags
	}

	tags := collectTokens(tokens, func(token string) (string, bool) {
		_, ok := techVocabulary[token]
		return token, ok
	})
	if len(tags) == 0 {
		return []string{fallbackDefaultTag}
	}
	return tags
}

// collectTokens отбирает до fallbackTagLimit различных совпадений в порядке описания.
func collectTokens(tokens []string, match func(string) (string, bool)) []string {
	out := make([]string, 0, fallbackTagLimit)
	seen := make(map[string]struct{}, fallbackTagLimit)

	for _, token := range tokens {
		tag, ok := match(token)
		if !ok {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		if len(out) == fallbackTagLimit {
			break
		}
	}

	return out
}

func tokenize(lowered string) []string {
	replacer := strings.NewReplacer(",", " ", ".", " ")
	return strings.Fields(replacer.Replace(lowered))
}
