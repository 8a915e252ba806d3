package recommender

import (
	"strings"

	"example.com/learning-path/backend/internal/models"
)

const (
	domainWeight        = 0.2
	relatedDomainWeight = 0.15
	levelWeight         = 0.3
	interestWeight      = 0.5
)

type levelPair struct {
	user   string
	course string
}

var levelFit = map[levelPair]float64{
	{models.LevelBeginner, models.LevelIntermediate}: 0.8,
	{models.LevelIntermediate, models.LevelAdvanced}: 0.8,
	{models.LevelIntermediate, models.LevelBeginner}: 0.4,
	{models.LevelAdvanced, models.LevelIntermediate}: 0.5,
	{models.LevelAdvanced, models.LevelBeginner}:     0.2,
}

// MatchScore оценивает соответствие курса профилю в диапазоне [0, 1].
func MatchScore(course models.Course, profile models.UserProfile) float64 {
	score := 0.0

	switch {
	case course.Domain == profile.TargetDomain:
		score += domainWeight
	case relatedDomains(profile.TargetDomain, course.Domain):
		score += relatedDomainWeight
	}

	score += levelWeight * levelScore(profile.CurrentLevel, course.Level)

	if len(profile.Interests) > 0 {
		matched := 0
		for _, interest := range profile.Interests {
			if matchesAnyTag(interest, course.Tags) {
				matched++
			}
		}
		score += interestWeight * float64(matched) / float64(len(profile.Interests))
	}

	return score
}

func levelScore(userLevel, courseLevel string) float64 {
	if userLevel == courseLevel {
		return 1.0
	}
	if fit, ok := levelFit[levelPair{user: userLevel, course: courseLevel}]; ok {
		return fit
	}
	return 0.1
}

// AI и Data Science считаются смежными доменами.
func relatedDomains(target, domain string) bool {
	return (target == "AI" && domain == "Data Science") ||
		(target == "Data Science" && domain == "AI")
}

func matchesAnyTag(interest string, tags []string) bool {
	interest = strings.ToLower(strings.TrimSpace(interest))
	if interest == "" {
		return false
	}

	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if strings.Contains(tag, interest) || strings.Contains(interest, tag) {
			return true
		}
	}
	return false
}
