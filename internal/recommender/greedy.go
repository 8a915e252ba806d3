package recommender

import (
	"fmt"
	"sort"

	"example.com/learning-path/backend/internal/models"
)

// Greedy строит план без обращения к модели: курсы целевого домена
// сортируются по MatchScore и берутся, пока хватает бюджета и пройдены пререквизиты.
type Greedy struct{}

type scoredCourse struct {
	course models.Course
	score  float64
}

// MakePlan возвращает план; пустой результат не считается ошибкой.
func (Greedy) MakePlan(profile models.UserProfile, courses []models.Course) models.Plan {
	budget := profile.TotalBudgetHours()

	scored := make([]scoredCourse, 0, len(courses))
	for _, course := range courses {
		if course.Domain != profile.TargetDomain && !relatedDomains(profile.TargetDomain, course.Domain) {
			continue
		}
		scored = append(scored, scoredCourse{course: course, score: MatchScore(course, profile)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	steps := make([]models.PlanStep, 0, len(scored))
	selected := make(map[int]struct{}, len(scored))
	total := 0

	for _, candidate := range scored {
		course := candidate.course
		if total+course.DurationHours > budget {
			continue
		}
		if !prereqsMet(course.PrereqIDs, selected) {
			continue
		}

		steps = append(steps, models.PlanStep{
			Step:     len(steps) + 1,
			CourseID: course.ID,
			Hours:    course.DurationHours,
			Note:     fmt.Sprintf("Score: %.2f", candidate.score),
		})
		total += course.DurationHours
		selected[course.ID] = struct{}{}
	}

	return models.Plan{
		Steps:      steps,
		TotalHours: models.SumHours(steps),
	}
}

func prereqsMet(prereqs []int, selected map[int]struct{}) bool {
	for _, id := range prereqs {
		if _, ok := selected[id]; !ok {
			return false
		}
	}
	return true
}
