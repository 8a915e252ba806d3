package models

const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"

	DefaultDomain        = "General"
	DefaultLevel         = LevelBeginner
	DefaultHoursPerWeek  = 10
	DefaultDeadlineWeeks = 12
)

type Course struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Domain        string   `json:"domain"`
	Level         string   `json:"level"`
	DurationHours int      `json:"durationHours"`
	Tags          []string `json:"tags"`
	PrereqIDs     []int    `json:"prereqIds"`
}

type UserProfile struct {
	UserID        int      `json:"userId"`
	TargetDomain  string   `json:"targetDomain"`
	CurrentLevel  string   `json:"currentLevel"`
	Interests     []string `json:"interests"`
	HoursPerWeek  int      `json:"hoursPerWeek"`
	DeadlineWeeks int      `json:"deadlineWeeks"`
}

// TotalBudgetHours возвращает доступный бюджет часов на весь срок обучения.
func (p UserProfile) TotalBudgetHours() int {
	return p.HoursPerWeek * p.DeadlineWeeks
}

type PlanStep struct {
	Step     int    `json:"step"`
	CourseID int    `json:"courseId"`
	Hours    int    `json:"hours"`
	Note     string `json:"note"`
}

type Plan struct {
	Steps      []PlanStep `json:"steps"`
	TotalHours int        `json:"totalHours"`
	Reasoning  string     `json:"reasoning,omitempty"`
}

type GoalExtraction struct {
	TargetDomain  string   `json:"targetDomain"`
	CurrentLevel  string   `json:"currentLevel"`
	Tags          []string `json:"tags"`
	HoursPerWeek  int      `json:"hoursPerWeek"`
	DeadlineWeeks int      `json:"deadlineWeeks"`
}

// SumHours суммирует часы всех шагов плана.
func SumHours(steps []PlanStep) int {
	total := 0
	for _, step := range steps {
		total += step.Hours
	}
	return total
}
