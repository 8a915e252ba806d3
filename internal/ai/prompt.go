package ai

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"example.com/learning-path/backend/internal/models"
)

const (
	PlanSystemInstruction       = "You are an expert learning path advisor. Analyze user profiles and course catalogs to create optimal, personalized learning plans. Return structured JSON with course recommendations."
	ExtractionSystemInstruction = "You are a learning goal analyst. Turn free-text learning goals into structured profile data. Respond with JSON only, without extra text."
)

// PromptCourse is the reduced view of a course that is embedded in prompts.
type PromptCourse struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Domain   string   `json:"domain"`
	Level    string   `json:"level"`
	Duration int      `json:"duration"`
	Tags     []string `json:"tags"`
	Prereqs  []int    `json:"prereqs"`
}

// ProjectCourse оставляет у курса только поля, нужные для промпта.
func ProjectCourse(course models.Course) PromptCourse {
	tags := course.Tags
	if tags == nil {
		tags = []string{}
	}
	prereqs := course.PrereqIDs
	if prereqs == nil {
		prereqs = []int{}
	}

	return PromptCourse{
		ID:       course.ID,
		Title:    course.Title,
		Domain:   course.Domain,
		Level:    course.Level,
		Duration: course.DurationHours,
		Tags:     tags,
		Prereqs:  prereqs,
	}
}

// ProjectCatalog проецирует каталог с сохранением порядка курсов.
func ProjectCatalog(courses []models.Course) []PromptCourse {
	out := make([]PromptCourse, 0, len(courses))
	for _, course := range courses {
		out = append(out, ProjectCourse(course))
	}
	return out
}

// BuildPlanPrompt собирает промпт генерации учебного плана.
func BuildPlanPrompt(profile models.UserProfile, courses []PromptCourse) (string, error) {
	catalog, err := json.MarshalIndent(courses, "", "  ")
	if err != nil {
		return "", err
	}

	budget := profile.TotalBudgetHours()

	prompt := fmt.Sprintf(`Create a personalized learning plan based on the following:

USER PROFILE:
- Target Domain: %s
- Current Level: %s
- Interests: %s
- Available Hours/Week: %d
- Deadline: %d weeks
- Total Available Hours: %d

AVAILABLE COURSES:
%s

INSTRUCTIONS:
1. Select courses that match the user's target domain and interests
2. Ensure prerequisites are satisfied (courses must be ordered correctly)
3. Match the user's current level (start appropriate, progress logically)
4. Stay within time budget (%d total hours)
5. Prioritize courses with relevant tags matching user interests
6. Create a logical progression from fundamentals to advanced topics

Return ONLY a JSON object in this exact format:
{
  "steps": [
    {
      "step": 1,
      "courseId": <course_id>,
      "hours": <duration>,
      "note": "<brief explanation why this course>"
    }
  ],
  "totalHours": <sum_of_all_hours>,
  "reasoning": "<brief explanation of the learning path strategy>"
}

IMPORTANT: Return ONLY valid JSON, no markdown, no extra text.`,
		profile.TargetDomain,
		profile.CurrentLevel,
		strings.Join(profile.Interests, ", "),
		profile.HoursPerWeek,
		profile.DeadlineWeeks,
		budget,
		string(catalog),
		budget,
	)

	return prompt, nil
}

// BuildExtractionPrompt собирает промпт разбора свободного описания цели.
func BuildExtractionPrompt(description string, availableTags []string) string {
	var sb strings.Builder

	sb.WriteString("Analyze the learner's goal description and extract a structured learning profile.\n\n")
	sb.WriteString("DESCRIPTION:\n\"\"\"\n")
	sb.WriteString(description)
	sb.WriteString("\n\"\"\"\n\n")

	if len(availableTags) > 0 {
		sb.WriteString("ALLOWED TAGS:\n")
		sb.WriteString(strings.Join(availableTags, ", "))
		sb.WriteString("\n\n")
		sb.WriteString("You MUST select tags ONLY from the allowed list above. Do NOT invent new tags.\n\n")
	}

	sb.WriteString(`Return ONLY a JSON object in this exact format:
{
  "targetDomain": "<short domain label, e.g. Data Science, Web Development>",
  "currentLevel": "Beginner" | "Intermediate" | "Advanced",
  "tags": ["<3 to 7 relevant tags>"],
  "hoursPerWeek": <integer, default 10>,
  "deadlineWeeks": <integer, default 12>
}

IMPORTANT: Return ONLY valid JSON, no markdown, no extra text.`)

	return sb.String()
}
