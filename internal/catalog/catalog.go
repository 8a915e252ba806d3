package catalog

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"example.com/learning-path/backend/internal/models"
)

// Source отдает полный каталог курсов и список его тегов.
type Source interface {
	All(ctx context.Context) ([]models.Course, error)
	Tags(ctx context.Context) ([]string, error)
}

// FileCatalog читает каталог из JSON-файла на каждый вызов.
type FileCatalog struct {
	path string
}

// NewFileCatalog создает каталог поверх JSON-файла.
func NewFileCatalog(path string) *FileCatalog {
	return &FileCatalog{path: path}
}

func (c *FileCatalog) All(ctx context.Context) ([]models.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", c.path, err)
	}

	return Decode(data)
}

func (c *FileCatalog) Tags(ctx context.Context) ([]string, error) {
	courses, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	return DistinctTags(courses), nil
}

// Decode разбирает JSON-массив курсов и проверяет уникальность id.
func Decode(data []byte) ([]models.Course, error) {
	var courses []models.Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[int]struct{}, len(courses))
	for i, course := range courses {
		if _, ok := seen[course.ID]; ok {
			return nil, fmt.Errorf("decode catalog: duplicate course id %d", course.ID)
		}
		seen[course.ID] = struct{}{}

		if courses[i].Tags == nil {
			courses[i].Tags = []string{}
		}
		if courses[i].PrereqIDs == nil {
			courses[i].PrereqIDs = []int{}
		}
	}

	return courses, nil
}

// DistinctTags возвращает отсортированный список уникальных тегов каталога.
func DistinctTags(courses []models.Course) []string {
	set := make(map[string]struct{})
	for _, course := range courses {
		for _, tag := range course.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			set[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Filter отбирает курсы по домену и уровню; пустой фильтр пропускает все.
func Filter(courses []models.Course, domain, level string) []models.Course {
	out := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		if domain != "" && !strings.EqualFold(course.Domain, domain) {
			continue
		}
		if level != "" && !strings.EqualFold(course.Level, level) {
			continue
		}
		out = append(out, course)
	}
	return out
}
