package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/learning-path/backend/internal/models"
)

type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository создает репозиторий каталога курсов.
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

// All возвращает все курсы каталога в порядке id.
func (r *CourseRepository) All(ctx context.Context) ([]models.Course, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, domain, level, duration_hours, tags, prereq_ids
		 FROM courses
		 ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

// Get возвращает курс по id.
func (r *CourseRepository) Get(ctx context.Context, id int) (models.Course, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, title, domain, level, duration_hours, tags, prereq_ids
		 FROM courses
		 WHERE id = $1`,
		id,
	)

	course, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Course{}, ErrNotFound
		}
		return models.Course{}, err
	}

	return course, nil
}

// ReplaceAll заменяет каталог целиком в одной транзакции.
func (r *CourseRepository) ReplaceAll(ctx context.Context, courses []models.Course) error {
	for _, course := range courses {
		if course.ID <= 0 || course.Title == "" || course.DurationHours < 0 {
			return fmt.Errorf("course %d: %w", course.ID, ErrInvalid)
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM courses`); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, course := range courses {
		batch.Queue(
			`INSERT INTO courses (id, title, domain, level, duration_hours, tags, prereq_ids)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			course.ID,
			course.Title,
			course.Domain,
			course.Level,
			course.DurationHours,
			nonNilStrings(course.Tags),
			toInt32s(course.PrereqIDs),
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}

	return tx.Commit(ctx)
}

// Tags возвращает отсортированный список уникальных тегов каталога.
func (r *CourseRepository) Tags(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT btrim(tag)
		 FROM courses, unnest(tags) AS tag
		 WHERE btrim(tag) <> ''
		 ORDER BY 1`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]string, 0)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tags, nil
}

func scanCourse(row pgx.Row) (models.Course, error) {
	var course models.Course
	var tags []string
	var prereqs []int32

	if err := row.Scan(&course.ID, &course.Title, &course.Domain, &course.Level, &course.DurationHours, &tags, &prereqs); err != nil {
		return models.Course{}, err
	}

	course.Tags = nonNilStrings(tags)
	course.PrereqIDs = fromInt32s(prereqs)
	return course, nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func toInt32s(values []int) []int32 {
	out := make([]int32, 0, len(values))
	for _, value := range values {
		out = append(out, int32(value))
	}
	return out
}

func fromInt32s(values []int32) []int {
	out := make([]int, 0, len(values))
	for _, value := range values {
		out = append(out, int(value))
	}
	return out
}
