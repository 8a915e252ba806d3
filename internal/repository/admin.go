package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminRepository struct {
	db *pgxpool.Pool
}

type AIRequestFilter struct {
	UserID      *int
	Success     *bool
	Fallback    *bool
	RequestType *string
}

type AIRequestRecord struct {
	ID              uuid.UUID
	RequestID       *string
	UserID          *int
	RequestType     string
	Provider        string
	Model           string
	Prompt          *string
	RequestPayload  []byte
	ResponsePayload []byte
	RawResponse     *string
	Success         bool
	Fallback        bool
	ErrorKind       *string
	ErrorMessage    *string
	DurationMs      int64
	CreatedAt       time.Time
}

type DailyCount struct {
	Day   time.Time
	Count int
}

type KindCount struct {
	Kind  string
	Count int
}

type UsageStats struct {
	Courses         int
	AIRequests      int
	AISuccess       int
	AIFail          int
	AIFallback      int
	FailuresByKind  []KindCount
	AIRequestsByDay []DailyCount
}

// NewAdminRepository создает репозиторий для админских запросов.
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

// ListAIRequests возвращает логи AI-запросов с фильтрацией.
func (r *AdminRepository) ListAIRequests(ctx context.Context, filter AIRequestFilter, limit, offset int, includePayloads bool) ([]AIRequestRecord, error) {
	where, args := buildAIRequestWhere(filter)

	columns := "id, request_id, user_id, request_type, provider, model, success, fallback, error_kind, error_message, duration_ms, created_at"
	if includePayloads {
		columns = "id, request_id, user_id, request_type, provider, model, prompt, request_payload, response_payload, raw_response, success, fallback, error_kind, error_message, duration_ms, created_at"
	}

	limitParam := len(args) + 1
	offsetParam := len(args) + 2
	query := fmt.Sprintf("SELECT %s FROM ai_requests%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d", columns, where, limitParam, offsetParam)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]AIRequestRecord, 0)
	for rows.Next() {
		var record AIRequestRecord
		if includePayloads {
			if err := rows.Scan(
				&record.ID,
				&record.RequestID,
				&record.UserID,
				&record.RequestType,
				&record.Provider,
				&record.Model,
				&record.Prompt,
				&record.RequestPayload,
				&record.ResponsePayload,
				&record.RawResponse,
				&record.Success,
				&record.Fallback,
				&record.ErrorKind,
				&record.ErrorMessage,
				&record.DurationMs,
				&record.CreatedAt,
			); err != nil {
				return nil, err
			}
		} else {
			if err := rows.Scan(
				&record.ID,
				&record.RequestID,
				&record.UserID,
				&record.RequestType,
				&record.Provider,
				&record.Model,
				&record.Success,
				&record.Fallback,
				&record.ErrorKind,
				&record.ErrorMessage,
				&record.DurationMs,
				&record.CreatedAt,
			); err != nil {
				return nil, err
			}
		}
		requests = append(requests, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// CountAIRequests возвращает количество AI-запросов по фильтру.
func (r *AdminRepository) CountAIRequests(ctx context.Context, filter AIRequestFilter) (int, error) {
	where, args := buildAIRequestWhere(filter)

	query := fmt.Sprintf("SELECT COUNT(*) FROM ai_requests%s", where)
	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UsageStats возвращает агрегированную статистику за N дней.
func (r *AdminRepository) UsageStats(ctx context.Context, days int) (UsageStats, error) {
	stats := UsageStats{}
	if days <= 0 {
		return stats, ErrInvalid
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&stats.Courses); err != nil {
		return stats, err
	}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE success),
		        COUNT(*) FILTER (WHERE NOT success),
		        COUNT(*) FILTER (WHERE fallback)
		 FROM ai_requests`,
	).Scan(&stats.AIRequests, &stats.AISuccess, &stats.AIFail, &stats.AIFallback); err != nil {
		return stats, err
	}

	kindRows, err := r.db.Query(ctx,
		`SELECT error_kind, COUNT(*)
		 FROM ai_requests
		 WHERE error_kind IS NOT NULL
		 GROUP BY error_kind
		 ORDER BY COUNT(*) DESC, error_kind`,
	)
	if err != nil {
		return stats, err
	}
	defer kindRows.Close()

	stats.FailuresByKind = make([]KindCount, 0)
	for kindRows.Next() {
		var row KindCount
		if err := kindRows.Scan(&row.Kind, &row.Count); err != nil {
			return stats, err
		}
		stats.FailuresByKind = append(stats.FailuresByKind, row)
	}

	if err := kindRows.Err(); err != nil {
		return stats, err
	}

	start := time.Now().UTC().AddDate(0, 0, -days+1)
	rows, err := r.db.Query(ctx,
		`SELECT date_trunc('day', created_at)::date AS day,
		        COUNT(*)
		 FROM ai_requests
		 WHERE created_at >= $1
		 GROUP BY day
		 ORDER BY day DESC`,
		start,
	)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	stats.AIRequestsByDay = make([]DailyCount, 0)
	for rows.Next() {
		var row DailyCount
		if err := rows.Scan(&row.Day, &row.Count); err != nil {
			return stats, err
		}
		stats.AIRequestsByDay = append(stats.AIRequestsByDay, row)
	}

	if err := rows.Err(); err != nil {
		return stats, err
	}

	return stats, nil
}

func buildAIRequestWhere(filter AIRequestFilter) (string, []interface{}) {
	clauses := make([]string, 0)
	args := make([]interface{}, 0)

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", len(args)))
	}

	if filter.Success != nil {
		args = append(args, *filter.Success)
		clauses = append(clauses, fmt.Sprintf("success = $%d", len(args)))
	}

	if filter.Fallback != nil {
		args = append(args, *filter.Fallback)
		clauses = append(clauses, fmt.Sprintf("fallback = $%d", len(args)))
	}

	if filter.RequestType != nil {
		args = append(args, *filter.RequestType)
		clauses = append(clauses, fmt.Sprintf("request_type = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
