package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	RequestTypeExtraction = "extraction"
	RequestTypePlan       = "plan"
)

type AIRepository struct {
	db *pgxpool.Pool
}

// AIRequestLog описывает одну запись журнала обращений к модели.
type AIRequestLog struct {
	ID              uuid.UUID
	RequestID       string
	UserID          *int
	RequestType     string
	Provider        string
	Model           string
	Prompt          string
	RequestPayload  []byte
	ResponsePayload []byte
	RawResponse     string
	Success         bool
	Fallback        bool
	ErrorKind       *string
	ErrorMessage    *string
	Duration        time.Duration
}

// NewAIRepository создает репозиторий для AI-запросов.
func NewAIRepository(db *pgxpool.Pool) *AIRepository {
	return &AIRepository{db: db}
}

// LogRequest сохраняет лог AI-запроса.
func (r *AIRepository) LogRequest(ctx context.Context, log AIRequestLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO ai_requests
		 (id, request_id, user_id, request_type, provider, model, prompt, request_payload, response_payload, raw_response, success, fallback, error_kind, error_message, duration_ms)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, NULLIF($8, '')::jsonb, NULLIF($9, '')::jsonb, $10, $11, $12, $13, $14, $15)`,
		log.ID,
		log.RequestID,
		log.UserID,
		log.RequestType,
		log.Provider,
		log.Model,
		log.Prompt,
		string(log.RequestPayload),
		string(log.ResponsePayload),
		log.RawResponse,
		log.Success,
		log.Fallback,
		log.ErrorKind,
		log.ErrorMessage,
		log.Duration.Milliseconds(),
	)
	return err
}
