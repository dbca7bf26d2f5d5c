package repository

import (
	"context"

	"github.com/voulezvous/translation-ledger/internal/models"
)

// Repository aggregates all repository interfaces
type Repository interface {
	Record() RecordRepositoryInterface
	Event() EventRepositoryInterface
}

// RecordRepositoryInterface defines pipeline-call logging operations
type RecordRepositoryInterface interface {
	LogRecord(ctx context.Context, rec *models.RecordLog) error
	GetRecordLogs(ctx context.Context, limit int) ([]*models.RecordLog, error)
}

// EventRepositoryInterface defines event logging operations
type EventRepositoryInterface interface {
	LogEvent(ctx context.Context, level, code, msg string, meta map[string]interface{}) error
}
