package repository

import (
	"context"
	"time"

	"github.com/voulezvous/translation-ledger/internal/models"
	"github.com/voulezvous/translation-ledger/internal/store"
)

// SQLiteRepository implements Repository interface using SQLite
type SQLiteRepository struct {
	db         *store.DB
	recordRepo RecordRepositoryInterface
	eventRepo  EventRepositoryInterface
}

func NewSQLiteRepository(db *store.DB) Repository {
	return &SQLiteRepository{
		db:         db,
		recordRepo: &SQLiteRecordRepository{db: db},
		eventRepo:  &SQLiteEventRepository{db: db},
	}
}

func (r *SQLiteRepository) Record() RecordRepositoryInterface {
	return r.recordRepo
}

func (r *SQLiteRepository) Event() EventRepositoryInterface {
	return r.eventRepo
}

// SQLiteRecordRepository handles pipeline-call logging
type SQLiteRecordRepository struct {
	db *store.DB
}

func (r *SQLiteRecordRepository) LogRecord(ctx context.Context, rec *models.RecordLog) error {
	r.db.Record(
		rec.Timestamp,
		rec.TraceID,
		rec.ReqID,
		rec.WorkerID,
		rec.Source,
		rec.ContractID,
		rec.Workflow,
		rec.Flow,
		rec.TenantID,
		rec.SourceLanguage,
		rec.TargetLanguage,
		rec.Method,
		rec.Translator,
		rec.Confidence,
		rec.InputLen,
		time.Duration(rec.DurationMs)*time.Millisecond,
		rec.Status,
		rec.Error,
	)
	return nil
}

func (r *SQLiteRecordRepository) GetRecordLogs(ctx context.Context, limit int) ([]*models.RecordLog, error) {
	rows, err := r.db.Query(`SELECT ts,trace_id,req_id,worker_id,source,contract_id,workflow,flow,tenant_id,source_language,target_language,method,translator,confidence,input_len,dur_ms,status,error FROM records ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.RecordLog
	for rows.Next() {
		var rec models.RecordLog
		var tsFloat float64

		if err := rows.Scan(
			&tsFloat, &rec.TraceID, &rec.ReqID, &rec.WorkerID, &rec.Source,
			&rec.ContractID, &rec.Workflow, &rec.Flow, &rec.TenantID,
			&rec.SourceLanguage, &rec.TargetLanguage, &rec.Method, &rec.Translator,
			&rec.Confidence, &rec.InputLen, &rec.DurationMs, &rec.Status, &rec.Error,
		); err == nil {
			rec.Timestamp = time.Unix(0, int64(tsFloat*1e9))
			logs = append(logs, &rec)
		}
	}

	return logs, nil
}

// SQLiteEventRepository handles event logging
type SQLiteEventRepository struct {
	db *store.DB
}

func (r *SQLiteEventRepository) LogEvent(ctx context.Context, level, code, msg string, meta map[string]interface{}) error {
	r.db.Event(level, code, msg, meta)
	return nil
}
