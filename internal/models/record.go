package models

import "time"

// RecordLog is one row of the sqlite audit index: every pipeline call,
// successful or not, leaves a record here. The NDJSON ledger remains the
// system of record; this index exists for querying and diagnostics.
type RecordLog struct {
	Timestamp      time.Time `json:"ts"`
	TraceID        string    `json:"trace_id"`
	ReqID          string    `json:"req_id"`
	WorkerID       string    `json:"worker_id"`
	Source         string    `json:"source"`
	ContractID     string    `json:"contract_id"`
	Workflow       string    `json:"workflow"`
	Flow           string    `json:"flow"`
	TenantID       string    `json:"tenant_id"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	Method         string    `json:"method"`
	Translator     string    `json:"translator"`
	Confidence     float64   `json:"confidence"`
	InputLen       int       `json:"input_len"`
	DurationMs     float64   `json:"dur_ms"`
	Status         string    `json:"status"`
	Error          string    `json:"error"`
}
