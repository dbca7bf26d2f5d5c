package client

import "time"

// TranslationRequest is the wire shape of one translation submission.
type TranslationRequest struct {
	TraceID        string `json:"trace_id,omitempty"`
	ReqID          string `json:"req_id"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	SourceText     string `json:"source_text"`
	Workflow       string `json:"workflow"`
	Flow           string `json:"flow"`
	TenantID       string `json:"tenant_id"`
	Method         string `json:"method"`
	Translator     string `json:"translator,omitempty"`
	ReplyTo        string `json:"reply_to,omitempty"`
}

// Provenance mirrors the ledger-side provenance block.
type Provenance struct {
	Timestamp string `json:"timestamp"`
	TenantID  string `json:"tenant_id"`
	Signature string `json:"signature"`
}

// Contract mirrors the ledger-side translation contract.
type Contract struct {
	ID             string     `json:"id"`
	Workflow       string     `json:"workflow"`
	Flow           string     `json:"flow"`
	SourceLanguage string     `json:"source_language"`
	TargetLanguage string     `json:"target_language"`
	SourceText     string     `json:"source_text"`
	TranslatedText string     `json:"translated_text"`
	Translator     string     `json:"translator,omitempty"`
	Method         string     `json:"method"`
	Confidence     float64    `json:"confidence"`
	Provenance     Provenance `json:"provenance"`
}

// Envelope is the unit of ledger storage.
type Envelope struct {
	Contract Contract `json:"contract"`
}

// TranslationResponse is the reply for one submission.
type TranslationResponse struct {
	ReqID      string    `json:"req_id"`
	ContractID string    `json:"contract_id,omitempty"`
	Envelope   *Envelope `json:"envelope,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// HealthStatus is the answer to a service health probe.
type HealthStatus struct {
	ServiceName  string    `json:"service_name"`
	Status       string    `json:"status"`
	LastActivity time.Time `json:"last_activity"`
	Capabilities []string  `json:"capabilities"`
	Endpoint     string    `json:"endpoint"`
	NATSTopic    string    `json:"nats_topic"`
	LedgerPath   string    `json:"ledger_path"`
	LedgerSize   int       `json:"ledger_size"`
	Version      string    `json:"version"`
}
