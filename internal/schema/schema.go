package schema

import "github.com/voulezvous/translation-ledger/internal/models"

// The envelope schema is compiled in rather than loaded from a side-file,
// so validation behaves the same with or without filesystem access.
//
// Field types are enforced at JSON decode time by the typed Envelope
// struct; the rules below cover presence and enum membership, which the
// type system cannot express.

type stringField struct {
	name string
	get  func(*models.Envelope) string
}

// requiredStrings lists every string field that must be present and
// non-empty in a ledger-bound envelope. Translator and signature are
// deliberately absent: translator is conditional on method (a business
// rule) and an empty signature is a valid value.
var requiredStrings = []stringField{
	{"contract.id", func(e *models.Envelope) string { return e.Contract.ID }},
	{"contract.workflow", func(e *models.Envelope) string { return e.Contract.Workflow }},
	{"contract.flow", func(e *models.Envelope) string { return e.Contract.Flow }},
	{"contract.source_language", func(e *models.Envelope) string { return e.Contract.SourceLanguage }},
	{"contract.target_language", func(e *models.Envelope) string { return e.Contract.TargetLanguage }},
	{"contract.source_text", func(e *models.Envelope) string { return e.Contract.SourceText }},
	{"contract.translated_text", func(e *models.Envelope) string { return e.Contract.TranslatedText }},
	{"contract.provenance.timestamp", func(e *models.Envelope) string { return e.Contract.Provenance.Timestamp }},
	{"contract.provenance.tenant_id", func(e *models.Envelope) string { return e.Contract.Provenance.TenantID }},
}

// TimestampLayout is the fixed provenance timestamp format: UTC ISO-8601
// with millisecond precision and a literal "Z" suffix.
const TimestampLayout = "2006-01-02T15:04:05.000Z"
