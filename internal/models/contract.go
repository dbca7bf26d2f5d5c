package models

// Method classifies who performed a translation.
type Method string

const (
	MethodMachine Method = "machine"
	MethodHuman   Method = "human"
	MethodHybrid  Method = "hybrid"
)

// Valid reports whether m is one of the allowed method values.
func (m Method) Valid() bool {
	switch m {
	case MethodMachine, MethodHuman, MethodHybrid:
		return true
	}
	return false
}

// RequiresTranslator reports whether contracts recorded with this method
// must carry a non-empty translator identifier.
func (m Method) RequiresTranslator() bool {
	return m == MethodHuman || m == MethodHybrid
}

// TranslationRequest is the ephemeral input to one pipeline run. Language
// fields are free-form: natural language codes and technical/code-language
// identifiers are treated the same.
type TranslationRequest struct {
	TraceID        string `json:"trace_id,omitempty"`
	ReqID          string `json:"req_id"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	SourceText     string `json:"source_text"`
	Workflow       string `json:"workflow"`
	Flow           string `json:"flow"`
	TenantID       string `json:"tenant_id"`
	Method         Method `json:"method"`
	Translator     string `json:"translator,omitempty"`
	ReplyTo        string `json:"reply_to,omitempty"`
}

// Provenance captures when/who/signature for a contract. Signature is a
// hex-encoded string and stays "" when signing is disabled; an empty
// signature is a valid value, not an error.
type Provenance struct {
	Timestamp string `json:"timestamp"`
	TenantID  string `json:"tenant_id"`
	Signature string `json:"signature"`
}

// TranslationContract is the immutable record of one translation operation.
// Built once per successful request, never mutated after validation passes,
// never deleted. After persistence it is owned by the ledger entry that
// contains it.
type TranslationContract struct {
	ID             string     `json:"id"`
	Workflow       string     `json:"workflow"`
	Flow           string     `json:"flow"`
	SourceLanguage string     `json:"source_language"`
	TargetLanguage string     `json:"target_language"`
	SourceText     string     `json:"source_text"`
	TranslatedText string     `json:"translated_text"`
	Translator     string     `json:"translator,omitempty"`
	Method         Method     `json:"method"`
	Confidence     float64    `json:"confidence"`
	Provenance     Provenance `json:"provenance"`
}

// Envelope is the unit of ledger storage: one envelope per NDJSON line.
type Envelope struct {
	Contract TranslationContract `json:"contract"`
}
