package provider

import "context"

// Query is the single input a provider receives.
type Query struct {
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Text           string `json:"text"`
}

// Result is what a provider hands back on success.
type Result struct {
	TranslatedText string  `json:"translated_text"`
	Confidence     float64 `json:"confidence"`
}

// Provider is the one capability the pipeline consumes. How a provider
// computes its result is opaque: a machine translation backend, a
// human-review queue lookup, and a canned fixture are all equally valid.
// Implementations own their timeout and cancellation policy; the pipeline
// adds neither retries nor deadlines.
type Provider interface {
	Name() string
	Translate(ctx context.Context, q Query) (Result, error)
}
