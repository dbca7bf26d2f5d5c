package provider

import "context"

// Fixture is a canned provider for tests, demos, and offline operation.
// When Text is empty it echoes the query text back unchanged.
type Fixture struct {
	Text       string
	Confidence float64
	Err        error
}

func (f *Fixture) Name() string { return "fixture" }

func (f *Fixture) Translate(ctx context.Context, q Query) (Result, error) {
	if f.Err != nil {
		return Result{}, f.Err
	}
	text := f.Text
	if text == "" {
		text = q.Text
	}
	return Result{TranslatedText: text, Confidence: f.Confidence}, nil
}
