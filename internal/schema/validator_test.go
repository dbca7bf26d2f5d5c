package schema

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/voulezvous/translation-ledger/internal/models"
)

func validEnvelope() *models.Envelope {
	return &models.Envelope{Contract: models.TranslationContract{
		ID:             "trans_f2a7c8",
		Workflow:       "docgen",
		Flow:           "translate_fn",
		SourceLanguage: "python",
		TargetLanguage: "pt",
		SourceText:     "def greet(): print('Hello')",
		TranslatedText: "def cumprimentar(): print('Olá')",
		Method:         models.MethodMachine,
		Confidence:     0.92,
		Provenance: models.Provenance{
			Timestamp: "2025-11-13T18:44:00.123Z",
			TenantID:  "voulezvous",
			Signature: "",
		},
	}}
}

func TestValidateAcceptsWellFormedEnvelope(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(validEnvelope()); err != nil {
		t.Fatalf("Valid envelope rejected: %v", err)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	v := NewValidator()
	env := validEnvelope()
	env.Contract.Confidence = 1.5

	first := v.Validate(env)
	second := v.Validate(env)
	if first == nil || second == nil {
		t.Fatal("Out-of-range confidence should fail validation")
	}
	if first.Error() != second.Error() {
		t.Errorf("Validating twice should yield the same outcome: %q vs %q", first, second)
	}
}

func TestValidateCollectsEveryStructuralViolation(t *testing.T) {
	v := NewValidator()
	env := validEnvelope()
	env.Contract.ID = ""
	env.Contract.SourceText = "  "
	env.Contract.Method = "telepathy"
	env.Contract.Provenance.TenantID = ""

	err := v.Validate(env)
	if err == nil {
		t.Fatal("Expected structural validation to fail")
	}

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	if len(valErr.Violations) != 4 {
		t.Errorf("Expected all 4 violations reported, got %d: %v", len(valErr.Violations), valErr.Violations)
	}
	for _, want := range []string{"contract.id", "contract.source_text", "contract.method", "contract.provenance.tenant_id"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Error message should name %s: %s", want, err)
		}
	}
}

func TestValidateRejectsMalformedTimestamp(t *testing.T) {
	v := NewValidator()
	env := validEnvelope()
	env.Contract.Provenance.Timestamp = "2025-11-13 18:44:00"

	err := v.Validate(env)
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected *ValidationError for bad timestamp, got %v", err)
	}
}

func TestValidateConfidenceRange(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		confidence float64
		wantErr    bool
	}{
		{"lower bound", 0.0, false},
		{"upper bound", 1.0, false},
		{"interior", 0.5, false},
		{"negative", -0.1, true},
		{"above one", 1.1, true},
		{"NaN", math.NaN(), true},
		{"positive infinity", math.Inf(1), true},
		{"negative infinity", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnvelope()
			env.Contract.Confidence = tt.confidence

			err := v.Validate(env)
			if tt.wantErr {
				var rangeErr *RangeError
				if !errors.As(err, &rangeErr) {
					t.Fatalf("Expected *RangeError, got %v", err)
				}
				if !strings.Contains(err.Error(), "confidence") {
					t.Errorf("Error should cite the field: %s", err)
				}
				if rangeErr.Value != tt.confidence {
					t.Errorf("Error should cite the offending value %v, got %v", tt.confidence, rangeErr.Value)
				}
			} else if err != nil {
				t.Errorf("Confidence %v should be accepted: %v", tt.confidence, err)
			}
		})
	}
}

func TestValidateTranslatorRule(t *testing.T) {
	v := NewValidator()

	for _, method := range []models.Method{models.MethodHuman, models.MethodHybrid} {
		env := validEnvelope()
		env.Contract.Method = method
		env.Contract.Translator = ""

		err := v.Validate(env)
		var reqErr *RequiredFieldError
		if !errors.As(err, &reqErr) {
			t.Fatalf("Method %s without translator: expected *RequiredFieldError, got %v", method, err)
		}
		if reqErr.Field != "translator" {
			t.Errorf("Error should name translator, got %q", reqErr.Field)
		}

		env.Contract.Translator = "maria@voulezvous.tv"
		if err := v.Validate(env); err != nil {
			t.Errorf("Method %s with translator should pass: %v", method, err)
		}
	}

	// machine contracts need no translator
	env := validEnvelope()
	env.Contract.Translator = ""
	if err := v.Validate(env); err != nil {
		t.Errorf("Machine contract without translator should pass: %v", err)
	}
}

func TestBusinessRulesRunAfterStructure(t *testing.T) {
	v := NewValidator()
	env := validEnvelope()
	env.Contract.ID = ""
	env.Contract.Confidence = 2.0

	// Structural failure must win; the range violation is not reached.
	err := v.Validate(env)
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected structural *ValidationError first, got %T: %v", err, err)
	}
}

func TestValidateRequest(t *testing.T) {
	v := NewValidator()

	req := &models.TranslationRequest{Method: models.MethodHuman}
	err := v.ValidateRequest(req)
	var reqErr *RequiredFieldError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Human request without translator: expected *RequiredFieldError, got %v", err)
	}

	req.Translator = "maria"
	if err := v.ValidateRequest(req); err != nil {
		t.Errorf("Human request with translator should pass: %v", err)
	}

	req.Method = "guesswork"
	var valErr *ValidationError
	if !errors.As(v.ValidateRequest(req), &valErr) {
		t.Error("Unknown method should fail request validation")
	}
}
