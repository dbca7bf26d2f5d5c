package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/voulezvous/translation-ledger/internal/models"
)

// Validator is the last gate before persistence. It is stateless and
// idempotent; construct one at process start and inject it wherever
// validation is needed.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks env in two layers. The structural layer collects every
// violation it finds and reports them all in one *ValidationError. The
// business layer runs only after the structural layer passes and
// short-circuits on the first violation: confidence must lie in [0, 1]
// (*RangeError) and human/hybrid contracts must name a translator
// (*RequiredFieldError).
func (v *Validator) Validate(env *models.Envelope) error {
	if err := v.validateStructure(env); err != nil {
		return err
	}
	return v.validateRules(&env.Contract)
}

func (v *Validator) validateStructure(env *models.Envelope) error {
	var violations []string

	for _, f := range requiredStrings {
		if strings.TrimSpace(f.get(env)) == "" {
			violations = append(violations, fmt.Sprintf("%s must be a non-empty string", f.name))
		}
	}

	if !env.Contract.Method.Valid() {
		violations = append(violations, fmt.Sprintf(
			"contract.method must be one of %q, %q, %q; got %q",
			models.MethodMachine, models.MethodHuman, models.MethodHybrid, env.Contract.Method))
	}

	if ts := env.Contract.Provenance.Timestamp; ts != "" {
		if _, err := time.Parse(TimestampLayout, ts); err != nil {
			violations = append(violations, fmt.Sprintf(
				"contract.provenance.timestamp %q does not match layout %s", ts, TimestampLayout))
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func (v *Validator) validateRules(c *models.TranslationContract) error {
	// Written as a negated conjunction so NaN and ±Inf fail too.
	if !(c.Confidence >= 0.0 && c.Confidence <= 1.0) {
		return &RangeError{Field: "contract.confidence", Value: c.Confidence, Min: 0.0, Max: 1.0}
	}
	if c.Method.RequiresTranslator() && strings.TrimSpace(c.Translator) == "" {
		return &RequiredFieldError{
			Field:  "translator",
			Reason: fmt.Sprintf("method is %q", c.Method),
		}
	}
	return nil
}

// ValidateRequest enforces the request-level rules the pipeline applies
// before invoking any provider: a recognized method, and a non-empty
// translator when the method demands one.
func (v *Validator) ValidateRequest(req *models.TranslationRequest) error {
	if !req.Method.Valid() {
		return &ValidationError{Violations: []string{fmt.Sprintf(
			"method must be one of %q, %q, %q; got %q",
			models.MethodMachine, models.MethodHuman, models.MethodHybrid, req.Method)}}
	}
	if req.Method.RequiresTranslator() && strings.TrimSpace(req.Translator) == "" {
		return &RequiredFieldError{
			Field:  "translator",
			Reason: fmt.Sprintf("method is %q", req.Method),
		}
	}
	return nil
}
