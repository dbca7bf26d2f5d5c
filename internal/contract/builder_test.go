package contract

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/voulezvous/translation-ledger/internal/models"
	"github.com/voulezvous/translation-ledger/internal/provider"
	"github.com/voulezvous/translation-ledger/internal/schema"
	"github.com/voulezvous/translation-ledger/internal/signing"
)

func sampleRequest() models.TranslationRequest {
	return models.TranslationRequest{
		ReqID:          "req-1",
		SourceLanguage: "en",
		TargetLanguage: "pt",
		SourceText:     "Hello world",
		Workflow:       "test_workflow",
		Flow:           "test_flow",
		TenantID:       "test_tenant",
		Method:         models.MethodMachine,
	}
}

func TestBuildPopulatesAllFields(t *testing.T) {
	b := NewBuilder(nil)
	c := b.Build(sampleRequest(), provider.Result{TranslatedText: "Olá mundo", Confidence: 0.95})

	if !strings.HasPrefix(c.ID, "trans_") {
		t.Errorf("ID %q should start with trans_", c.ID)
	}
	if c.Workflow != "test_workflow" || c.Flow != "test_flow" {
		t.Errorf("Workflow/flow not carried over: %s/%s", c.Workflow, c.Flow)
	}
	if c.SourceLanguage != "en" || c.TargetLanguage != "pt" {
		t.Errorf("Languages not carried over: %s/%s", c.SourceLanguage, c.TargetLanguage)
	}
	if c.SourceText != "Hello world" || c.TranslatedText != "Olá mundo" {
		t.Errorf("Text fields not carried over: %q -> %q", c.SourceText, c.TranslatedText)
	}
	if c.Method != models.MethodMachine {
		t.Errorf("Method = %s, want machine", c.Method)
	}
	if c.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", c.Confidence)
	}
	if c.Provenance.TenantID != "test_tenant" {
		t.Errorf("Provenance tenant = %q, want test_tenant", c.Provenance.TenantID)
	}
	if c.Provenance.Signature != "" {
		t.Errorf("Signature should stay empty without a signer, got %q", c.Provenance.Signature)
	}
}

func TestBuildTimestampFormat(t *testing.T) {
	b := NewBuilder(nil)
	b.now = func() time.Time {
		return time.Date(2025, 11, 13, 18, 44, 0, 123000000, time.FixedZone("BRT", -3*3600))
	}

	c := b.Build(sampleRequest(), provider.Result{TranslatedText: "Olá mundo", Confidence: 0.95})

	// Millisecond precision, literal Z suffix, converted to UTC.
	if c.Provenance.Timestamp != "2025-11-13T21:44:00.123Z" {
		t.Errorf("Timestamp = %q, want 2025-11-13T21:44:00.123Z", c.Provenance.Timestamp)
	}
	if _, err := time.Parse(schema.TimestampLayout, c.Provenance.Timestamp); err != nil {
		t.Errorf("Timestamp should parse with the fixed layout: %v", err)
	}
}

func TestBuildCarriesTranslator(t *testing.T) {
	b := NewBuilder(nil)
	req := sampleRequest()
	req.Method = models.MethodHuman
	req.Translator = "maria@voulezvous.tv"

	c := b.Build(req, provider.Result{TranslatedText: "Olá mundo", Confidence: 1.0})
	if c.Translator != "maria@voulezvous.tv" {
		t.Errorf("Translator = %q, want supplied value", c.Translator)
	}
}

func TestBuildIsStructurallyPermissive(t *testing.T) {
	// Assembly never fails; the validator rejects later. A contract with
	// out-of-range confidence and a missing translator still comes back
	// fully populated for diagnostics.
	b := NewBuilder(nil)
	req := sampleRequest()
	req.Method = models.MethodHuman
	req.Translator = ""

	c := b.Build(req, provider.Result{TranslatedText: "Olá mundo", Confidence: 3.7})
	if c.Confidence != 3.7 {
		t.Errorf("Builder should not clamp confidence, got %v", c.Confidence)
	}
	if c.ID == "" || c.Provenance.Timestamp == "" {
		t.Error("Even an invalid contract should be structurally complete")
	}
}

func TestBuildSignsWhenSignerConfigured(t *testing.T) {
	seed := strings.Repeat("ab", 32)
	signer, err := signing.NewEd25519Signer(seed)
	if err != nil {
		t.Fatalf("NewEd25519Signer: %v", err)
	}

	b := NewBuilder(signer)
	c := b.Build(sampleRequest(), provider.Result{TranslatedText: "Olá mundo", Confidence: 0.95})

	if c.Provenance.Signature == "" {
		t.Fatal("Signature should be filled when a signer is configured")
	}
	sig, err := hex.DecodeString(c.Provenance.Signature)
	if err != nil {
		t.Fatalf("Signature should be hex: %v", err)
	}
	if len(sig) != ed25519.SignatureSize {
		t.Errorf("Signature length = %d, want %d", len(sig), ed25519.SignatureSize)
	}

	ok, err := signing.Verify(signer.PublicKeyHex(), c)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Error("Signature should verify against the signer's public key")
	}
}
