package contract

import (
	"log/slog"
	"time"

	"github.com/voulezvous/translation-ledger/internal/identity"
	"github.com/voulezvous/translation-ledger/internal/models"
	"github.com/voulezvous/translation-ledger/internal/provider"
	"github.com/voulezvous/translation-ledger/internal/schema"
	"github.com/voulezvous/translation-ledger/internal/signing"
)

// Builder assembles a structurally complete contract from a request plus
// provider output. It is deliberately permissive: assembly never fails,
// even for a contract that the validator will later reject, so callers can
// inspect a malformed contract for diagnostics before it is refused.
type Builder struct {
	signer signing.Signer
	now    func() time.Time
}

// NewBuilder returns a builder. signer may be nil, in which case the
// provenance signature stays "".
func NewBuilder(signer signing.Signer) *Builder {
	return &Builder{signer: signer, now: time.Now}
}

// Build populates a fresh contract. Its only side effect is reading the
// wall clock, used for both the provenance timestamp and the ID nonce.
func (b *Builder) Build(req models.TranslationRequest, res provider.Result) models.TranslationContract {
	now := b.now().UTC()

	c := models.TranslationContract{
		ID:             identity.NewContractID(req.SourceText, req.TargetLanguage, req.Workflow, req.Flow, now),
		Workflow:       req.Workflow,
		Flow:           req.Flow,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		SourceText:     req.SourceText,
		TranslatedText: res.TranslatedText,
		Translator:     req.Translator,
		Method:         req.Method,
		Confidence:     res.Confidence,
		Provenance: models.Provenance{
			Timestamp: now.Format(schema.TimestampLayout),
			TenantID:  req.TenantID,
			Signature: "",
		},
	}

	if b.signer != nil {
		sig, err := b.signer.Sign(c)
		if err != nil {
			slog.Warn("Contract signing failed, leaving signature empty",
				"contract_id", c.ID, "error", err)
		} else {
			c.Provenance.Signature = sig
		}
	}

	return c
}
