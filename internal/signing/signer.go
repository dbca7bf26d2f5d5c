package signing

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/voulezvous/translation-ledger/internal/models"
)

// Signer fills the provenance signature field of a contract. Signing is a
// pluggable step; when no signer is configured the signature stays "".
type Signer interface {
	Sign(c models.TranslationContract) (string, error)
}

// Ed25519Signer signs the canonical JSON of a contract (signature field
// blanked) and emits the signature as hex.
type Ed25519Signer struct {
	key ed25519.PrivateKey
}

// NewEd25519Signer builds a signer from a hex-encoded 32-byte seed.
func NewEd25519Signer(seedHex string) (*Ed25519Signer, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signing seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signing seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Ed25519Signer{key: ed25519.NewKeyFromSeed(seed)}, nil
}

func (s *Ed25519Signer) Sign(c models.TranslationContract) (string, error) {
	payload, err := canonicalPayload(c)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(ed25519.Sign(s.key, payload)), nil
}

// PublicKeyHex returns the verification key as hex.
func (s *Ed25519Signer) PublicKeyHex() string {
	return hex.EncodeToString(s.key.Public().(ed25519.PublicKey))
}

// Verify checks a contract's provenance signature against a hex public key.
func Verify(publicKeyHex string, c models.TranslationContract) (bool, error) {
	pub, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return false, fmt.Errorf("failed to decode public key: %w", err)
	}
	if len(pub) != ed25519.PublicKeySize {
		return false, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}
	sig, err := hex.DecodeString(c.Provenance.Signature)
	if err != nil {
		return false, fmt.Errorf("failed to decode signature: %w", err)
	}
	payload, err := canonicalPayload(c)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(ed25519.PublicKey(pub), payload, sig), nil
}

func canonicalPayload(c models.TranslationContract) ([]byte, error) {
	c.Provenance.Signature = ""
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contract for signing: %w", err)
	}
	return b, nil
}
