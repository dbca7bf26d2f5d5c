package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/voulezvous/translation-ledger/internal/models"
	"github.com/voulezvous/translation-ledger/internal/schema"
)

// Store is the durable, append-only NDJSON log of envelopes: one envelope
// per line, UTF-8, no enclosing array. Single-process writer assumed;
// concurrent in-process appends serialize on the OS append-mode write of
// one whole line, and no additional locking is layered on top.
type Store struct {
	path      string
	validator *schema.Validator
}

func NewStore(path string, validator *schema.Validator) *Store {
	return &Store{path: path, validator: validator}
}

func (s *Store) Path() string { return s.path }

// Append validates env and, only if it passes, writes it as exactly one
// compact JSON line terminated by a single newline. On any validation
// failure the file is left byte-for-byte unchanged. Existing bytes are
// never truncated, rewritten, or reordered.
func (s *Store) Append(env *models.Envelope) error {
	if err := s.validator.Validate(env); err != nil {
		return fmt.Errorf("envelope rejected: %w", err)
	}

	line, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append to ledger: %w", err)
	}
	return nil
}

// ReadAll returns every envelope in exact append order. A missing ledger
// file is a valid "no ledger yet" state and yields an empty slice. Blank
// lines are skipped; any line that fails to parse is fatal for the whole
// read, because the log's structural integrity is assumed and corruption
// must be escalated, never silently skipped.
func (s *Store) ReadAll() ([]models.Envelope, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	var envelopes []models.Envelope
	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var env models.Envelope
		if err := json.Unmarshal([]byte(line), &env); err != nil {
			return nil, fmt.Errorf("ledger corrupt at line %d: %w", i+1, err)
		}
		envelopes = append(envelopes, env)
	}
	return envelopes, nil
}
