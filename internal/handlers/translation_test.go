package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voulezvous/translation-ledger/internal/contract"
	"github.com/voulezvous/translation-ledger/internal/ledger"
	"github.com/voulezvous/translation-ledger/internal/models"
	"github.com/voulezvous/translation-ledger/internal/provider"
	"github.com/voulezvous/translation-ledger/internal/repository"
	"github.com/voulezvous/translation-ledger/internal/schema"
	"github.com/voulezvous/translation-ledger/internal/services"
)

type memRepository struct {
	records memRecordRepo
}

func (r *memRepository) Record() repository.RecordRepositoryInterface { return &r.records }
func (r *memRepository) Event() repository.EventRepositoryInterface   { return &r.records }

type memRecordRepo struct {
	logs []*models.RecordLog
}

func (r *memRecordRepo) LogRecord(ctx context.Context, rec *models.RecordLog) error {
	r.logs = append(r.logs, rec)
	return nil
}

func (r *memRecordRepo) GetRecordLogs(ctx context.Context, limit int) ([]*models.RecordLog, error) {
	if limit > len(r.logs) {
		limit = len(r.logs)
	}
	return r.logs[:limit], nil
}

func (r *memRecordRepo) LogEvent(ctx context.Context, level, code, msg string, meta map[string]interface{}) error {
	return nil
}

func newTestMux(t *testing.T, prov provider.Provider) *http.ServeMux {
	t.Helper()
	validator := schema.NewValidator()
	store := ledger.NewStore(filepath.Join(t.TempDir(), "ledger.ndjson"), validator)
	pipeline := services.NewPipelineService(contract.NewBuilder(nil), validator, store, &memRepository{})

	mux := http.NewServeMux()
	NewTranslationHandler(pipeline, prov).RegisterRoutes(mux)
	return mux
}

func TestHandleTranslate(t *testing.T) {
	mux := newTestMux(t, &provider.Fixture{Text: "Olá mundo", Confidence: 0.95})

	body := `{"source_language":"en","target_language":"pt","source_text":"Hello world","workflow":"test_workflow","flow":"test_flow","tenant_id":"test_tenant","method":"machine"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/translations", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp services.TranslationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp.ReqID == "" {
		t.Error("Handler should mint a request ID when the caller supplies none")
	}
	if resp.Envelope == nil || resp.Envelope.Contract.TranslatedText != "Olá mundo" {
		t.Errorf("Unexpected envelope: %+v", resp.Envelope)
	}
	if !strings.HasPrefix(resp.ContractID, "trans_") {
		t.Errorf("ContractID = %q", resp.ContractID)
	}
}

func TestHandleTranslateInputValidationIs400(t *testing.T) {
	mux := newTestMux(t, &provider.Fixture{Text: "Olá", Confidence: 0.9})

	body := `{"source_language":"en","target_language":"pt","source_text":"Hello","workflow":"wf","flow":"fl","tenant_id":"t","method":"human"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/translations", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "translator") {
		t.Errorf("Error should name the missing field: %s", rec.Body.String())
	}
}

func TestHandleTranslateProviderFailureIs502(t *testing.T) {
	mux := newTestMux(t, &provider.Fixture{Err: errors.New("backend unreachable")})

	body := `{"source_language":"en","target_language":"pt","source_text":"Hello","workflow":"wf","flow":"fl","tenant_id":"t","method":"machine"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/translations", strings.NewReader(body)))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("Status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "backend unreachable") {
		t.Errorf("Provider message should be propagated: %s", rec.Body.String())
	}
}

func TestHandleLogsClampsNonPositiveLimit(t *testing.T) {
	mux := newTestMux(t, &provider.Fixture{Text: "Olá", Confidence: 0.9})

	body := `{"source_language":"en","target_language":"pt","source_text":"Hello","workflow":"wf","flow":"fl","tenant_id":"t","method":"machine"}`
	post := httptest.NewRecorder()
	mux.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/v1/translations", strings.NewReader(body)))
	if post.Code != http.StatusOK {
		t.Fatalf("POST status = %d", post.Code)
	}

	for _, limit := range []string{"-1", "0", "bogus"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs?limit="+limit, nil))

		if rec.Code != http.StatusOK {
			t.Errorf("limit=%s: status = %d, want 200", limit, rec.Code)
			continue
		}
		var logs []models.RecordLog
		if err := json.Unmarshal(rec.Body.Bytes(), &logs); err != nil {
			t.Errorf("limit=%s: unmarshal: %v", limit, err)
			continue
		}
		if len(logs) != 1 {
			t.Errorf("limit=%s: expected the one recorded call under the default limit, got %d", limit, len(logs))
		}
	}
}

func TestHandleLedger(t *testing.T) {
	mux := newTestMux(t, &provider.Fixture{Text: "Olá", Confidence: 0.9})

	// Empty ledger reads as an empty array, not an error
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ledger", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("Empty ledger should serialize as [], got %s", rec.Body.String())
	}

	body := `{"source_language":"en","target_language":"pt","source_text":"Hello","workflow":"wf","flow":"fl","tenant_id":"t","method":"machine"}`
	post := httptest.NewRecorder()
	mux.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/v1/translations", strings.NewReader(body)))
	if post.Code != http.StatusOK {
		t.Fatalf("POST status = %d", post.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ledger", nil))

	var envs []models.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envs); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(envs) != 1 {
		t.Errorf("Expected one envelope, got %d", len(envs))
	}
}
