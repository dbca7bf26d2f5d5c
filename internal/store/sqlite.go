package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Create events table
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS events(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts REAL,
		level TEXT,
		code TEXT,
		msg TEXT,
		meta TEXT
	)`); err != nil {
		return nil, err
	}

	// Create records table: one row per pipeline call, successful or not
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS records(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts REAL,
		trace_id TEXT,
		req_id TEXT,
		worker_id TEXT,
		source TEXT,
		contract_id TEXT,
		workflow TEXT,
		flow TEXT,
		tenant_id TEXT,
		source_language TEXT,
		target_language TEXT,
		method TEXT,
		translator TEXT,
		confidence REAL,
		input_len INTEGER,
		dur_ms REAL,
		status TEXT,
		error TEXT
	)`); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

func (db *DB) Event(level, code, msg string, meta map[string]interface{}) {
	m := ""
	if meta != nil {
		b, _ := json.Marshal(meta)
		m = string(b)
	}
	_, _ = db.Exec(`INSERT INTO events(ts,level,code,msg,meta) VALUES(?,?,?,?,?)`,
		float64(time.Now().UnixNano())/1e9, level, code, msg, m)
}

func (db *DB) Record(start time.Time, traceID, reqID, workerID, source, contractID, workflow, flow, tenantID, sourceLang, targetLang, method, translator string,
	confidence float64, inputLen int, dur time.Duration, status, errStr string) {
	_, _ = db.Exec(`INSERT INTO records(
		ts, trace_id, req_id, worker_id, source, contract_id, workflow, flow, tenant_id, source_language, target_language, method, translator, confidence, input_len, dur_ms, status, error)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		float64(start.UnixNano())/1e9, traceID, reqID, workerID, source, contractID, workflow, flow, tenantID, sourceLang, targetLang, method, translator, confidence, inputLen, float64(dur.Milliseconds()), status, errStr)
}
