// Package store persists composed pages and their diagnostics in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/agentic-research/runekit/internal/site"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS pages (
	url TEXT PRIMARY KEY,
	path TEXT NOT NULL,
	dir TEXT NOT NULL,
	template TEXT NOT NULL,
	slots JSON,
	navigation JSON,
	error TEXT,
	built INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS diagnostics (
	url TEXT NOT NULL,
	seq INTEGER NOT NULL,
	id TEXT NOT NULL,
	level TEXT NOT NULL,
	message TEXT NOT NULL,
	tag TEXT,
	attribute TEXT,
	PRIMARY KEY (url, seq)
) WITHOUT ROWID;
`

// slotsRecord is the JSON stored in pages.slots.
type slotsRecord struct {
	Order []string                   `json:"order"`
	Slots map[string]json.RawMessage `json:"slots"`
}

// Writer writes pages in batched transactions. It is safe for concurrent
// use.
type Writer struct {
	db        *sql.DB
	tx        *sql.Tx
	stmtPage  *sql.Stmt
	stmtDiag  *sql.Stmt
	stmtClear *sql.Stmt
	batchSize int
	count     int
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewWriter opens (creating if needed) the database at dbPath.
func NewWriter(dbPath string, logger *zap.Logger) (*Writer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &Writer{db: db, batchSize: 500, logger: logger}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return err
	}
	w.stmtPage, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO pages (url, path, dir, template, slots, navigation, error, built)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	w.stmtClear, err = w.tx.Prepare(`DELETE FROM diagnostics WHERE url = ?`)
	if err != nil {
		return err
	}
	w.stmtDiag, err = w.tx.Prepare(`
		INSERT INTO diagnostics (url, seq, id, level, message, tag, attribute)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	return err
}

func (w *Writer) commitTx() error {
	for _, s := range []*sql.Stmt{w.stmtPage, w.stmtClear, w.stmtDiag} {
		if s != nil {
			_ = s.Close()
		}
	}
	return w.tx.Commit()
}

// AddPage writes p and replaces its diagnostics.
func (w *Writer) AddPage(p *site.Page) error {
	slots, err := encodeSlots(p)
	if err != nil {
		return fmt.Errorf("encode slots of %s: %w", p.URL, err)
	}
	var navigation []byte
	if p.Navigation != nil {
		if navigation, err = json.Marshal(p.Navigation); err != nil {
			return fmt.Errorf("encode navigation of %s: %w", p.URL, err)
		}
	}
	var errText *string
	if p.Err != nil {
		s := p.Err.Error()
		errText = &s
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.stmtPage.Exec(p.URL, p.Path, p.Dir, p.Template, slots, navigation, errText, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("insert page %s: %w", p.URL, err)
	}
	if _, err := w.stmtClear.Exec(p.URL); err != nil {
		return fmt.Errorf("clear diagnostics of %s: %w", p.URL, err)
	}
	for i, d := range p.Diagnostics {
		if _, err := w.stmtDiag.Exec(p.URL, i, d.ID, string(d.Level), d.Message, d.Tag, d.Attribute); err != nil {
			return fmt.Errorf("insert diagnostic of %s: %w", p.URL, err)
		}
	}

	w.count++
	if w.count >= w.batchSize {
		if err := w.commitTx(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		if err := w.beginTx(); err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		w.logger.Debug("pages committed", zap.Int("batch", w.count))
		w.count = 0
	}
	return nil
}

// Close commits pending pages and closes the database.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.commitTx(); err != nil {
		_ = w.db.Close()
		return err
	}
	return w.db.Close()
}

func encodeSlots(p *site.Page) ([]byte, error) {
	if p.Slots == nil {
		return nil, nil
	}
	rec := slotsRecord{Order: p.Order, Slots: make(map[string]json.RawMessage, len(p.Slots))}
	for name, content := range p.Slots {
		raw, err := json.Marshal(content)
		if err != nil {
			return nil, err
		}
		rec.Slots[name] = raw
	}
	return json.Marshal(rec)
}
