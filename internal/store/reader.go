package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/nav"
	"github.com/agentic-research/runekit/internal/schema"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("page not found")

// Record is a stored page.
type Record struct {
	URL         string                      `json:"url"`
	Path        string                      `json:"path"`
	Dir         string                      `json:"dir"`
	Template    string                      `json:"template"`
	Order       []string                    `json:"order"`
	Slots       map[string][]api.Renderable `json:"slots"`
	Navigation  *nav.Tree                   `json:"navigation,omitempty"`
	Error       string                      `json:"error,omitempty"`
	Diagnostics []schema.Diagnostic         `json:"diagnostics,omitempty"`
}

// Reader queries a database written by Writer.
type Reader struct {
	db *sql.DB
}

// Open opens an existing database.
func Open(dbPath string) (*Reader, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

// URLs lists stored page URLs in order.
func (r *Reader) URLs() ([]string, error) {
	rows, err := r.db.Query(`SELECT url FROM pages ORDER BY url`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// Page loads a stored page with its diagnostics.
func (r *Reader) Page(url string) (*Record, error) {
	var (
		rec        = &Record{URL: url}
		slots      []byte
		navigation []byte
		errText    sql.NullString
	)
	err := r.db.QueryRow(`SELECT path, dir, template, slots, navigation, error FROM pages WHERE url = ?`, url).
		Scan(&rec.Path, &rec.Dir, &rec.Template, &slots, &navigation, &errText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if err != nil {
		return nil, err
	}
	rec.Error = errText.String

	if len(slots) > 0 {
		if err := decodeSlots(slots, rec); err != nil {
			return nil, fmt.Errorf("decode slots of %s: %w", url, err)
		}
	}
	if len(navigation) > 0 {
		rec.Navigation = &nav.Tree{}
		if err := json.Unmarshal(navigation, rec.Navigation); err != nil {
			return nil, fmt.Errorf("decode navigation of %s: %w", url, err)
		}
	}

	rec.Diagnostics, err = r.Diagnostics(url)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Diagnostics returns the diagnostics stored for url in report order.
func (r *Reader) Diagnostics(url string) ([]schema.Diagnostic, error) {
	rows, err := r.db.Query(`
		SELECT id, level, message, tag, attribute FROM diagnostics
		WHERE url = ? ORDER BY seq`, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []schema.Diagnostic
	for rows.Next() {
		var (
			d        schema.Diagnostic
			level    string
			tag, att sql.NullString
		)
		if err := rows.Scan(&d.ID, &level, &d.Message, &tag, &att); err != nil {
			return nil, err
		}
		d.Level, d.Tag, d.Attribute = schema.Severity(level), tag.String, att.String
		out = append(out, d)
	}
	return out, rows.Err()
}

func decodeSlots(data []byte, rec *Record) error {
	var raw slotsRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rec.Order = raw.Order
	rec.Slots = make(map[string][]api.Renderable, len(raw.Slots))
	for name, msg := range raw.Slots {
		var items []json.RawMessage
		if err := json.Unmarshal(msg, &items); err != nil {
			return err
		}
		content := make([]api.Renderable, 0, len(items))
		for _, item := range items {
			r, err := api.DecodeRenderable(item)
			if err != nil {
				return err
			}
			content = append(content, r)
		}
		rec.Slots[name] = content
	}
	return nil
}
