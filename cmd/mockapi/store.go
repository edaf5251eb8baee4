package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/moimran/netdata/pkg/crud"
)

// Store keeps every entity as a JSON document in one sqlite table. It is a
// development stand-in for the real IPAM API, not a production store.
type Store struct {
	db *sql.DB
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	entity TEXT NOT NULL,
	id     INTEGER NOT NULL,
	data   TEXT NOT NULL,
	PRIMARY KEY (entity, id)
);`

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening store")
	}
	// sqlite allows one writer; the stub serves a single developer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Insert(ctx context.Context, entity string, rec crud.Record) (crud.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback() }()

	var next int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 0) + 1 FROM records WHERE entity = ?`, entity,
	).Scan(&next); err != nil {
		return nil, errors.Wrap(err, "next id")
	}

	saved := rec.Clone()
	saved["id"] = next
	saved["created_at"] = time.Now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(saved)
	if err != nil {
		return nil, errors.Wrap(err, "encode record")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO records (entity, id, data) VALUES (?, ?, ?)`, entity, next, string(data),
	); err != nil {
		return nil, errors.Wrap(err, "insert")
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	return saved, nil
}

func (s *Store) Get(ctx context.Context, entity string, id int64) (crud.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE entity = ? AND id = ?`, entity, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get")
	}
	return decodeRecord(data)
}

func (s *Store) Update(ctx context.Context, entity string, id int64, rec crud.Record) (crud.Record, error) {
	existing, err := s.Get(ctx, entity, id)
	if err != nil {
		return nil, err
	}
	saved := existing
	for k, v := range rec {
		saved[k] = v
	}
	saved["id"] = id
	saved["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(saved)
	if err != nil {
		return nil, errors.Wrap(err, "encode record")
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE records SET data = ? WHERE entity = ? AND id = ?`, string(data), entity, id,
	); err != nil {
		return nil, errors.Wrap(err, "update")
	}
	return saved, nil
}

func (s *Store) Delete(ctx context.Context, entity string, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE entity = ? AND id = ?`, entity, id)
	if err != nil {
		return errors.Wrap(err, "delete")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errNotFound
	}
	return nil
}

// ListQuery is the decoded listing request.
type ListQuery struct {
	Search      string
	FilterField string
	FilterValue string
	Skip        int
	Limit       int
}

// List loads the entity's records in id order and applies search, filter
// and paging in memory. Fine at dev-stub scale.
func (s *Store) List(ctx context.Context, entity string, q ListQuery) ([]crud.Record, int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM records WHERE entity = ? ORDER BY id`, entity)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list")
	}
	defer rows.Close()

	var matched []crud.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, 0, errors.Wrap(err, "scan")
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, 0, err
		}
		if matches(rec, q) {
			matched = append(matched, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "rows")
	}

	total := int64(len(matched))
	start := q.Skip
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	return matched[start:end], total, nil
}

func matches(rec crud.Record, q ListQuery) bool {
	if q.FilterField != "" && crud.AsString(rec[q.FilterField]) != q.FilterValue {
		return false
	}
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	for _, v := range rec {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func decodeRecord(data string) (crud.Record, error) {
	var rec crud.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, errors.Wrap(err, "decode record")
	}
	return rec, nil
}

var errNotFound = errors.New("record not found")
