package docstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore keeps every collection in the documents table as JSONB.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

const (
	getDocumentQuery = `
        SELECT id, data, created_at
        FROM documents
        WHERE collection = $1 AND id = $2
    `
	getManyDocumentsQuery = `
        SELECT id, data, created_at
        FROM documents
        WHERE collection = $1 AND id = ANY($2::text[])
        ORDER BY array_position($2::text[], id)
    `
	insertDocumentQuery = `
        INSERT INTO documents (collection, id, data, created_at, updated_at)
        VALUES ($1, $2, $3::jsonb, $4, $4)
    `
	updateDocumentQuery = `
        UPDATE documents
        SET data = data || $3::jsonb, updated_at = $4
        WHERE collection = $1 AND id = $2
        RETURNING data, created_at
    `
	deleteDocumentQuery = `DELETE FROM documents WHERE collection = $1 AND id = $2`
)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var (
		doc Document
		raw []byte
	)
	err := s.db.QueryRowContext(ctx, getDocumentQuery, collection, id).Scan(&doc.ID, &raw, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if doc.Data, err = decode(raw); err != nil {
		return Document{}, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (s *PostgresStore) GetMany(ctx context.Context, collection string, ids []string) ([]Document, error) {
	if len(ids) == 0 {
		return []Document{}, nil
	}
	rows, err := s.db.QueryContext(ctx, getManyDocumentsQuery, collection, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get many %s: %w", collection, err)
	}
	return scanDocuments(rows, collection)
}

// Find builds an equality query on JSON fields. Field names are bound as
// parameters, never spliced into the SQL text.
func (s *PostgresStore) Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	query, args := buildFindQuery(collection, filters)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	return scanDocuments(rows, collection)
}

func buildFindQuery(collection string, filters []Filter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT id, data, created_at FROM documents WHERE collection = $1")
	args := []any{collection}
	for _, f := range filters {
		fmt.Fprintf(&b, " AND data->>$%d = $%d", len(args)+1, len(args)+2)
		args = append(args, f.Field, textOf(f.Value))
	}
	b.WriteString(" ORDER BY created_at, id")
	return b.String(), args
}

func (s *PostgresStore) Insert(ctx context.Context, collection string, data map[string]any) (Document, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Document{}, fmt.Errorf("encode %s: %w", collection, err)
	}
	doc := Document{ID: uuid.NewString(), CreatedAt: s.now()}
	if _, err := s.db.ExecContext(ctx, insertDocumentQuery, collection, doc.ID, string(raw), doc.CreatedAt); err != nil {
		return Document{}, fmt.Errorf("insert %s: %w", collection, err)
	}
	// round-trip so callers see the same shapes a later Get returns
	if doc.Data, err = decode(raw); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	patch, err := json.Marshal(fields)
	if err != nil {
		return Document{}, fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	doc := Document{ID: id}
	var raw []byte
	err = s.db.QueryRowContext(ctx, updateDocumentQuery, collection, id, string(patch), s.now()).Scan(&raw, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if doc.Data, err = decode(raw); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx, deleteDocumentQuery, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func scanDocuments(rows *sql.Rows, collection string) ([]Document, error) {
	defer rows.Close()
	out := make([]Document, 0)
	for rows.Next() {
		var (
			doc Document
			raw []byte
		)
		if err := rows.Scan(&doc.ID, &raw, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		data, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, doc.ID, err)
		}
		doc.Data = data
		out = append(out, doc)
	}
	return out, rows.Err()
}

// decode keeps numbers as json.Number so money values are not squeezed
// through float64.
func decode(raw []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(raw) == 0 {
		return out, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
