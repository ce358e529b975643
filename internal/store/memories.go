package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/catalyst/internal/memory"
)

var _ memory.Backend = (*DB)(nil)

// timeLayout keeps created_at lexically sortable.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store inserts a memory and returns its generated id. Parameters without
// session isolation are rejected.
func (db *DB) Store(ctx context.Context, p memory.StoreParams) (string, error) {
	if err := p.EnsureIsolation(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO memories (id, session_id, content, importance, source, domain, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, p.SessionID, p.Content, p.Importance, p.Source, p.Domain,
		db.now().UTC().Format(timeLayout),
	); err != nil {
		return "", fmt.Errorf("inserting memory: %w", err)
	}
	for _, tag := range dedupe(p.Tags) {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO memory_tags (memory_id, tag) VALUES (?, ?)", id, tag,
		); err != nil {
			return "", fmt.Errorf("inserting tag %q: %w", tag, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Search returns memories of the session carrying every tag in p.Tags,
// newest first. The free-text query is not interpreted by this backend.
func (db *DB) Search(ctx context.Context, p memory.SearchParams) ([]memory.Memory, error) {
	if err := p.EnsureIsolation(); err != nil {
		return nil, err
	}
	limit := p.Limit
	if limit <= 0 {
		limit = memory.DefaultLimit
	}

	query := `SELECT m.id, m.session_id, m.content, m.importance, m.created_at
		FROM memories m
		WHERE m.session_id = ?`
	args := []any{p.SessionID}
	if tags := dedupe(p.Tags); len(tags) > 0 {
		query += ` AND m.id IN (
			SELECT memory_id FROM memory_tags
			WHERE tag IN (?` + strings.Repeat(", ?", len(tags)-1) + `)
			GROUP BY memory_id
			HAVING COUNT(*) = ?
		)`
		for _, t := range tags {
			args = append(args, t)
		}
		args = append(args, len(tags))
	}
	query += " ORDER BY m.created_at DESC, m.rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching memories: %w", err)
	}
	defer rows.Close()

	var out []memory.Memory
	for rows.Next() {
		var m memory.Memory
		var created string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Content, &m.Importance, &created); err != nil {
			return nil, err
		}
		m.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	_ = rows.Close()

	for i := range out {
		tags, err := db.tags(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Tags = tags
	}
	return out, nil
}

// Count returns how many memories a session holds.
func (db *DB) Count(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM memories WHERE session_id = ?", sessionID).Scan(&n)
	return n, err
}

func (db *DB) tags(ctx context.Context, id string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT tag FROM memory_tags WHERE memory_id = ? ORDER BY rowid", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
