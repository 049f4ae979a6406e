package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RecordAction appends one action to the log and returns its id. The log is
// append-only; rows are never updated or removed.
func (s *Store) RecordAction(ctx context.Context, action Action) (int64, error) {
	if action.Kind == "" || action.Path == "" {
		return 0, errors.New("action requires a kind and a path")
	}
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO actions (session_id, kind, path, detail, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		action.SessionID,
		action.Kind,
		action.Path,
		nullableString(action.Detail),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("record action: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("action id: %w", err)
	}
	return id, nil
}

// ListActions returns the most recent actions, newest first. A limit of 0
// returns everything.
func (s *Store) ListActions(ctx context.Context, limit int) ([]Action, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, session_id, kind, path, detail, created_at
              FROM actions ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var (
			action    Action
			detail    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&action.ID, &action.SessionID, &action.Kind, &action.Path, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		action.Detail = stringOrEmpty(detail)
		if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			action.CreatedAt = parsed
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

// LastActionFor returns the newest action of a given kind recorded for path,
// or nil when none exists. Restore uses it to find where a quarantined file
// was moved.
func (s *Store) LastActionFor(ctx context.Context, path, kind string) (*Action, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, kind, path, detail, created_at
         FROM actions WHERE path = ? AND kind = ? ORDER BY id DESC LIMIT 1`,
		path, kind,
	)
	var (
		action    Action
		detail    sql.NullString
		createdAt string
	)
	err := row.Scan(&action.ID, &action.SessionID, &action.Kind, &action.Path, &detail, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last action: %w", err)
	}
	action.Detail = stringOrEmpty(detail)
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		action.CreatedAt = parsed
	}
	return &action, nil
}
