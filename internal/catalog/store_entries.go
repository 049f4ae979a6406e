package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const entryColumns = `path, system, size, mtime, status, serial, title,
    crc32, md5, sha1, match_name, dat_name, extra_json, error, updated_at`

// Upsert inserts or replaces the row for entry.Path.
func (s *Store) Upsert(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.Path == "" {
		return errors.New("entry requires a path")
	}
	if entry.Status == "" {
		entry.Status = StatusUnknown
	}
	entry.UpdatedAt = time.Now().UTC()

	var extraJSON any
	if len(entry.Extra) > 0 {
		encoded, err := json.Marshal(entry.Extra)
		if err != nil {
			return fmt.Errorf("marshal extra: %w", err)
		}
		extraJSON = string(encoded)
	}

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO entries (`+entryColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
            system = excluded.system,
            size = excluded.size,
            mtime = excluded.mtime,
            status = excluded.status,
            serial = excluded.serial,
            title = excluded.title,
            crc32 = excluded.crc32,
            md5 = excluded.md5,
            sha1 = excluded.sha1,
            match_name = excluded.match_name,
            dat_name = excluded.dat_name,
            extra_json = excluded.extra_json,
            error = excluded.error,
            updated_at = excluded.updated_at`,
		entry.Path,
		entry.System,
		entry.Size,
		entry.ModTime,
		entry.Status,
		nullableString(entry.Serial),
		nullableString(entry.Title),
		nullableString(entry.CRC32),
		nullableString(entry.MD5),
		nullableString(entry.SHA1),
		nullableString(entry.MatchName),
		nullableString(entry.DatName),
		extraJSON,
		nullableString(entry.Error),
		entry.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

// Get returns the entry for path, or nil when the path is not indexed.
func (s *Store) Get(ctx context.Context, path string) (*Entry, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE path = ?`, path)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// Delete removes the entry for path. Deleting an unknown path is a no-op.
func (s *Store) Delete(ctx context.Context, path string) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM entries WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// List returns all entries ordered by path.
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	return s.listWhere(ctx, "", nil)
}

// ListBySystem returns the entries of one console family ordered by path.
func (s *Store) ListBySystem(ctx context.Context, system string) ([]*Entry, error) {
	return s.listWhere(ctx, "WHERE system = ?", []any{system})
}

// ListByStatus returns the entries with a given status ordered by path.
func (s *Store) ListByStatus(ctx context.Context, status string) ([]*Entry, error) {
	return s.listWhere(ctx, "WHERE status = ?", []any{status})
}

// ListUnder returns the entries whose path begins with prefix, ordered by
// path. The scanner uses it to diff the index against a walked root.
func (s *Store) ListUnder(ctx context.Context, prefix string) ([]*Entry, error) {
	return s.listWhere(ctx, "WHERE path LIKE ? ESCAPE '\\'", []any{likePrefix(prefix) + "%"})
}

// ListHashed returns the entries carrying at least one digest, the working
// set for duplicate detection.
func (s *Store) ListHashed(ctx context.Context) ([]*Entry, error) {
	return s.listWhere(ctx, "WHERE sha1 IS NOT NULL OR md5 IS NOT NULL OR crc32 IS NOT NULL", nil)
}

func (s *Store) listWhere(ctx context.Context, where string, args []any) ([]*Entry, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + entryColumns + ` FROM entries ` + where + ` ORDER BY path`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// StatusCounts returns the number of entries per status.
func (s *Store) StatusCounts(ctx context.Context) (map[string]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM entries GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count statuses: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry     Entry
		serial    sql.NullString
		title     sql.NullString
		crc       sql.NullString
		md5sum    sql.NullString
		sha1sum   sql.NullString
		matchName sql.NullString
		datName   sql.NullString
		extraJSON sql.NullString
		errText   sql.NullString
		updatedAt string
	)
	err := row.Scan(
		&entry.Path,
		&entry.System,
		&entry.Size,
		&entry.ModTime,
		&entry.Status,
		&serial,
		&title,
		&crc,
		&md5sum,
		&sha1sum,
		&matchName,
		&datName,
		&extraJSON,
		&errText,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Serial = stringOrEmpty(serial)
	entry.Title = stringOrEmpty(title)
	entry.CRC32 = stringOrEmpty(crc)
	entry.MD5 = stringOrEmpty(md5sum)
	entry.SHA1 = stringOrEmpty(sha1sum)
	entry.MatchName = stringOrEmpty(matchName)
	entry.DatName = stringOrEmpty(datName)
	entry.Error = stringOrEmpty(errText)
	if extraJSON.Valid && extraJSON.String != "" {
		if err := json.Unmarshal([]byte(extraJSON.String), &entry.Extra); err != nil {
			return nil, fmt.Errorf("decode extra: %w", err)
		}
	}
	if parsed, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		entry.UpdatedAt = parsed
	}
	return &entry, nil
}

// likePrefix escapes LIKE metacharacters so a path prefix matches literally.
func likePrefix(prefix string) string {
	escaped := make([]byte, 0, len(prefix))
	for i := 0; i < len(prefix); i++ {
		switch prefix[i] {
		case '%', '_', '\\':
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, prefix[i])
	}
	return string(escaped)
}
