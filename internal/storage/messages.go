package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// timeLayout is the sortable canonical text form used for the date column.
// All timestamps are normalized to UTC before formatting so that string
// comparison orders rows chronologically.
const timeLayout = time.RFC3339

// IndexStatus reports the outcome of the full-text index write or query
// accompanying a store operation. Index failure is a tagged value rather
// than an error so that callers make the fallback decision explicitly.
type IndexStatus int

const (
	IndexOK IndexStatus = iota
	IndexUnavailable
)

// StoredMessage is one retrieved (channel, text) pair.
type StoredMessage struct {
	Channel string
	Text    string
}

// SaveMessage inserts a message into the primary table and, independently,
// into the full-text index.
//
// Empty text is a no-op. Duplicate ids are ignored: the first write wins
// and is never overwritten. An index insert failure is swallowed and
// reported as IndexUnavailable; the primary write is never rolled back on
// index failure.
func (d *DB) SaveMessage(ctx context.Context, id, channel string, date time.Time, text string) (IndexStatus, error) {
	if text == "" {
		return IndexOK, nil
	}

	iso := date.UTC().Format(timeLayout)

	_, err := d.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO messages (id, channel, date, text)
		VALUES (?, ?, ?, ?)
	`, id, channel, iso, text)
	if err != nil {
		return IndexUnavailable, fmt.Errorf("insert message: %w", err)
	}

	// The FTS table has no uniqueness, but we insert once per message id
	// because the primary insert above deduplicates arrivals upstream.
	_, err = d.conn.ExecContext(ctx, `
		INSERT INTO messages_fts (id, channel, date, text)
		VALUES (?, ?, ?, ?)
	`, id, channel, iso, text)
	if err != nil {
		d.logger.Warn().Err(err).Str("id", id).Msg("failed to insert into messages_fts (FTS disabled?)")

		return IndexUnavailable, nil
	}

	return IndexOK, nil
}

// MessagesBetween returns all primary-table rows with timestamps in
// [start, end] inclusive, in ascending timestamp order. A limit <= 0
// means uncapped.
func (d *DB) MessagesBetween(ctx context.Context, start, end time.Time, limit int) ([]StoredMessage, error) {
	q := `
		SELECT channel, text FROM messages
		WHERE date BETWEEN ? AND ?
		ORDER BY date ASC
	`
	args := []any{start.UTC().Format(timeLayout), end.UTC().Format(timeLayout)}

	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("range scan: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// SearchMessagesBetween runs a full-text MATCH query restricted to the
// inclusive time range, ascending by timestamp and capped at limit.
//
// Any query failure (FTS5 absent, index corrupt) is reported as
// IndexUnavailable with no rows; the caller decides how to degrade.
func (d *DB) SearchMessagesBetween(ctx context.Context, match string, start, end time.Time, limit int) ([]StoredMessage, IndexStatus) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT channel, text
		FROM messages_fts
		WHERE messages_fts MATCH ?
		  AND date BETWEEN ? AND ?
		ORDER BY date ASC
		LIMIT ?
	`, match, start.UTC().Format(timeLayout), end.UTC().Format(timeLayout), limit)
	if err != nil {
		d.logger.Warn().Err(err).Msg("FTS query failed")

		return nil, IndexUnavailable
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		d.logger.Warn().Err(err).Msg("FTS scan failed")

		return nil, IndexUnavailable
	}

	return msgs, IndexOK
}

// CountMessagesBetween counts primary-table rows in the inclusive range.
func (d *DB) CountMessagesBetween(ctx context.Context, start, end time.Time) (int, error) {
	var count int

	err := d.conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE date BETWEEN ? AND ?
	`, start.UTC().Format(timeLayout), end.UTC().Format(timeLayout)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}

	return count, nil
}

// MessageCount returns the number of primary-table rows stored under id.
func (d *DB) MessageCount(ctx context.Context, id string) (int, error) {
	var count int

	err := d.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count by id: %w", err)
	}

	return count, nil
}

// MessageText returns the text stored under id, or sql.ErrNoRows.
func (d *DB) MessageText(ctx context.Context, id string) (string, error) {
	var text string

	err := d.conn.QueryRowContext(ctx, `SELECT text FROM messages WHERE id = ?`, id).Scan(&text)
	if err != nil {
		return "", fmt.Errorf("select text by id: %w", err)
	}

	return text, nil
}

func scanMessages(rows *sql.Rows) ([]StoredMessage, error) {
	var msgs []StoredMessage

	for rows.Next() {
		var m StoredMessage
		if err := rows.Scan(&m.Channel, &m.Text); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}

		msgs = append(msgs, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}

	return msgs, nil
}
