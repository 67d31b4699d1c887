package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skilledge/skilledge-server/internal/model"
)

// Enqueue durably appends a change and returns the stored entry.
func (s *Store) Enqueue(ctx context.Context, change model.Change) (model.QueueEntry, error) {
	payload, err := model.EncodeChange(change)
	if err != nil {
		return model.QueueEntry{}, fmt.Errorf("failed to encode change: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_queue (kind, payload, created_at) VALUES (?, ?, ?)`,
		string(change.Kind()), string(payload), now)
	if err != nil {
		return model.QueueEntry{}, model.NewStorageError("enqueue change", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.QueueEntry{}, model.NewStorageError("enqueue change", err)
	}

	return model.QueueEntry{ID: id, Change: change, CreatedAt: now}, nil
}

// Pending returns every queued entry in insertion order.
func (s *Store) Pending(ctx context.Context) ([]model.QueueEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload, created_at FROM sync_queue ORDER BY id`)
	if err != nil {
		return nil, model.NewStorageError("list queue", err)
	}
	defer rows.Close()

	entries := []model.QueueEntry{}
	for rows.Next() {
		var (
			e       model.QueueEntry
			payload string
		)
		if err := rows.Scan(&e.ID, &payload, &e.CreatedAt); err != nil {
			return nil, model.NewStorageError("scan queue entry", err)
		}
		e.Change, err = model.DecodeChange([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to decode queue entry %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("list queue", err)
	}

	return entries, nil
}

// Ack removes exactly the given entries. Entries enqueued after the ids
// were read stay queued.
func (s *Store) Ack(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.NewStorageError("ack queue", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sync_queue WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return model.NewStorageError("ack queue", err)
	}
	if err := tx.Commit(); err != nil {
		return model.NewStorageError("ack queue", err)
	}
	return nil
}

// Clear drops every queued entry and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sync_queue`)
	if err != nil {
		return 0, model.NewStorageError("clear queue", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, model.NewStorageError("clear queue", err)
	}
	return n, nil
}

// Count returns the number of queued entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_queue`).Scan(&n); err != nil {
		return 0, model.NewStorageError("count queue", err)
	}
	return n, nil
}
