package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/tasksync/internal/model"
)

const taskColumns = `id, text, completed, created_at, sync_status`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var (
		t      model.Task
		status string
	)
	if err := row.Scan(&t.ID, &t.Text, &t.Completed, &t.CreatedAt, &status); err != nil {
		return model.Task{}, err
	}
	s, err := model.ParseSyncStatus(status)
	if err != nil {
		return model.Task{}, err
	}
	t.SyncStatus = s
	return t, nil
}

// Put inserts or replaces a task by id
func (db *DB) Put(ctx context.Context, t model.Task) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			completed = excluded.completed,
			created_at = excluded.created_at,
			sync_status = excluded.sync_status`,
		t.ID, t.Text, t.Completed, t.CreatedAt, t.SyncStatus.String(),
	)
	return storageErr("put", t.ID, err)
}

// Get returns the task with the given id or ErrNotFound
func (db *DB) Get(ctx context.Context, id string) (model.Task, error) {
	row := db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, storageErr("get", id, err)
	}
	return t, nil
}

// GetAll returns every task in no particular order
func (db *DB) GetAll(ctx context.Context) ([]model.Task, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks`)
	if err != nil {
		return nil, storageErr("get all", "", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, storageErr("get all", "", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get all", "", err)
	}
	return tasks, nil
}

// Delete removes a task. Deleting a missing id is not an error.
func (db *DB) Delete(ctx context.Context, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	return storageErr("delete", id, err)
}

// DeleteWithTombstone removes a task and records a tombstone in one transaction
func (db *DB) DeleteWithTombstone(ctx context.Context, id string, at time.Time) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("delete", id, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return storageErr("delete", id, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tombstones (id, deleted_at) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET deleted_at = excluded.deleted_at`,
		id, at.UnixMilli(),
	); err != nil {
		return storageErr("tombstone", id, err)
	}

	return storageErr("delete", id, tx.Commit())
}

// Tombstones returns deletes whose remote counterpart is still outstanding
func (db *DB) Tombstones(ctx context.Context) ([]model.Tombstone, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, deleted_at FROM tombstones ORDER BY deleted_at ASC`)
	if err != nil {
		return nil, storageErr("list tombstones", "", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []model.Tombstone
	for rows.Next() {
		var (
			id string
			at int64
		)
		if err := rows.Scan(&id, &at); err != nil {
			return nil, storageErr("list tombstones", "", err)
		}
		out = append(out, model.Tombstone{ID: id, DeletedAt: time.UnixMilli(at)})
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list tombstones", "", err)
	}
	return out, nil
}

// ClearTombstone forgets a tombstone once the remote delete went through
func (db *DB) ClearTombstone(ctx context.Context, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM tombstones WHERE id = ?`, id)
	return storageErr("clear tombstone", id, err)
}

// Clear wipes all tasks and tombstones
func (db *DB) Clear(ctx context.Context) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("clear", "", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"tasks", "tombstones"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return storageErr("clear", "", err)
		}
	}
	return storageErr("clear", "", tx.Commit())
}

// State reads a bookkeeping value, returning "" when unset
func (db *DB) State(ctx context.Context, key string) (string, error) {
	var value sql.NullString
	err := db.QueryRowContext(ctx, `SELECT value FROM sync_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", storageErr("read state", key, err)
	}
	return value.String, nil
}

// SetState writes a bookkeeping value
func (db *DB) SetState(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return storageErr("write state", key, err)
}
