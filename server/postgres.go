package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/existflow/tasksync/internal/model"
)

// uniqueViolation is the SQLSTATE for unique constraint failures
const uniqueViolation = "23505"

// PostgresStore implements Store on PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to dbURL and runs migrations
func OpenPostgres(dbURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	p := &PostgresStore{db: db}
	if err := p.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (p *PostgresStore) CreateUser(ctx context.Context, username, email, passwordHash string) (string, error) {
	var userID string
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id`,
		username, email, passwordHash,
	).Scan(&userID)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return "", ErrConflict
	}
	return userID, err
}

func (p *PostgresStore) FindUserByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := p.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, notFound(err)
}

func (p *PostgresStore) FindUserByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := p.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, notFound(err)
}

func (p *PostgresStore) CreateSession(ctx context.Context, s model.Session) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, token, expires_at)
		VALUES ($1, $2, $3)`,
		s.UserID, s.Token, s.ExpiresAt,
	)
	return err
}

func (p *PostgresStore) FindSession(ctx context.Context, token string) (model.Session, error) {
	var s model.Session
	err := p.db.QueryRowContext(ctx, `
		SELECT user_id, token, expires_at FROM sessions WHERE token = $1`,
		token,
	).Scan(&s.UserID, &s.Token, &s.ExpiresAt)
	return s, notFound(err)
}

func (p *PostgresStore) DeleteSession(ctx context.Context, token string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

func (p *PostgresStore) UpsertTask(ctx context.Context, userID string, doc model.Document) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO tasks (user_id, id, task, completed, timestamp, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, id) DO UPDATE SET
			task = EXCLUDED.task,
			completed = EXCLUDED.completed,
			timestamp = EXCLUDED.timestamp,
			updated_at = NOW()`,
		userID, doc.ID, doc.Task, doc.Completed, doc.Timestamp,
	)
	return err
}

func (p *PostgresStore) GetTask(ctx context.Context, userID, id string) (model.Document, error) {
	var d model.Document
	err := p.db.QueryRowContext(ctx, `
		SELECT id, task, completed, timestamp FROM tasks WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&d.ID, &d.Task, &d.Completed, &d.Timestamp)
	return d, notFound(err)
}

func (p *PostgresStore) ListTasks(ctx context.Context, userID string) ([]model.Document, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, task, completed, timestamp FROM tasks
		WHERE user_id = $1
		ORDER BY timestamp DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	docs := []model.Document{}
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.Task, &d.Completed, &d.Timestamp); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (p *PostgresStore) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) ClearTasks(ctx context.Context, userID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID)
	return err
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
