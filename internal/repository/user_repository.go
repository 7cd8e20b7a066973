package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"learnmap/internal/domain/user"
)

type SQLUserRepository struct {
	db      *sqlx.DB
	timeout time.Duration
	now     func() time.Time
}

func NewUserRepository(db *sqlx.DB, timeout time.Duration) *SQLUserRepository {
	return &SQLUserRepository{db: db, timeout: timeout, now: now}
}

func (r *SQLUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if u.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return user.User{}, errors.Wrap(err, "users: new id")
		}
		u.ID = id
	}
	u.CreatedAt = r.now()
	u.UpdatedAt = u.CreatedAt

	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO users (id, email, display_name, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`),
		u.ID.String(), u.Email, u.DisplayName, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, mapError(err, "users: create")
	}
	return u, nil
}

func (r *SQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`SELECT id, email, display_name, password_hash, created_at, updated_at FROM users WHERE id = ?`), id.String())
	return scanUser(row)
}

func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`SELECT id, email, display_name, password_hash, created_at, updated_at FROM users WHERE email = ?`), email)
	return scanUser(row)
}

func (r *SQLUserRepository) UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) (user.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE users SET display_name = ?, updated_at = ? WHERE id = ?`), name, r.now(), id.String())
	if err != nil {
		return user.User{}, mapError(err, "users: update")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *SQLUserRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

type userRow interface {
	Scan(dest ...any) error
}

func scanUser(row userRow) (user.User, error) {
	var u user.User
	var id string
	if err := row.Scan(&id, &u.Email, &u.DisplayName, &u.PasswordHash, dbTime{&u.CreatedAt}, dbTime{&u.UpdatedAt}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, mapError(err, "users: scan")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return user.User{}, errors.Wrap(err, "users: parse id")
	}
	u.ID = parsed
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

var _ user.Repository = (*SQLUserRepository)(nil)
