package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"learnmap/internal/domain"
)

// Table describes how one entity type maps onto a user-scoped table. The
// shared id, user_id, created_at and updated_at columns are handled by the
// gateway; Columns lists the rest.
type Table[T any] struct {
	Name    string
	Columns []string
	Values  func(*T) []any
	Dest    func(*T) []any
}

// Patch merges a partial update into a stored record.
type Patch[T any] interface {
	Apply(*T)
}

type entity[T any] interface {
	*T
	Meta() *domain.Record
}

// Change patches one stored record. The patch is applied to the row as
// read inside the changeset's transaction.
type Change[T any] struct {
	ID    string
	Patch Patch[T]
}

// Changeset is applied in one transaction: deletes, then patches, then
// full-row puts.
type Changeset[T any] struct {
	Delete []string
	Patch  []Change[T]
	Put    []T
}

// Gateway is the user-scoped CRUD surface shared by skills and resources.
type Gateway[T any, P entity[T]] struct {
	db      *sqlx.DB
	table   Table[T]
	timeout time.Duration
	now     func() time.Time
}

func NewGateway[T any, P entity[T]](db *sqlx.DB, table Table[T], timeout time.Duration) *Gateway[T, P] {
	return &Gateway[T, P]{db: db, table: table, timeout: timeout, now: now}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (g *Gateway[T, P]) List(ctx context.Context, userID string) ([]T, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	q := g.db.Rebind(`SELECT ` + g.selectColumns() + ` FROM ` + g.table.Name +
		` WHERE user_id = ? ORDER BY created_at DESC, id DESC`)
	rows, err := g.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, g.wrap(err, "list")
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var rec T
		if err := rows.Scan(g.dest(&rec)...); err != nil {
			return nil, g.wrap(err, "scan")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, g.wrap(err, "list")
	}
	return out, nil
}

func (g *Gateway[T, P]) Get(ctx context.Context, userID, id string) (T, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	rec, err := g.get(ctx, g.db, userID, id)
	if err != nil {
		var zero T
		return zero, g.wrap(err, "get")
	}
	return rec, nil
}

// Create stores rec for userID. A missing id is generated; created_at and
// updated_at are always assigned here.
func (g *Gateway[T, P]) Create(ctx context.Context, userID string, rec T) (T, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	meta := P(&rec).Meta()
	if meta.ID == "" {
		meta.ID = NewID()
	}
	meta.UserID = userID
	meta.CreatedAt = g.now()
	meta.UpdatedAt = meta.CreatedAt

	cols := append([]string{"id", "user_id", "created_at", "updated_at"}, g.table.Columns...)
	args := append([]any{meta.ID, meta.UserID, meta.CreatedAt, meta.UpdatedAt}, g.table.Values(&rec)...)

	q := g.db.Rebind(`INSERT INTO ` + g.table.Name + ` (` + strings.Join(cols, ", ") +
		`) VALUES (` + placeholders(len(cols)) + `)`)
	if _, err := g.db.ExecContext(ctx, q, args...); err != nil {
		var zero T
		return zero, g.wrap(err, "create")
	}
	return rec, nil
}

// Update merges patch into the stored record and refreshes updated_at. Only
// the fields the patch sets change.
func (g *Gateway[T, P]) Update(ctx context.Context, userID, id string, patch Patch[T]) (T, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	var zero T
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return zero, g.wrap(err, "update")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rec, err := g.get(ctx, tx, userID, id)
	if err != nil {
		return zero, g.wrap(err, "update")
	}
	if patch != nil {
		patch.Apply(&rec)
	}

	// The patch may not move ownership or identity.
	meta := P(&rec).Meta()
	meta.ID = id
	meta.UserID = userID
	if err := g.put(ctx, tx, &rec); err != nil {
		return zero, g.wrap(err, "update")
	}
	if err := tx.Commit(); err != nil {
		return zero, g.wrap(err, "update")
	}
	return rec, nil
}

// Delete removes the record if it exists. Deleting twice is not an error.
func (g *Gateway[T, P]) Delete(ctx context.Context, userID, id string) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	q := g.db.Rebind(`DELETE FROM ` + g.table.Name + ` WHERE user_id = ? AND id = ?`)
	if _, err := g.db.ExecContext(ctx, q, userID, id); err != nil {
		return g.wrap(err, "delete")
	}
	return nil
}

// Apply runs a changeset atomically. Patched and put rows must already
// exist; a missing one aborts the whole changeset with ErrNotFound.
func (g *Gateway[T, P]) Apply(ctx context.Context, userID string, cs Changeset[T]) ([]T, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, g.wrap(err, "apply")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	del := tx.Rebind(`DELETE FROM ` + g.table.Name + ` WHERE user_id = ? AND id = ?`)
	for _, id := range cs.Delete {
		if _, err := tx.ExecContext(ctx, del, userID, id); err != nil {
			return nil, g.wrap(err, "apply")
		}
	}

	out := make([]T, 0, len(cs.Patch)+len(cs.Put))
	for _, c := range cs.Patch {
		rec, err := g.get(ctx, tx, userID, c.ID)
		if err != nil {
			return nil, g.wrap(err, "apply")
		}
		if c.Patch != nil {
			c.Patch.Apply(&rec)
		}
		meta := P(&rec).Meta()
		meta.ID = c.ID
		meta.UserID = userID
		if err := g.put(ctx, tx, &rec); err != nil {
			return nil, g.wrap(err, "apply")
		}
		out = append(out, rec)
	}
	for _, rec := range cs.Put {
		meta := P(&rec).Meta()
		if meta.UserID != "" && meta.UserID != userID {
			return nil, g.wrap(sql.ErrNoRows, "apply")
		}
		meta.UserID = userID
		if err := g.put(ctx, tx, &rec); err != nil {
			return nil, g.wrap(err, "apply")
		}
		out = append(out, rec)
	}

	if err := tx.Commit(); err != nil {
		return nil, g.wrap(err, "apply")
	}
	return out, nil
}

type queryer interface {
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
	Rebind(query string) string
}

func (g *Gateway[T, P]) get(ctx context.Context, q queryer, userID, id string) (T, error) {
	var rec T
	row := q.QueryRowxContext(ctx, q.Rebind(`SELECT `+g.selectColumns()+` FROM `+g.table.Name+
		` WHERE user_id = ? AND id = ?`), userID, id)
	if err := row.Scan(g.dest(&rec)...); err != nil {
		return rec, err
	}
	return rec, nil
}

// put overwrites every non-key column of an existing row.
func (g *Gateway[T, P]) put(ctx context.Context, tx *sqlx.Tx, rec *T) error {
	meta := P(rec).Meta()
	meta.UpdatedAt = g.now()

	sets := make([]string, 0, len(g.table.Columns)+1)
	sets = append(sets, "updated_at = ?")
	for _, c := range g.table.Columns {
		sets = append(sets, c+" = ?")
	}
	args := append([]any{meta.UpdatedAt}, g.table.Values(rec)...)
	args = append(args, meta.UserID, meta.ID)

	q := tx.Rebind(`UPDATE ` + g.table.Name + ` SET ` + strings.Join(sets, ", ") +
		` WHERE user_id = ? AND id = ?`)
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	if meta.CreatedAt.IsZero() {
		var created time.Time
		row := tx.QueryRowxContext(ctx, tx.Rebind(`SELECT created_at FROM `+g.table.Name+` WHERE id = ?`), meta.ID)
		if err := row.Scan(dbTime{&created}); err != nil {
			return err
		}
		meta.CreatedAt = created
	}
	return nil
}

func (g *Gateway[T, P]) selectColumns() string {
	cols := append([]string{"id", "user_id", "created_at", "updated_at"}, g.table.Columns...)
	return strings.Join(cols, ", ")
}

func (g *Gateway[T, P]) dest(rec *T) []any {
	meta := P(rec).Meta()
	d := []any{&meta.ID, &meta.UserID, dbTime{&meta.CreatedAt}, dbTime{&meta.UpdatedAt}}
	return append(d, g.table.Dest(rec)...)
}

func (g *Gateway[T, P]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *Gateway[T, P]) wrap(err error, op string) error {
	return mapError(err, g.table.Name+": "+op)
}

func mapError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return errors.Wrap(domain.ErrNotFound, msg)
	case errors.Is(err, context.DeadlineExceeded):
		return errors.Wrapf(domain.ErrTimeout, "%s: %v", msg, err)
	default:
		return errors.Wrap(err, msg)
	}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
