package uploads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/filepond/internal/common"
	"github.com/dmitrijs2005/filepond/internal/dbx"
	"github.com/dmitrijs2005/filepond/internal/models"
	"github.com/jackc/pgx/v5"
)

const columns = `id, filepath, filename, extension, mimetypes, disk, created_by, expires_at, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db    dbx.DBTX
	table string
}

// NewPostgresRepository binds a repository to db and the given table.
// An empty table selects DefaultTable.
func NewPostgresRepository(db dbx.DBTX, table string) *PostgresRepository {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresRepository{db: db, table: pgx.Identifier{table}.Sanitize()}
}

// Create inserts a new upload record.
func (r *PostgresRepository) Create(ctx context.Context, u *models.Upload) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, r.table, columns)

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Filepath, u.Filename, u.Extension, u.Mimetypes, u.Disk, u.CreatedBy, u.ExpiresAt, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// scopeClause renders the ownership predicate, numbering its placeholder
// after the first n arguments.
func scopeClause(scope models.Scope, n int) (string, []any) {
	if !scope.Owned {
		return "", nil
	}
	if scope.Owner == nil {
		return " AND created_by IS NULL", nil
	}
	return fmt.Sprintf(" AND created_by = $%d", n+1), []any{*scope.Owner}
}

// FindByID returns the live record with the given id, or common.ErrorNotFound.
func (r *PostgresRepository) FindByID(ctx context.Context, scope models.Scope, id string) (*models.Upload, error) {
	clause, extra := scopeClause(scope, 1)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND deleted_at IS NULL%s LIMIT 1`, columns, r.table, clause)

	args := append([]any{id}, extra...)
	u, err := scanUpload(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select upload: %w", err)
	}
	return u, nil
}

// FindManyByIDs returns the live records whose id is in ids, in the order
// the database yields them. Unknown ids are skipped.
func (r *PostgresRepository) FindManyByIDs(ctx context.Context, scope models.Scope, ids []string) ([]*models.Upload, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, id)
	}
	clause, extra := scopeClause(scope, len(ids))
	args = append(args, extra...)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id IN (%s) AND deleted_at IS NULL%s`,
		columns, r.table, strings.Join(placeholders, ", "), clause)

	return r.selectMany(ctx, query, args...)
}

// SelectExpired returns every record, soft-deleted ones included, whose
// expiry is at or before now.
func (r *PostgresRepository) SelectExpired(ctx context.Context, now time.Time) ([]*models.Upload, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE expires_at <= $1 ORDER BY expires_at`, columns, r.table)
	return r.selectMany(ctx, query, now)
}

func (r *PostgresRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.Upload, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select uploads: %w", err)
	}
	defer rows.Close()

	var result []*models.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SoftDelete marks the record deleted. Exactly one row must be affected.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id string, now time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`, r.table)
	return r.execOne(ctx, query, id, now)
}

// Delete removes the record. Exactly one row must be affected.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	return r.execOne(ctx, query, id)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (*models.Upload, error) {
	var (
		u         models.Upload
		createdBy sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Filepath, &u.Filename, &u.Extension, &u.Mimetypes, &u.Disk,
		&createdBy, &u.ExpiresAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if createdBy.Valid {
		owner := createdBy.String
		u.CreatedBy = &owner
	}
	return &u, nil
}
