package uploads

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/filepond/internal/common"
	"github.com/dmitrijs2005/filepond/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ts      = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cols    = []string{"id", "filepath", "filename", "extension", "mimetypes", "disk", "created_by", "expires_at", "created_at", "updated_at"}
	owner   = "user-1"
	ownerID = &owner
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db, ""), mock, db
}

func uploadRow(rows *sqlmock.Rows, id string, createdBy any) *sqlmock.Rows {
	return rows.AddRow(id, "filepond/"+id+".png", id+".png", "png", "image/png", "local", createdBy, ts.Add(time.Hour), ts, ts)
}

func TestNewPostgresRepository_TableName(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, `"fileponds"`, NewPostgresRepository(db, "").table)
	assert.Equal(t, `"media_uploads"`, NewPostgresRepository(db, "media_uploads").table)
	assert.Equal(t, `"bad""name"`, NewPostgresRepository(db, `bad"name`).table)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT INTO "fileponds" \(id, filepath, filename, extension, mimetypes, disk, created_by, expires_at, created_at, updated_at\) VALUES`
	mock.ExpectExec(q).
		WithArgs("a", "filepond/a.png", "a.png", "png", "image/png", "local", "user-1", ts.Add(time.Hour), ts, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Upload{
		ID: "a", Filepath: "filepond/a.png", Filename: "a.png", Extension: "png", Mimetypes: "image/png",
		Disk: "local", CreatedBy: ownerID, ExpiresAt: ts.Add(time.Hour), CreatedAt: ts, UpdatedAt: ts,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO "fileponds"`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Upload{ID: "a"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByID_Unscoped(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `SELECT .* FROM "fileponds" WHERE id = \$1 AND deleted_at IS NULL LIMIT 1`
	mock.ExpectQuery(q).WithArgs("a").WillReturnRows(uploadRow(sqlmock.NewRows(cols), "a", nil))

	got, err := repo.FindByID(context.Background(), models.Scope{}, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, "filepond/a.png", got.Filepath)
	assert.Equal(t, "image/png", got.Mimetypes)
	assert.Nil(t, got.CreatedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_OwnedScope(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `WHERE id = \$1 AND deleted_at IS NULL AND created_by = \$2 LIMIT 1`
	mock.ExpectQuery(q).WithArgs("a", "user-1").WillReturnRows(uploadRow(sqlmock.NewRows(cols), "a", "user-1"))

	got, err := repo.FindByID(context.Background(), models.OwnedBy(ownerID), "a")
	require.NoError(t, err)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, "user-1", *got.CreatedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_OwnedByAnonymous(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `WHERE id = \$1 AND deleted_at IS NULL AND created_by IS NULL LIMIT 1`
	mock.ExpectQuery(q).WithArgs("a").WillReturnRows(uploadRow(sqlmock.NewRows(cols), "a", nil))

	_, err := repo.FindByID(context.Background(), models.OwnedBy(nil), "a")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM "fileponds" WHERE id = \$1`).WithArgs("zz").WillReturnRows(sqlmock.NewRows(cols))

	_, err := repo.FindByID(context.Background(), models.Scope{}, "zz")
	assert.True(t, errors.Is(err, common.ErrorNotFound), "got %v", err)
}

func TestFindByID_QueryErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM "fileponds" WHERE id = \$1`).WithArgs("a").WillReturnError(errors.New("db err"))

	_, err := repo.FindByID(context.Background(), models.Scope{}, "a")
	if err == nil || !regexp.MustCompile(`failed to select upload: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped select error, got %v", err)
	}
}

func TestFindManyByIDs_StoreOrder(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `WHERE id IN \(\$1, \$2, \$3\) AND deleted_at IS NULL$`
	rows := sqlmock.NewRows(cols)
	uploadRow(rows, "c", nil)
	uploadRow(rows, "a", nil)
	mock.ExpectQuery(q).WithArgs("a", "b", "c").WillReturnRows(rows)

	got, err := repo.FindManyByIDs(context.Background(), models.Scope{}, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindManyByIDs_OwnedScope(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `WHERE id IN \(\$1, \$2\) AND deleted_at IS NULL AND created_by = \$3$`
	mock.ExpectQuery(q).WithArgs("a", "b", "user-1").WillReturnRows(uploadRow(sqlmock.NewRows(cols), "a", "user-1"))

	got, err := repo.FindManyByIDs(context.Background(), models.OwnedBy(ownerID), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindManyByIDs_EmptySkipsQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	got, err := repo.FindManyByIDs(context.Background(), models.Scope{}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindManyByIDs_RowsErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(cols)
	uploadRow(rows, "a", nil)
	uploadRow(rows, "b", nil)
	rows.RowError(1, errors.New("row-err"))
	mock.ExpectQuery(`WHERE id IN`).WillReturnRows(rows)

	_, err := repo.FindManyByIDs(context.Background(), models.Scope{}, []string{"a", "b"})
	if err == nil || err.Error() != "row-err" {
		t.Fatalf("expected rows.Err 'row-err', got %v", err)
	}
}

func TestFindManyByIDs_ScanErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(cols).
		AddRow("a", "p", "f", "e", "m", "local", nil, "not-a-time", ts, ts)
	mock.ExpectQuery(`WHERE id IN`).WillReturnRows(rows)

	_, err := repo.FindManyByIDs(context.Background(), models.Scope{}, []string{"a"})
	require.Error(t, err)
}

func TestSelectExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `FROM "fileponds" WHERE expires_at <= \$1 ORDER BY expires_at$`
	mock.ExpectQuery(q).WithArgs(ts).WillReturnRows(uploadRow(sqlmock.NewRows(cols), "old", nil))

	got, err := repo.SelectExpired(context.Background(), ts)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "old", got[0].ID)
}

func TestSelectExpired_QueryErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`expires_at <=`).WillReturnError(errors.New("db err"))

	_, err := repo.SelectExpired(context.Background(), ts)
	if err == nil || !regexp.MustCompile(`failed to select uploads: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped select error, got %v", err)
	}
}

func TestSoftDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `UPDATE "fileponds" SET deleted_at = \$2, updated_at = \$2 WHERE id = \$1 AND deleted_at IS NULL`
	mock.ExpectExec(q).WithArgs("a", ts).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), "a", ts))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		result  func(m sqlmock.Sqlmock)
		wantErr *regexp.Regexp
		wantIs  error
	}{
		{
			name: "ok",
			result: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`DELETE FROM "fileponds" WHERE id = \$1`).WithArgs("a").WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "not found",
			result: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`DELETE FROM`).WithArgs("a").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantIs: common.ErrorNotFound,
		},
		{
			name: "db error",
			result: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`DELETE FROM`).WithArgs("a").WillReturnError(errors.New("db down"))
			},
			wantErr: regexp.MustCompile(`db error: .*db down`),
		},
		{
			name: "rows affected error",
			result: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`DELETE FROM`).WithArgs("a").WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))
			},
			wantErr: regexp.MustCompile(`rows affected error: .*rows-err`),
		},
		{
			name: "too many rows",
			result: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`DELETE FROM`).WithArgs("a").WillReturnResult(sqlmock.NewResult(0, 2))
			},
			wantErr: regexp.MustCompile(`unexpected rows affected: 2`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()
			tt.result(mock)

			err := repo.Delete(context.Background(), "a")
			switch {
			case tt.wantIs != nil:
				assert.True(t, errors.Is(err, tt.wantIs), "got %v", err)
			case tt.wantErr != nil:
				if err == nil || !tt.wantErr.MatchString(err.Error()) {
					t.Fatalf("want %s, got %v", tt.wantErr, err)
				}
			default:
				require.NoError(t, err)
			}
		})
	}
}
