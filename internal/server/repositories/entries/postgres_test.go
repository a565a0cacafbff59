package entries

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var columns = []string{"id", "user_id", "website", "username", "encrypted_password", "notes", "created_at"}

func strPtr(s string) *string { return &s }

func TestPostgresCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	q := `(?s)^\s*INSERT\s+INTO\s+password_entries\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*$`

	mock.ExpectExec(q).
		WithArgs("e1", "u1", "example.com", "alice", []byte("blob"), "", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e, err := repo.Create(context.Background(), &models.Entry{
		ID: "e1", UserID: "u1", Website: "example.com", Username: "alice",
		EncryptedSecret: []byte("blob"), CreatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "e1", e.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO password_entries`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Entry{ID: "e1", UserID: "u1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresListByUser_FiltersAndOrders(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)SELECT\s+id, user_id, website, username, encrypted_password, notes, created_at\s+FROM\s+password_entries\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC,\s+id\s+DESC`

	t1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	t0 := t1.Add(-time.Hour)
	rows := sqlmock.NewRows(columns).
		AddRow("e2", "u1", "b.com", "", []byte("x"), "", t1).
		AddRow("e1", "u1", "a.com", "bob", []byte("y"), "n", t0)

	mock.ExpectQuery(q).WithArgs("u1").WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e2", got[0].ID)
	assert.Equal(t, "bob", got[1].Username)
	assert.True(t, got[1].CreatedAt.Equal(t0))
}

func TestPostgresListByUser_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+password_entries`).WithArgs("u1").WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPostgresListByUser_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+password_entries`).WithArgs("u1").WillReturnError(errors.New("db err"))

	_, err := repo.ListByUser(context.Background(), "u1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresGetByIDAndUser(t *testing.T) {
	q := `(?s)FROM\s+password_entries\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`

	t.Run("found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		rows := sqlmock.NewRows(columns).AddRow("e1", "u1", "example.com", "alice", []byte("blob"), "", time.Now())
		mock.ExpectQuery(q).WithArgs("e1", "u1").WillReturnRows(rows)

		e, err := repo.GetByIDAndUser(context.Background(), "e1", "u1")
		require.NoError(t, err)
		assert.Equal(t, "example.com", e.Website)
		assert.Equal(t, []byte("blob"), e.EncryptedSecret)
	})

	t.Run("other owner is not found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("e1", "u2").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByIDAndUser(context.Background(), "e1", "u2")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("e1", "u1").WillReturnError(errors.New("db err"))

		_, err := repo.GetByIDAndUser(context.Background(), "e1", "u1")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestPostgresUpdate_PartialSet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)UPDATE\s+password_entries\s+SET\s+notes\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2\s+AND\s+user_id\s*=\s*\$3\s+RETURNING\s+id, user_id`

	rows := sqlmock.NewRows(columns).AddRow("e1", "u1", "example.com", "alice", []byte("blob"), "rotated", time.Now())
	mock.ExpectQuery(q).WithArgs("rotated", "e1", "u1").WillReturnRows(rows)

	e, err := repo.Update(context.Background(), "e1", "u1", models.EntryChanges{Notes: strPtr("rotated")})
	require.NoError(t, err)
	assert.Equal(t, "rotated", e.Notes)
	assert.Equal(t, "alice", e.Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_AllFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)SET\s+website = \$1, username = \$2, encrypted_password = \$3, notes = \$4\s+WHERE\s+id = \$5 AND user_id = \$6`

	rows := sqlmock.NewRows(columns).AddRow("e1", "u1", "new.com", "", []byte("c2"), "", time.Now())
	mock.ExpectQuery(q).WithArgs("new.com", "", []byte("c2"), "", "e1", "u1").WillReturnRows(rows)

	_, err := repo.Update(context.Background(), "e1", "u1", models.EntryChanges{
		Website: strPtr("new.com"), Username: strPtr(""), EncryptedSecret: []byte("c2"), Notes: strPtr(""),
	})
	require.NoError(t, err)
}

func TestPostgresUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+password_entries`).WithArgs("x", "e1", "u2").WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "e1", "u2", models.EntryChanges{Website: strPtr("x")})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresUpdate_EmptyChangesReads(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).AddRow("e1", "u1", "example.com", "", []byte("b"), "", time.Now())
	mock.ExpectQuery(`(?s)^\s*SELECT.*WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`).WithArgs("e1", "u1").WillReturnRows(rows)

	e, err := repo.Update(context.Background(), "e1", "u1", models.EntryChanges{})
	require.NoError(t, err)
	assert.Equal(t, "example.com", e.Website)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDelete(t *testing.T) {
	q := `(?s)^\s*DELETE\s+FROM\s+password_entries\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`

	tests := []struct {
		name    string
		result  driver.Result
		execErr error
		check   func(t *testing.T, err error)
	}{
		{
			name:   "deleted",
			result: sqlmock.NewResult(0, 1),
			check:  func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name:   "no match",
			result: sqlmock.NewResult(0, 0),
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, common.ErrorNotFound) },
		},
		{
			name:   "unexpected rows",
			result: sqlmock.NewResult(0, 2),
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "unexpected rows affected: 2")
			},
		},
		{
			name:   "rows affected error",
			result: sqlmock.NewErrorResult(errors.New("rows-err")),
			check: func(t *testing.T, err error) {
				assert.Regexp(t, `rows affected error: .*rows-err`, err.Error())
			},
		},
		{
			name:    "exec error",
			execErr: errors.New("db err"),
			check: func(t *testing.T, err error) {
				assert.Regexp(t, `db error: .*db err`, err.Error())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			exp := mock.ExpectExec(q).WithArgs("e1", "u1")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(tt.result)
			}

			tt.check(t, repo.Delete(context.Background(), "e1", "u1"))
		})
	}
}
