package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/dbx"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/entries"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRevocation(t *testing.T, now time.Time) *RevocationService {
	t.Helper()
	s := NewRevocationService(repotest.NewSQLiteDB(t), repomanager.NewSQLiteRepositoryManager())
	s.now = func() time.Time { return now }
	return s
}

func TestRevocation_Lifecycle(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newSQLiteRevocation(t, now)
	ctx := context.Background()
	expires := now.Add(15 * time.Minute)

	ok, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)

	rec, err := s.Revoke(ctx, "jti-1", expires)
	require.NoError(t, err)
	assert.Equal(t, "jti-1", rec.TokenID)
	assert.True(t, expires.Equal(rec.ExpiresAt))
	assert.True(t, now.Equal(rec.RevokedAt))

	ok, err = s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := s.Prune(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n, "not expired yet")

	n, err = s.Prune(ctx, expires.Add(time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	ok, err = s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevocation_RevokeIsIdempotent(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newSQLiteRevocation(t, now)
	ctx := context.Background()

	first, err := s.Revoke(ctx, "jti-1", now.Add(time.Hour))
	require.NoError(t, err)

	s.now = func() time.Time { return now.Add(time.Minute) }
	second, err := s.Revoke(ctx, "jti-1", now.Add(2*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRevocation_EmptyTokenID(t *testing.T) {
	s := newSQLiteRevocation(t, time.Now())

	_, err := s.Revoke(context.Background(), " ", time.Now())
	assert.ErrorIs(t, err, common.ErrorValidation)
}

// --- fakes for transactional behaviour ---

type fakeRevokedRepo struct {
	createErr error
	findOut   *models.RevokedToken
	findErr   error
	exists    bool
	existsErr error
	deleted   int64
	deleteErr error
}

func (f *fakeRevokedRepo) Create(context.Context, string, time.Time, time.Time) error {
	return f.createErr
}
func (f *fakeRevokedRepo) Find(context.Context, string) (*models.RevokedToken, error) {
	return f.findOut, f.findErr
}
func (f *fakeRevokedRepo) Exists(context.Context, string) (bool, error) {
	return f.exists, f.existsErr
}
func (f *fakeRevokedRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return f.deleted, f.deleteErr
}

type fakeRepoManager struct {
	r *fakeRevokedRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return nil }
func (m *fakeRepoManager) Entries(dbx.DBTX) entries.Repository             { return nil }
func (m *fakeRepoManager) RevokedTokens(dbx.DBTX) revokedtokens.Repository { return m.r }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestRevoke_CommitsOnSuccess(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	want := &models.RevokedToken{TokenID: "jti-1"}
	s := NewRevocationService(db, &fakeRepoManager{r: &fakeRevokedRepo{findOut: want}})

	got, err := s.Revoke(context.Background(), "jti-1", time.Now())
	require.NoError(t, err)
	assert.Same(t, want, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevoke_RollsBackOnCreateError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := NewRevocationService(db, &fakeRepoManager{r: &fakeRevokedRepo{createErr: errors.New("boom")}})

	_, err := s.Revoke(context.Background(), "jti-1", time.Now())
	assert.ErrorContains(t, err, "error revoking token: boom")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevoke_BeginError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin().WillReturnError(errors.New("no conn"))

	s := NewRevocationService(db, &fakeRepoManager{r: &fakeRevokedRepo{}})

	_, err := s.Revoke(context.Background(), "jti-1", time.Now())
	assert.Error(t, err)
}

func TestIsRevoked_RepoError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewRevocationService(db, &fakeRepoManager{r: &fakeRevokedRepo{existsErr: errors.New("db err")}})

	_, err := s.IsRevoked(context.Background(), "jti-1")
	assert.ErrorContains(t, err, "db err")
}

func TestPrune_RepoError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewRevocationService(db, &fakeRepoManager{r: &fakeRevokedRepo{deleteErr: errors.New("db err")}})

	_, err := s.Prune(context.Background(), time.Now())
	assert.ErrorContains(t, err, "error pruning revoked tokens")
}
