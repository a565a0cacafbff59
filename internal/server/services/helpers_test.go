package services

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repotest"
	"github.com/stretchr/testify/require"
)

const (
	owner1 = "11111111-1111-1111-1111-111111111111"
	owner2 = "22222222-2222-2222-2222-222222222222"
)

// stepClock returns a clock that advances by one second on every call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

func newTestCipher(t *testing.T) *cryptox.Cipher {
	t.Helper()
	c, err := cryptox.NewCipher(cryptox.GenerateKey())
	require.NoError(t, err)
	return c
}

func newSQLiteVault(t *testing.T) (*VaultService, *sql.DB) {
	t.Helper()
	db := repotest.NewSQLiteDB(t)
	repotest.InsertUser(t, db, owner1)
	repotest.InsertUser(t, db, owner2)

	s := NewVaultService(db, repomanager.NewSQLiteRepositoryManager(), newTestCipher(t))
	s.now = stepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return s, db
}

func strPtr(s string) *string { return &s }
