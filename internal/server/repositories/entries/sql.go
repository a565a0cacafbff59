package entries

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passvault/internal/server/models"
)

const entryColumns = "id, user_id, website, username, encrypted_password, notes, created_at"

type scanner interface {
	Scan(dest ...any) error
}

// setClause renders the SET list for changes. placeholder maps a 1-based
// argument position to the dialect's bind syntax. It returns the clause,
// its arguments and the next free position.
func setClause(changes models.EntryChanges, placeholder func(int) string) (string, []any, int) {
	var (
		parts []string
		args  []any
	)
	n := 1

	add := func(column string, v any) {
		parts = append(parts, fmt.Sprintf("%s = %s", column, placeholder(n)))
		args = append(args, v)
		n++
	}

	if changes.Website != nil {
		add("website", *changes.Website)
	}
	if changes.Username != nil {
		add("username", *changes.Username)
	}
	if changes.EncryptedSecret != nil {
		add("encrypted_password", changes.EncryptedSecret)
	}
	if changes.Notes != nil {
		add("notes", *changes.Notes)
	}

	return strings.Join(parts, ", "), args, n
}

func rowsAffectedError(n int64) error {
	return fmt.Errorf("unexpected rows affected: %d", n)
}
