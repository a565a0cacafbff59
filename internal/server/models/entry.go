// Package models defines server-side data models persisted in the database.
package models

import "time"

// Entry is a stored credential. EncryptedSecret holds the password sealed by
// cryptox.Cipher and is never empty. UserID is fixed at creation.
type Entry struct {
	ID              string
	UserID          string
	Website         string
	Username        string
	EncryptedSecret []byte
	Notes           string
	CreatedAt       time.Time
}

// EntryInput is the payload for creating an entry. Username and Notes may
// be empty.
type EntryInput struct {
	Website  string
	Username string
	Secret   string
	Notes    string
}

// EntryPatch is a sparse update. A nil field is left untouched; a non-nil
// empty Username or Notes clears the field.
type EntryPatch struct {
	Website  *string
	Username *string
	Secret   *string
	Notes    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p EntryPatch) IsEmpty() bool {
	return p.Website == nil && p.Username == nil && p.Secret == nil && p.Notes == nil
}

// EntryChanges is an EntryPatch after validation and encryption: what a
// repository writes. A nil field is left untouched.
type EntryChanges struct {
	Website         *string
	Username        *string
	EncryptedSecret []byte
	Notes           *string
}

// IsEmpty reports whether there is nothing to write.
func (c EntryChanges) IsEmpty() bool {
	return c.Website == nil && c.Username == nil && c.EncryptedSecret == nil && c.Notes == nil
}
