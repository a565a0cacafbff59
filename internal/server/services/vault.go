// Package services contains server-side business logic. VaultService owns
// the stored credentials: it validates input, encrypts secrets before they
// reach a repository and decrypts them on reveal.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/server/metrics"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// SecretCipher seals and opens secrets. cryptox.Cipher implements it.
type SecretCipher interface {
	Encrypt(plaintext string) ([]byte, error)
	Decrypt(blob []byte) (string, error)
}

// VaultService implements create/list/get/reveal/update/delete for entries.
// Every call is scoped to an owner id and never sees another owner's rows.
type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      SecretCipher
	now         func() time.Time
}

func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, cipher SecretCipher) *VaultService {
	return &VaultService{
		db:          db,
		repomanager: m,
		cipher:      cipher,
		now:         time.Now,
	}
}

// Create validates in, encrypts the secret and stores a new entry owned by
// ownerID. The returned entry carries the ciphertext, not the secret.
func (s *VaultService) Create(ctx context.Context, ownerID string, in models.EntryInput) (e *models.Entry, err error) {
	defer func() { observe("create", err) }()

	if err := validateWebsite(in.Website); err != nil {
		return nil, err
	}
	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validateSecret(in.Secret); err != nil {
		return nil, err
	}

	blob, err := s.cipher.Encrypt(in.Secret)
	if err != nil {
		return nil, fmt.Errorf("error encrypting secret: %w", err)
	}

	entry := &models.Entry{
		ID:              uuid.NewString(),
		UserID:          ownerID,
		Website:         in.Website,
		Username:        in.Username,
		EncryptedSecret: blob,
		Notes:           in.Notes,
		CreatedAt:       s.now().UTC(),
	}

	e, err = s.repomanager.Entries(s.db).Create(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("error creating entry: %w", err)
	}
	return e, nil
}

// List returns ownerID's entries newest first; an empty, non-nil slice when
// there are none.
func (s *VaultService) List(ctx context.Context, ownerID string) (list []*models.Entry, err error) {
	defer func() { observe("list", err) }()

	list, err = s.repomanager.Entries(s.db).ListByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	if list == nil {
		list = []*models.Entry{}
	}
	return list, nil
}

// Get returns the entry only if it belongs to ownerID, otherwise
// common.ErrorNotFound. Ids that are not UUIDs are never found.
func (s *VaultService) Get(ctx context.Context, entryID, ownerID string) (e *models.Entry, err error) {
	defer func() { observe("get", err) }()

	if !isEntryID(entryID) {
		return nil, common.ErrorNotFound
	}

	e, err = s.repomanager.Entries(s.db).GetByIDAndUser(ctx, entryID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error getting entry: %w", err)
	}
	return e, nil
}

// Reveal decrypts the entry's secret. Failures match common.ErrorDecryption.
func (s *VaultService) Reveal(entry *models.Entry) (secret string, err error) {
	defer func() { observe("reveal", err) }()

	if entry == nil {
		return "", common.ErrorNotFound
	}
	return s.cipher.Decrypt(entry.EncryptedSecret)
}

// Update applies patch to the entry if it belongs to ownerID. Ownership and
// the write are one conditional statement, so a concurrent delete turns the
// update into common.ErrorNotFound. An empty patch returns the current entry.
func (s *VaultService) Update(ctx context.Context, entryID, ownerID string, patch models.EntryPatch) (e *models.Entry, err error) {
	defer func() { observe("update", err) }()

	changes := models.EntryChanges{
		Website:  patch.Website,
		Username: patch.Username,
		Notes:    patch.Notes,
	}

	if patch.Website != nil {
		if err := validateWebsite(*patch.Website); err != nil {
			return nil, err
		}
	}
	if patch.Username != nil {
		if err := validateUsername(*patch.Username); err != nil {
			return nil, err
		}
	}
	if patch.Secret != nil {
		if err := validateSecret(*patch.Secret); err != nil {
			return nil, err
		}
		if changes.EncryptedSecret, err = s.cipher.Encrypt(*patch.Secret); err != nil {
			return nil, fmt.Errorf("error encrypting secret: %w", err)
		}
	}

	if !isEntryID(entryID) {
		return nil, common.ErrorNotFound
	}

	e, err = s.repomanager.Entries(s.db).Update(ctx, entryID, ownerID, changes)
	if err != nil {
		return nil, fmt.Errorf("error updating entry: %w", err)
	}
	return e, nil
}

// Delete removes the entry if it belongs to ownerID. Deleting twice yields
// common.ErrorNotFound the second time.
func (s *VaultService) Delete(ctx context.Context, entryID, ownerID string) (err error) {
	defer func() { observe("delete", err) }()

	if !isEntryID(entryID) {
		return common.ErrorNotFound
	}

	if err := s.repomanager.Entries(s.db).Delete(ctx, entryID, ownerID); err != nil {
		return fmt.Errorf("error deleting entry: %w", err)
	}
	return nil
}

func isEntryID(id string) bool {
	return uuid.Validate(id) == nil
}

func validateWebsite(website string) error {
	if strings.TrimSpace(website) == "" {
		return common.NewValidationError("website", "must not be empty")
	}
	if utf8.RuneCountInString(website) > common.MaxFieldLength {
		return common.NewValidationError("website", fmt.Sprintf("must be at most %d characters", common.MaxFieldLength))
	}
	return nil
}

func validateUsername(username string) error {
	if utf8.RuneCountInString(username) > common.MaxFieldLength {
		return common.NewValidationError("username", fmt.Sprintf("must be at most %d characters", common.MaxFieldLength))
	}
	return nil
}

func validateSecret(secret string) error {
	if secret == "" {
		return common.NewValidationError("password", "must not be empty")
	}
	return nil
}

func observe(op string, err error) {
	result := metrics.ResultOK
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound):
		result = metrics.ResultNotFound
	case errors.Is(err, common.ErrorValidation):
		result = metrics.ResultInvalid
	default:
		result = metrics.ResultError
	}
	metrics.VaultOperationsTotal.WithLabelValues(op, result).Inc()
}
