package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

// Vault is the entry store behind /api/passwords. services.VaultService
// implements it.
type Vault interface {
	Create(ctx context.Context, ownerID string, in models.EntryInput) (*models.Entry, error)
	List(ctx context.Context, ownerID string) ([]*models.Entry, error)
	Get(ctx context.Context, entryID, ownerID string) (*models.Entry, error)
	Reveal(entry *models.Entry) (string, error)
	Update(ctx context.Context, entryID, ownerID string, patch models.EntryPatch) (*models.Entry, error)
	Delete(ctx context.Context, entryID, ownerID string) error
}

type PasswordHandler struct {
	vault  Vault
	logger logging.Logger
}

type createEntryRequest struct {
	Website  string `json:"website"`
	Username string `json:"username"`
	Password string `json:"password"`
	Notes    string `json:"notes"`
}

type updateEntryRequest struct {
	Website  *string `json:"website"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Notes    *string `json:"notes"`
}

type entryResponse struct {
	ID        string    `json:"id"`
	Website   string    `json:"website"`
	Username  string    `json:"username"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

type entryDetailResponse struct {
	entryResponse
	Password string `json:"password"`
}

func toEntryResponse(e *models.Entry) entryResponse {
	return entryResponse{
		ID:        e.ID,
		Website:   e.Website,
		Username:  e.Username,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
	}
}

func (h *PasswordHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "missing user")
		return
	}

	var req createEntryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	e, err := h.vault.Create(r.Context(), ownerID, models.EntryInput{
		Website:  req.Website,
		Username: req.Username,
		Secret:   req.Password,
		Notes:    req.Notes,
	})
	if err != nil {
		h.fail(w, r, "create entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(e))
}

func (h *PasswordHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "missing user")
		return
	}

	list, err := h.vault.List(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, "list entries", err)
		return
	}

	resp := make([]entryResponse, 0, len(list))
	for _, e := range list {
		resp = append(resp, toEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PasswordHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "missing user")
		return
	}

	e, err := h.vault.Get(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		h.fail(w, r, "get entry", err)
		return
	}

	secret, err := h.vault.Reveal(e)
	if err != nil {
		h.fail(w, r, "reveal entry", err)
		return
	}

	writeJSON(w, http.StatusOK, entryDetailResponse{entryResponse: toEntryResponse(e), Password: secret})
}

// Update applies a partial update for both PUT and PATCH: fields missing
// from the body are left as they are.
func (h *PasswordHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "missing user")
		return
	}

	var req updateEntryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	e, err := h.vault.Update(r.Context(), chi.URLParam(r, "id"), ownerID, models.EntryPatch{
		Website:  req.Website,
		Username: req.Username,
		Secret:   req.Password,
		Notes:    req.Notes,
	})
	if err != nil {
		h.fail(w, r, "update entry", err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponse(e))
}

func (h *PasswordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "missing user")
		return
	}

	if err := h.vault.Delete(r.Context(), chi.URLParam(r, "id"), ownerID); err != nil {
		h.fail(w, r, "delete entry", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PasswordHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if !errors.Is(err, common.ErrorNotFound) && !errors.Is(err, common.ErrorValidation) {
		h.logger.Error(r.Context(), op+" failed", "error", err, "request_id", chiMiddleware.GetReqID(r.Context()))
	}
	writeError(w, err)
}

// decodeBody reads a single JSON object. An empty body decodes to the
// zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
