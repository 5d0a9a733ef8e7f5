package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hongminglow/mf-tracker-be/internal/http/respond"
	"github.com/hongminglow/mf-tracker-be/internal/middleware"
	"github.com/hongminglow/mf-tracker-be/internal/models/dto"
	"github.com/hongminglow/mf-tracker-be/internal/storage"
)

// SavedSchemes is the per-user saved list.
type SavedSchemes interface {
	Add(ctx context.Context, userID int64, code int) ([]int, error)
	Remove(ctx context.Context, userID int64, code int) ([]int, error)
	List(ctx context.Context, userID int64) ([]int, error)
}

// SavedHandler serves the bearer-protected saved-scheme endpoints.
type SavedHandler struct {
	saved  SavedSchemes
	tokens middleware.TokenVerifier
	logger *slog.Logger
}

func NewSavedHandler(saved SavedSchemes, tokens middleware.TokenVerifier, logger *slog.Logger) *SavedHandler {
	return &SavedHandler{saved: saved, tokens: tokens, logger: logger}
}

// Register attaches the saved routes, each behind RequireAuth.
func (h *SavedHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/saved", middleware.RequireAuth(h.tokens, http.HandlerFunc(h.handleList)))
	mux.Handle("POST /api/saved", middleware.RequireAuth(h.tokens, http.HandlerFunc(h.handleAdd)))
	mux.Handle("DELETE /api/saved/{schemeCode}", middleware.RequireAuth(h.tokens, http.HandlerFunc(h.handleRemove)))
}

func (h *SavedHandler) handleList(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	codes, err := h.saved.List(r.Context(), identity.UserID)
	h.reply(w, r, codes, err)
}

func (h *SavedHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveSchemeRequest
	if err := decodeJSON(w, r, &req); err != nil || req.SchemeCode == nil || *req.SchemeCode <= 0 {
		respond.Error(w, http.StatusBadRequest, "schemeCode required")
		return
	}
	identity, _ := middleware.IdentityFromContext(r.Context())
	codes, err := h.saved.Add(r.Context(), identity.UserID, *req.SchemeCode)
	h.reply(w, r, codes, err)
}

func (h *SavedHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	code, ok := pathSchemeCode(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid scheme code")
		return
	}
	identity, _ := middleware.IdentityFromContext(r.Context())
	codes, err := h.saved.Remove(r.Context(), identity.UserID, code)
	h.reply(w, r, codes, err)
}

func (h *SavedHandler) reply(w http.ResponseWriter, r *http.Request, codes []int, err error) {
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "saved schemes failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	if codes == nil {
		codes = []int{}
	}
	respond.JSON(w, http.StatusOK, dto.SavedSchemesResponse{SavedSchemes: codes})
}
