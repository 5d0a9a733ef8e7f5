package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hongminglow/mf-tracker-be/internal/funds"
	"github.com/hongminglow/mf-tracker-be/internal/http/respond"
	"github.com/hongminglow/mf-tracker-be/internal/models/dto"
)

// FundLookups is the read-only fund data surface.
type FundLookups interface {
	Search(ctx context.Context, query string) (json.RawMessage, error)
	Scheme(ctx context.Context, code int) (json.RawMessage, error)
	Compare(ctx context.Context, codes []int) ([]json.RawMessage, error)
}

// FundsHandler proxies fund lookups; upstream error details are never exposed.
type FundsHandler struct {
	funds  FundLookups
	logger *slog.Logger
}

func NewFundsHandler(lookups FundLookups, logger *slog.Logger) *FundsHandler {
	return &FundsHandler{funds: lookups, logger: logger}
}

func (h *FundsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/mf/search", h.handleSearch)
	mux.HandleFunc("GET /api/mf/{schemeCode}", h.handleScheme)
	mux.HandleFunc("POST /api/mf/compare", h.handleCompare)
}

func (h *FundsHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	body, err := h.funds.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	respond.Raw(w, http.StatusOK, body)
}

func (h *FundsHandler) handleScheme(w http.ResponseWriter, r *http.Request) {
	code, ok := pathSchemeCode(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid scheme code")
		return
	}
	body, err := h.funds.Scheme(r.Context(), code)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	respond.Raw(w, http.StatusOK, body)
}

func (h *FundsHandler) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req dto.CompareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	raw := bytes.TrimSpace(req.SchemeCodes)
	if len(raw) == 0 || raw[0] != '[' {
		respond.Error(w, http.StatusBadRequest, "schemeCodes array required")
		return
	}
	var codes []int
	if err := json.Unmarshal(raw, &codes); err != nil {
		respond.Error(w, http.StatusBadRequest, "schemeCodes must be integers")
		return
	}

	results, err := h.funds.Compare(r.Context(), codes)
	if err != nil {
		if errors.Is(err, funds.ErrNoSchemeCodes) {
			respond.Error(w, http.StatusBadRequest, "at least one scheme code is required")
			return
		}
		h.upstreamError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, results)
}

func (h *FundsHandler) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.WarnContext(r.Context(), "upstream lookup failed", "path", r.URL.Path, "error", err)
	respond.Error(w, http.StatusBadGateway, "External API error")
}
