package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hongminglow/mf-tracker-be/internal/accounts"
	"github.com/hongminglow/mf-tracker-be/internal/http/respond"
	"github.com/hongminglow/mf-tracker-be/internal/models"
	"github.com/hongminglow/mf-tracker-be/internal/models/dto"
)

// Accounts registers and authenticates users.
type Accounts interface {
	Register(ctx context.Context, name, email, password string) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Generate(userID int64, email string) (string, error)
}

// AuthHandler owns register/login endpoints.
type AuthHandler struct {
	accounts Accounts
	tokens   TokenIssuer
	logger   *slog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(accounts Accounts, tokens TokenIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens, logger: logger}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrMissingField):
			respond.Error(w, http.StatusBadRequest, "Email & password required")
		case errors.Is(err, accounts.ErrDuplicateEmail):
			respond.Error(w, http.StatusBadRequest, "User already exists")
		case errors.Is(err, accounts.ErrPasswordTooLong):
			respond.Error(w, http.StatusBadRequest, "Password too long")
		default:
			h.logger.ErrorContext(r.Context(), "register failed", "error", err)
			respond.Error(w, http.StatusInternalServerError, "Server error")
		}
		return
	}
	h.issue(w, r, user)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			respond.Error(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	h.issue(w, r, user)
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, user models.User) {
	token, err := h.tokens.Generate(user.ID, user.Email)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "sign token failed", "user_id", user.ID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	respond.JSON(w, http.StatusOK, dto.AuthResponse{Token: token, User: user.Public()})
}
