package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
	"github.com/vncsmyrnk/pollctl/internal/core/ports"
)

type AuthHandler struct {
	users  ports.UserRepository
	tokens ports.TokenIssuer
	hasher ports.PasswordHasher
	logger *zap.Logger
}

func NewAuthHandler(users ports.UserRepository, tokens ports.TokenIssuer, hasher ports.PasswordHasher, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		logger: logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, messageMissingFields)
		return
	}

	user, hash, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil || !h.hasher.Check(req.Password, hash) {
		writeError(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
		return
	}

	h.respondWithTokens(w, http.StatusOK, user)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterInput
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.Validate(); errs != nil {
		writeValidation(w, errs)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, domain.GenericErrorMessage)
		return
	}

	user, err := h.users.Create(r.Context(), domain.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, hash)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			writeValidation(w, fieldError("username", err))
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, domain.GenericErrorMessage)
		return
	}

	h.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	h.respondWithTokens(w, http.StatusCreated, user)
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh answers with a new access token for a valid refresh token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Refresh == "" {
		writeValidation(w, domain.ValidationErrors{"refresh": {domain.FieldRequiredMessage}})
		return
	}

	access, userID, err := h.tokens.Refresh(req.Refresh)
	if err == nil {
		_, err = h.users.GetByID(r.Context(), userID)
	}
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": domain.ErrTokenNotValid.Error(),
			"code":   "token_not_valid",
		})
		return
	}
	writeJSON(w, http.StatusOK, domain.Tokens{Access: access})
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, status int, user *domain.User) {
	tokens, err := h.tokens.Issue(*user)
	if err != nil {
		h.logger.Error("failed to issue tokens", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, domain.GenericErrorMessage)
		return
	}
	writeJSON(w, status, domain.AuthResult{User: *user, Tokens: tokens})
}
