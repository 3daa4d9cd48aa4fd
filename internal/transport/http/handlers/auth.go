package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/service"
	apierrors "github.com/Fordbeing/go-bookmark-manager/auth-service/internal/transport/http/errors"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/transport/http/middleware"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	UserID           int64  `json:"userId"`
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// refreshResponse дублирует accessToken в поле token: старые клиенты
// бэкенда закладок читали именно его.
type refreshResponse struct {
	AccessToken      string `json:"accessToken"`
	Token            string `json:"token"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

type meResponse struct {
	UserID  int64  `json:"userId"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteKind(w, r, http.StatusBadRequest, apierrors.KindInvalidArgument, "invalid request body")
		return
	}

	pair, userID, err := h.svc.RegisterUser(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		UserID:           userID,
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		ExpiresInSeconds: int64(h.svc.AccessTTL().Seconds()),
	})
}

func (h *Handlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteKind(w, r, http.StatusBadRequest, apierrors.KindInvalidArgument, "invalid request body")
		return
	}

	pair, userID, err := h.svc.LoginUser(r.Context(), in.Email, in.Password)
	if err != nil {
		h.writeLoginError(w, r, in.Email, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		UserID:           userID,
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		ExpiresInSeconds: int64(h.svc.AccessTTL().Seconds()),
	})
}

// writeLoginError дополняет отказ входа действенной обратной связью:
// остатком попыток при неверных кредах и остатком блокировки при локауте.
func (h *Handlers) writeLoginError(w http.ResponseWriter, r *http.Request, email string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		remaining := h.svc.RemainingLoginAttempts(r.Context(), email)
		msg := fmt.Sprintf("invalid credentials, %d attempts remaining", remaining)
		apierrors.WriteKind(w, r, http.StatusUnauthorized, apierrors.KindInvalidCredentials, msg)
	case errors.Is(err, service.ErrAccountLocked):
		remaining := h.svc.LockRemaining(r.Context(), email)
		msg := fmt.Sprintf("account temporarily locked, retry in %d seconds", int64(remaining.Seconds()))
		apierrors.WriteKind(w, r, http.StatusUnauthorized, apierrors.KindAccountLocked, msg)
	default:
		apierrors.WriteError(w, r, err)
	}
}

func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := decodeStrict(r, &in); err != nil || in.RefreshToken == "" {
		apierrors.WriteKind(w, r, http.StatusBadRequest, apierrors.KindInvalidArgument, "invalid request body")
		return
	}

	access, expiresIn, err := h.svc.RefreshToken(r.Context(), in.RefreshToken)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{
		AccessToken:      access,
		Token:            access,
		ExpiresInSeconds: int64(expiresIn.Seconds()),
	})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	raw := middleware.BearerToken(r)
	if raw == "" {
		apierrors.WriteKind(w, r, http.StatusUnauthorized, apierrors.KindInvalidToken, "authentication required")
		return
	}

	if err := h.svc.Logout(r.Context(), raw); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())
	if principal == nil {
		apierrors.WriteKind(w, r, http.StatusUnauthorized, apierrors.KindInvalidToken, "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		UserID:  principal.UserID,
		Email:   principal.Email,
		IsAdmin: principal.IsAdmin,
	})
}