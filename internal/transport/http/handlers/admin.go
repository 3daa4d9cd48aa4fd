package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/models"
	apierrors "github.com/Fordbeing/go-bookmark-manager/auth-service/internal/transport/http/errors"
)

type onlineResponse struct {
	Online int64 `json:"online"`
}

// DisableUser отключает учётную запись и каскадно отзывает все её сессии.
func (h *Handlers) DisableUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.SetUserStatus(r.Context(), userID, models.StatusDisabled); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// EnableUser снова включает учётную запись. Сессии не восстанавливаются:
// пользователь входит заново.
func (h *Handlers) EnableUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.SetUserStatus(r.Context(), userID, models.StatusActive); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// OnlineStats возвращает число пользователей с живой access-сессией.
func (h *Handlers) OnlineStats(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.OnlineUsers(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, onlineResponse{Online: count})
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		apierrors.WriteKind(w, r, http.StatusBadRequest, apierrors.KindInvalidArgument, "invalid user id")
		return 0, false
	}
	return userID, true
}
