package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/config"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/models"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/service"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/storage"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/token"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/mocks"
)

func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:        "router-secret",
		AccessTokenTTL:   30 * time.Minute,
		RefreshTokenTTL:  24 * time.Hour,
		RefreshThreshold: 10 * time.Minute,
	}
}

type routerDeps struct {
	handler  http.Handler
	codec    *token.Codec
	storage  *mocks.MockStorage
	sessions *mocks.MockStore
	guard    *mocks.MockGuard
}

func newRouter(t *testing.T) (routerDeps, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	sess := mocks.NewMockStore(ctrl)
	guard := mocks.NewMockGuard(ctrl)
	codec := token.New(testAuthCfg())
	svc := service.New(st, sess, guard, codec, testAuthCfg())

	logger := slog.New(slog.NewTextHandler(noopWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
	h := NewRouter(svc, Options{Logger: logger, Timeout: 5 * time.Second})

	return routerDeps{handler: h, codec: codec, storage: st, sessions: sess, guard: guard}, ctrl
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

func activeUser(id int64, email string, admin bool) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:        id,
		Email:     email,
		Status:    models.StatusActive,
		IsAdmin:   admin,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errBody struct {
	Code    int    `json:"code"`
	Kind    string `json:"error"`
	Message string `json:"message"`
}

func TestRouter_Register_OK(t *testing.T) {
	t.Parallel()

	d, ctrl := newRouter(t)
	defer ctrl.Finish()

	d.storage.EXPECT().UserByEmail(gomock.Any(), "new@e.com").Return(nil, storage.ErrNotFound)
	d.storage.EXPECT().SaveUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *models.User) error {
			u.ID = 11
			return nil
		})
	d.sessions.EXPECT().Register(gomock.Any(), int64(11), gomock.Any(), models.KindAccess, gomock.Any()).Return(nil)
	d.sessions.EXPECT().Register(gomock.Any(), int64(11), gomock.Any(), models.KindRefresh, gomock.Any()).Return(nil)

	rec := doJSON(t, d.handler, http.MethodPost, "/auth/register",
		map[string]string{"email": "new@e.com", "password": "Abcdef1!"}, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		UserID           int64  `json:"userId"`
		AccessToken      string `json:"accessToken"`
		RefreshToken     string `json:"refreshToken"`
		ExpiresInSeconds int64  `json:"expiresInSeconds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.EqualValues(t, 11, out.UserID)
	require.NotEmpty(t, out.AccessToken)
	require.NotEmpty(t, out.RefreshToken)
	require.EqualValues(t, int64(testAuthCfg().AccessTokenTTL.Seconds()), out.ExpiresInSeconds)
}

func TestRouter_Login_WrongPassword_ReportsRemainingAttempts(t *testing.T) {
	t.Parallel()

	d, ctrl := newRouter(t)
	defer ctrl.Finish()

	user := activeUser(7, "u@e.com", false)
	user.PasswordHash = "$2a$10$invalidhashinvalidhashinvalidhashinvalidhashinvalidha"

	d.guard.EXPECT().IsLocked(gomock.Any(), "u@e.com").Return(time.Duration(0))
	d.storage.EXPECT().UserByEmail(gomock.Any(), "u@e.com").Return(user, nil)
	d.guard.EXPECT().RecordFailure(gomock.Any(), "u@e.com").Return(int64(2))
	d.guard.EXPECT().RemainingAttempts(gomock.Any(), "u@e.com").Return(int64(3))

	rec := doJSON(t, d.handler, http.MethodPost, "/auth/login",
		map[string]string{"email": "u@e.com", "password": "wrong"}, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body errBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "INVALID_CREDENTIALS", body.Kind)
	require.Contains(t, body.Message, "3 attempts remaining")
}

func TestRouter_Login_Locked(t *testing.T) {
	t.Parallel()

	d, ctrl := newRouter(t)
	defer ctrl.Finish()

	d.guard.EXPECT().IsLocked(gomock.Any(), "u@e.com").Return(7 * time.Minute)
	d.guard.EXPECT().IsLocked(gomock.Any(), "u@e.com").Return(7 * time.Minute)

	rec := doJSON(t, d.handler, http.MethodPost, "/auth/login",
		map[string]string{"email": "u@e.com", "password": "Abcdef1!"}, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body errBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ACCOUNT_LOCKED", body.Kind)
	require.Contains(t, body.Message, "retry in 420 seconds")
}

func TestRouter_Refresh_OK(t *testing.T) {
	t.Parallel()

	d, ctrl := newRouter(t)
	defer ctrl.Finish()

	refresh, refreshID, err := d.codec.IssueRefresh(7)
	require.NoError(t, err)

	d.sessions.EXPECT().IsLive(gomock.Any(), int64(7), refreshID, models.KindRefresh).Return(true, nil)
	d.storage.EXPECT().UserByID(gomock.Any(), int64(7)).Return(activeUser(7, "u@e.com", false), nil)
	d.sessions.EXPECT().Register(gomock.Any(), int64(7), gomock.Any(), models.KindAccess, gomock.Any()).Return(nil)

	rec := doJSON(t, d.handler, http.MethodPost, "/auth/refresh",
		map[string]string{"refreshToken": refresh}, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		AccessToken      string `json:"accessToken"`
		Token            string `json:"token"`
		ExpiresInSeconds int64  `json:"expiresInSeconds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.AccessToken)
	require.Equal(t, out.AccessToken, out.Token)

	claims, err := d.codec.Decode(out.AccessToken)
	require.NoError(t, err)
	require.Equal(t, models.KindAccess, claims.Kind)
	require.NotEqual(t, refreshID, claims.TokenID)
}

func TestRouter_Me_RequiresAuth(t *testing.T) {
	t.Parallel()

	d, ctrl := newRouter(t)
	defer ctrl.Finish()

	rec := doJSON(t, d.handler, http.MethodGet, "/auth/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Me_OK(t *testing.T) {
	t.Parallel()

	d, ctrl := newRouter(t)
	defer ctrl.Finish()

	access, accessID, err := d.codec.IssueAccess(7)
	require.NoError(t, err)

	d.sessions.EXPECT().IsLive(gomock.Any(), int64(7), accessID, models.KindAccess).Return(true, nil)
	d.storage.EXPECT().UserByID(gomock.Any(), int64(7)).Return(activeUser(7, "u@e.com", false), nil)
	d.sessions.EXPECT().RemainingTTL(gomock.Any(), int64(7), accessID, models.KindAccess).Return(25*time.Minute, nil)

	rec := doJSON(t, d.handler, http.MethodGet, "/auth/me", nil,
		map[string]string{"Authorization": "Bearer " + access})

	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		UserID  int64  `json:"userId"`
		Email   string `json:"email"`
		IsAdmin bool   `json:"isAdmin"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.EqualValues(t, 7, out.UserID)
	require.Equal(t, "u@e.com", out.Email)
	require.False(t, out.IsAdmin)
}

func TestRouter_Logout_RevokesSession(t *testing.T) {
	t.Parallel()

	d, ctrl := newRouter(t)
	defer ctrl.Finish()

	access, accessID, err := d.codec.IssueAccess(7)
	require.NoError(t, err)

	// Сначала запрос проходит конвейер аутентификации, затем хендлер отзывает сессию.
	d.sessions.EXPECT().IsLive(gomock.Any(), int64(7), accessID, models.KindAccess).Return(true, nil)
	d.storage.EXPECT().UserByID(gomock.Any(), int64(7)).Return(activeUser(7, "u@e.com", false), nil)
	d.sessions.EXPECT().RemainingTTL(gomock.Any(), int64(7), accessID, models.KindAccess).Return(25*time.Minute, nil)
	d.sessions.EXPECT().Revoke(gomock.Any(), int64(7), accessID, models.KindAccess).Return(nil)

	rec := doJSON(t, d.handler, http.MethodPost, "/auth/logout", nil,
		map[string]string{"Authorization": "Bearer " + access})

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_Admin_ForbiddenForRegularUser(t *testing.T) {
	t.Parallel()

	d, ctrl := newRouter(t)
	defer ctrl.Finish()

	access, accessID, err := d.codec.IssueAccess(7)
	require.NoError(t, err)

	d.sessions.EXPECT().IsLive(gomock.Any(), int64(7), accessID, models.KindAccess).Return(true, nil)
	d.storage.EXPECT().UserByID(gomock.Any(), int64(7)).Return(activeUser(7, "u@e.com", false), nil)
	d.sessions.EXPECT().RemainingTTL(gomock.Any(), int64(7), accessID, models.KindAccess).Return(25*time.Minute, nil)

	rec := doJSON(t, d.handler, http.MethodPost, "/admin/users/9/disable", nil,
		map[string]string{"Authorization": "Bearer " + access})

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_Admin_DisableUser_Cascades(t *testing.T) {
	t.Parallel()

	d, ctrl := newRouter(t)
	defer ctrl.Finish()

	access, accessID, err := d.codec.IssueAccess(1)
	require.NoError(t, err)

	d.sessions.EXPECT().IsLive(gomock.Any(), int64(1), accessID, models.KindAccess).Return(true, nil)
	d.storage.EXPECT().UserByID(gomock.Any(), int64(1)).Return(activeUser(1, "admin@e.com", true), nil)
	d.sessions.EXPECT().RemainingTTL(gomock.Any(), int64(1), accessID, models.KindAccess).Return(25*time.Minute, nil)

	d.storage.EXPECT().UpdateUserStatus(gomock.Any(), int64(9), models.StatusDisabled).Return(nil)
	d.sessions.EXPECT().RevokeAll(gomock.Any(), int64(9)).Return(nil)

	rec := doJSON(t, d.handler, http.MethodPost, "/admin/users/9/disable", nil,
		map[string]string{"Authorization": "Bearer " + access})

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_Admin_OnlineStats(t *testing.T) {
	t.Parallel()

	d, ctrl := newRouter(t)
	defer ctrl.Finish()

	access, accessID, err := d.codec.IssueAccess(1)
	require.NoError(t, err)

	d.sessions.EXPECT().IsLive(gomock.Any(), int64(1), accessID, models.KindAccess).Return(true, nil)
	d.storage.EXPECT().UserByID(gomock.Any(), int64(1)).Return(activeUser(1, "admin@e.com", true), nil)
	d.sessions.EXPECT().RemainingTTL(gomock.Any(), int64(1), accessID, models.KindAccess).Return(25*time.Minute, nil)
	d.sessions.EXPECT().CountOnlineUsers(gomock.Any()).Return(int64(5), nil)

	rec := doJSON(t, d.handler, http.MethodGet, "/admin/stats/online", nil,
		map[string]string{"Authorization": "Bearer " + access})

	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Online int64 `json:"online"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.EqualValues(t, 5, out.Online)
}
