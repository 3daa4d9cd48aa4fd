package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/config"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/models"
)

func testCfg() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:        "unit-test-secret",
		AccessTokenTTL:   2 * time.Hour,
		RefreshTokenTTL:  168 * time.Hour,
		RefreshThreshold: 30 * time.Minute,
	}
}

// signRaw — подписывает произвольные claims тем же секретом (для негативных кейсов).
func signRaw(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestIssueAccess_DecodeRoundTrip(t *testing.T) {
	t.Parallel()

	c := New(testCfg())
	now := time.Now().UTC()

	raw, tokenID, err := c.IssueAccess(42)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.Len(t, tokenID, 32)

	require.NoError(t, c.Verify(raw))

	claims, err := c.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, tokenID, claims.TokenID)
	require.Equal(t, models.KindAccess, claims.Kind)
	require.False(t, claims.Legacy())
	require.WithinDuration(t, now.Add(2*time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestIssueRefresh_DecodeRoundTrip(t *testing.T) {
	t.Parallel()

	c := New(testCfg())
	now := time.Now().UTC()

	raw, tokenID, err := c.IssueRefresh(7)
	require.NoError(t, err)

	claims, err := c.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)
	require.Equal(t, tokenID, claims.TokenID)
	require.Equal(t, models.KindRefresh, claims.Kind)
	require.WithinDuration(t, now.Add(168*time.Hour), claims.ExpiresAt, 5*time.Second)
}

// Каждый выпуск получает новый tokenId — идентификаторы никогда не переиспользуются.
func TestIssue_TokenIDUniquePerIssuance(t *testing.T) {
	t.Parallel()

	c := New(testCfg())

	seen := make(map[string]struct{})
	for i := 0; i < 64; i++ {
		_, tokenID, err := c.IssueAccess(1)
		require.NoError(t, err)

		_, dup := seen[tokenID]
		require.False(t, dup, "tokenId повторился: %s", tokenID)
		seen[tokenID] = struct{}{}
	}
}

// Legacy-токен: только subject (e-mail), без tokenId/type.
func TestIssueLegacy_DecodeResolvesLegacyVariant(t *testing.T) {
	t.Parallel()

	c := New(testCfg())

	raw, err := c.IssueLegacy("old-client@example.com")
	require.NoError(t, err)
	require.NoError(t, c.Verify(raw))

	claims, err := c.Decode(raw)
	require.NoError(t, err)
	require.True(t, claims.Legacy())
	require.Equal(t, models.KindLegacy, claims.Kind)
	require.Equal(t, "old-client@example.com", claims.Subject)
	require.Empty(t, claims.TokenID)
	require.Zero(t, claims.UserID)
}

func TestVerify_FailsClosed(t *testing.T) {
	t.Parallel()

	c := New(testCfg())

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()

		require.ErrorIs(t, c.Verify("not-a-jwt"), ErrInvalidToken)
		require.ErrorIs(t, c.Verify(""), ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()

		raw := signRaw(t, jwt.SigningMethodHS256, "another-secret", jwt.MapClaims{
			"sub": "42", "tokenId": "abc", "type": "access",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		require.ErrorIs(t, c.Verify(raw), ErrInvalidToken)
	})

	t.Run("wrong alg", func(t *testing.T) {
		t.Parallel()

		raw := signRaw(t, jwt.SigningMethodHS512, testCfg().JWTSecret, jwt.MapClaims{
			"sub": "42", "tokenId": "abc", "type": "access",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		require.ErrorIs(t, c.Verify(raw), ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()

		// Дальше leeway (5s), чтобы проверка гарантированно сработала.
		raw := signRaw(t, jwt.SigningMethodHS256, testCfg().JWTSecret, jwt.MapClaims{
			"sub": "42", "tokenId": "abc", "type": "access",
			"exp": time.Now().Add(-time.Minute).Unix(),
		})
		require.ErrorIs(t, c.Verify(raw), ErrTokenExpired)
	})
}

func TestDecode_RejectsStructurallyInvalidClaims(t *testing.T) {
	t.Parallel()

	c := New(testCfg())

	t.Run("non-numeric subject with tokenId", func(t *testing.T) {
		t.Parallel()

		raw := signRaw(t, jwt.SigningMethodHS256, testCfg().JWTSecret, jwt.MapClaims{
			"sub": "user@example.com", "tokenId": "abc", "type": "access",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		_, err := c.Decode(raw)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()

		raw := signRaw(t, jwt.SigningMethodHS256, testCfg().JWTSecret, jwt.MapClaims{
			"sub": "42", "tokenId": "abc", "type": "session",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		_, err := c.Decode(raw)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}
