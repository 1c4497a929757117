package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/twa-auth/token"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestIssuer(t *testing.T, now *time.Time) *token.Issuer {
	t.Helper()
	signer, err := token.NewHMACSigner("test-secret")
	require.NoError(t, err)
	return token.NewIssuer(signer, time.Hour,
		token.WithNowTime(func() time.Time { return *now }),
		token.WithIDGenerator(func() string { return "jti-1" }),
	)
}

func TestNewHMACSigner_RequiresSecret(t *testing.T) {
	_, err := token.NewHMACSigner("")
	require.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	now := issuedAt
	issuer := newTestIssuer(t, &now)

	raw, err := issuer.Issue(123, "1")
	require.NoError(t, err)

	claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, &token.Claims{
		ID:               "jti-1",
		Subject:          "123",
		AgreementVersion: "1",
		IssuedAt:         issuedAt,
		ExpiresAt:        issuedAt.Add(time.Hour),
	}, claims)

	id, err := claims.TelegramID()
	require.NoError(t, err)
	require.Equal(t, int64(123), id)
}

func TestVerify_Rejects(t *testing.T) {
	now := issuedAt
	issuer := newTestIssuer(t, &now)
	raw, err := issuer.Issue(123, "1")
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := issuer.Verify("  ")
		require.ErrorIs(t, err, token.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Verify("not-a-jwt")
		require.ErrorIs(t, err, token.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := token.NewHMACSigner("other-secret")
		require.NoError(t, err)
		_, err = token.NewIssuer(other, time.Hour).Verify(raw)
		require.ErrorIs(t, err, token.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := issuedAt.Add(2 * time.Hour)
		_, err := newTestIssuer(t, &later).Verify(raw)
		require.ErrorIs(t, err, token.ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		unsigned, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.MapClaims{
			"sub": "123",
			"exp": issuedAt.Add(time.Hour).Unix(),
		}).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Verify(unsigned)
		require.ErrorIs(t, err, token.ErrInvalidToken)
	})
}

func TestPeek(t *testing.T) {
	now := issuedAt
	raw, err := newTestIssuer(t, &now).Issue(42, "2")
	require.NoError(t, err)

	claims, err := token.Peek(raw)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, "2", claims.AgreementVersion)

	_, err = token.Peek("jwt123")
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestClaims_TelegramIDInvalid(t *testing.T) {
	_, err := (&token.Claims{Subject: "abc"}).TelegramID()
	require.Error(t, err)
}
