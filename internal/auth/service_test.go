package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fabocv/santi-pos/internal/auth"
)

func newService(t *testing.T) *auth.Service {
	t.Helper()
	svc, err := auth.NewService(auth.Config{Secret: "test-secret"})
	require.NoError(t, err)
	return svc
}

func TestLoginWithBadge(t *testing.T) {
	svc := newService(t)

	result, err := svc.Login(context.Background(), "ADM001")
	require.NoError(t, err)
	require.Equal(t, "1", result.Operator.ID)
	require.Equal(t, auth.RoleAdmin, result.Operator.Role)
	require.NotEmpty(t, result.AccessToken)
	require.True(t, result.ExpiresAt.After(time.Now()))
}

func TestLoginWithPIN(t *testing.T) {
	svc := newService(t)

	result, err := svc.Login(context.Background(), "0000")
	require.NoError(t, err)
	require.Equal(t, "2", result.Operator.ID)
	require.Equal(t, auth.RoleOperator, result.Operator.Role)
}

func TestLoginRejectsUnknownCode(t *testing.T) {
	svc := newService(t)

	_, err := svc.Login(context.Background(), "9999")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "  ")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestParseAccessTokenRoundTrip(t *testing.T) {
	svc := newService(t)

	result, err := svc.Login(context.Background(), "1111")
	require.NoError(t, err)

	op, err := svc.ParseAccessToken(result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "3", op.ID)
	require.Equal(t, auth.RoleOperator, op.Role)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	svc, err := auth.NewService(auth.Config{Secret: "test-secret", AccessTokenTTL: time.Minute})
	require.NoError(t, err)

	issuedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return issuedAt })
	result, err := svc.Login(context.Background(), "1234")
	require.NoError(t, err)

	svc.WithNow(func() time.Time { return issuedAt.Add(2 * time.Minute) })
	_, err = svc.ParseAccessToken(result.AccessToken)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestParseAccessTokenRejectsForeignSignature(t *testing.T) {
	svc := newService(t)
	other, err := auth.NewService(auth.Config{Secret: "another-secret"})
	require.NoError(t, err)

	result, err := other.Login(context.Background(), "ADM001")
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(result.AccessToken)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestNewServiceValidatesSeeds(t *testing.T) {
	_, err := auth.NewService(auth.Config{Secret: ""})
	require.Error(t, err)

	_, err = auth.NewService(auth.Config{
		Secret:    "s",
		Operators: []auth.SeedOperator{{Name: "sin pin"}},
	})
	require.Error(t, err)
}
