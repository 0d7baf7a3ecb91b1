package token

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticator_Authenticate(t *testing.T) {
	secretKey, publicKey := generateTestKeyPair()
	auth := NewAuthenticator(newValidator(t, publicKey))
	access := createTestToken(secretKey, "u1", "user", "access", time.Now().Add(time.Hour))

	t.Run("bearer header", func(t *testing.T) {
		ctx, p, err := auth.Authenticate(context.Background(), "Bearer "+access)

		require.NoError(t, err)
		assert.Equal(t, "u1", p.UserID)
		assert.Same(t, p, PrincipalFromContext(ctx))
	})

	t.Run("raw token", func(t *testing.T) {
		_, p, err := auth.Authenticate(context.Background(), access)

		require.NoError(t, err)
		assert.Equal(t, "u1", p.UserID)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		refresh := createTestToken(secretKey, "u1", "user", "refresh", time.Now().Add(time.Hour))

		ctx, _, err := auth.Authenticate(context.Background(), "Bearer "+refresh)

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, PrincipalFromContext(ctx))
	})

	t.Run("lowercase scheme", func(t *testing.T) {
		_, p, err := auth.Authenticate(context.Background(), "bearer  "+access)

		require.NoError(t, err)
		assert.Equal(t, "u1", p.UserID)
	})

	for _, credential := range []string{"", "   ", "Bearer ", "Bearer", "BEARER\t", "bearer   "} {
		t.Run("empty credential "+strconv.Quote(credential), func(t *testing.T) {
			_, _, err := auth.Authenticate(context.Background(), credential)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestStripBearer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bearer abc", "abc"},
		{"  bearer\tabc  ", "abc"},
		{"Bearer", ""},
		{"abc", "abc"},
		{"Bearerabc", "Bearerabc"},
		{"bear", "bear"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, stripBearer(tt.in))
		})
	}
}

func TestStaticValidator(t *testing.T) {
	auth := NewAuthenticator(newStaticValidator(Principal{UserID: "admin-1", Role: RoleAdmin, Type: "access"}))

	ctx, _, err := auth.Authenticate(context.Background(), "anything")

	require.NoError(t, err)
	p, err := RequireAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", p.UserID)
}
