package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
)

func newTestVerifier(t *testing.T) (*rsa.PrivateKey, JWTVerifier) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	verifier := NewStaticVerifier(func(*jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, logger)
	return key, verifier
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims models.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestVerifyToken(t *testing.T) {
	key, verifier := newTestVerifier(t)
	valid := models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "authenticated",
	}

	tests := []struct {
		name    string
		token   func() string
		wantSub string
	}{
		{
			name:    "valid",
			token:   func() string { return sign(t, jwt.SigningMethodRS256, key, valid) },
			wantSub: "user-1",
		},
		{
			name: "expired",
			token: func() string {
				c := valid
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
				return sign(t, jwt.SigningMethodRS256, key, c)
			},
		},
		{
			name: "anonymous role",
			token: func() string {
				c := valid
				c.Role = "anon"
				return sign(t, jwt.SigningMethodRS256, key, c)
			},
		},
		{
			name: "missing subject",
			token: func() string {
				c := valid
				c.Subject = ""
				return sign(t, jwt.SigningMethodRS256, key, c)
			},
		},
		{
			name:  "hmac algorithm rejected",
			token: func() string { return sign(t, jwt.SigningMethodHS256, []byte("secret"), valid) },
		},
		{
			name:  "garbage",
			token: func() string { return "not.a.jwt" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.VerifyToken(tt.token())
			if tt.wantSub == "" {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSub, claims.Subject)
		})
	}
}
