package jwt_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoapp/infras/jwt"
)

const testKeyID = "test-key-id"

func newJWKSServer(t *testing.T, publicKey *rsa.PublicKey) *httptest.Server {
	t.Helper()

	key, err := jwk.Import(publicKey)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, testKeyID))
	require.NoError(t, key.Set(jwk.AlgorithmKey, "RS256"))
	require.NoError(t, key.Set(jwk.KeyUsageKey, "sig"))

	keySet := jwk.NewSet()
	require.NoError(t, keySet.AddKey(key))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(keySet))
	}))
	t.Cleanup(server.Close)

	return server
}

func signToken(t *testing.T, privateKey *rsa.PrivateKey, claims jwtlib.MapClaims) string {
	t.Helper()

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID

	signed, err := token.SignedString(privateKey)
	require.NoError(t, err)

	return signed
}

func TestValidator_ValidateToken(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newJWKSServer(t, &privateKey.PublicKey)

	const issuer = "https://idp.example.com"

	validator, err := jwt.NewValidator(context.Background(), issuer, "", server.URL)
	require.NoError(t, err)

	tests := []struct {
		name    string
		claims  jwtlib.MapClaims
		wantErr error
		subject string
	}{
		{
			name: "valid token",
			claims: jwtlib.MapClaims{
				"iss": issuer,
				"sub": "alice",
				"exp": time.Now().Add(time.Hour).Unix(),
				"iat": time.Now().Unix(),
			},
			subject: "alice",
		},
		{
			name: "expired token",
			claims: jwtlib.MapClaims{
				"iss": issuer,
				"sub": "alice",
				"exp": time.Now().Add(-time.Hour).Unix(),
				"iat": time.Now().Add(-2 * time.Hour).Unix(),
			},
			wantErr: jwt.ErrExpiredToken,
		},
		{
			name: "wrong issuer",
			claims: jwtlib.MapClaims{
				"iss": "https://evil.example.com",
				"sub": "alice",
				"exp": time.Now().Add(time.Hour).Unix(),
			},
			wantErr: jwt.ErrInvalidIssuer,
		},
		{
			name: "missing subject",
			claims: jwtlib.MapClaims{
				"iss": issuer,
				"exp": time.Now().Add(time.Hour).Unix(),
			},
			wantErr: jwt.ErrInvalidClaim,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenString := signToken(t, privateKey, tt.claims)

			claims, err := validator.ValidateToken(context.Background(), tokenString)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.subject, claims.Subject)
			assert.Equal(t, issuer, claims.Issuer)
		})
	}

	t.Run("malformed token", func(t *testing.T) {
		_, err := validator.ValidateToken(context.Background(), "not-a-token")

		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("token signed with an unknown key", func(t *testing.T) {
		otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		tokenString := signToken(t, otherKey, jwtlib.MapClaims{
			"iss": issuer,
			"sub": "alice",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err = validator.ValidateToken(context.Background(), tokenString)

		assert.Error(t, err)
	})
}

func TestValidator_AudienceCheck(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newJWKSServer(t, &privateKey.PublicKey)

	const issuer = "https://idp.example.com"

	validator, err := jwt.NewValidator(context.Background(), issuer, "todo-service", server.URL)
	require.NoError(t, err)

	t.Run("matching audience", func(t *testing.T) {
		tokenString := signToken(t, privateKey, jwtlib.MapClaims{
			"iss": issuer,
			"sub": "alice",
			"aud": "todo-service",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		claims, err := validator.ValidateToken(context.Background(), tokenString)

		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
	})

	t.Run("wrong audience", func(t *testing.T) {
		tokenString := signToken(t, privateKey, jwtlib.MapClaims{
			"iss": issuer,
			"sub": "alice",
			"aud": "another-service",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err := validator.ValidateToken(context.Background(), tokenString)

		assert.Error(t, err)
	})
}

func TestNewValidator_RequiresJWKSURL(t *testing.T) {
	_, err := jwt.NewValidator(context.Background(), "https://idp.example.com", "", "")

	assert.ErrorIs(t, err, jwt.ErrNoJWKSURL)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer token", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "missing scheme", header: "abc.def.ghi", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "empty header", header: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwt.ExtractTokenFromHeader(tt.header)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}
