// Package jwt validates inbound bearer tokens against the identity
// provider's published signing keys. The service never issues tokens itself;
// the JWKS is discovered from the issuer's well-known endpoint and cached
// with auto-refresh.
package jwt

//go:generate go run go.uber.org/mock/mockgen -source=./jwt.go -destination=./mocks/jwt_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/rs/zerolog/log"

	"todoapp/config"
	"todoapp/shared/constant"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidIssuer = errors.New("invalid token issuer")
	ErrInvalidClaim  = errors.New("invalid token claim")
	ErrNoJWKSURL     = errors.New("either issuer or JWKS URL must be configured")
)

// Claims carries the resolved identity of the caller. Subject is the `sub`
// claim of the validated token, the only identity attribute the backend
// authorizes on.
type Claims struct {
	Subject string
	Issuer  string
}

// Validator validates bearer tokens.
type Validator interface {
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

type validatorImpl struct {
	issuer    string
	audience  string
	jwksURL   string
	jwksCache *jwk.Cache

	registerOnce sync.Once
	registerErr  error
}

type discoveryDocument struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// New creates a bearer-token validator from the OIDC section of the config.
// When no JWKS URL is configured it is discovered from the issuer.
func New(cfg *config.Config) Validator {
	ctx := context.Background()

	jwksURL := cfg.OIDC.JWKSURL
	if jwksURL == "" {
		if cfg.OIDC.Issuer == "" {
			log.Fatal().Msg("OIDC issuer or JWKS URL must be configured")
		}

		doc, err := discoverConfiguration(ctx, cfg.OIDC.Issuer)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to discover OIDC configuration")
		}

		jwksURL = doc.JWKSURI
	}

	validator, err := NewValidator(ctx, cfg.OIDC.Issuer, cfg.OIDC.Audience, jwksURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token validator")
	}

	return validator
}

// NewValidator creates a validator for the given issuer, optional audience
// and JWKS URL.
func NewValidator(ctx context.Context, issuer, audience, jwksURL string) (Validator, error) {
	if jwksURL == "" {
		return nil, ErrNoJWKSURL
	}

	httprcClient := httprc.NewClient()

	cache, err := jwk.NewCache(ctx, httprcClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS cache: %w", err)
	}

	return &validatorImpl{
		issuer:    issuer,
		audience:  audience,
		jwksURL:   jwksURL,
		jwksCache: cache,
	}, nil
}

// discoverConfiguration fetches the issuer's well-known OIDC metadata.
func discoverConfiguration(ctx context.Context, issuer string) (*discoveryDocument, error) {
	wellKnownURL := strings.TrimSuffix(issuer, "/") + "/.well-known/openid-configuration"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnownURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery request: %w", err)
	}

	req.Header.Set("Accept", constant.ContentTypeJSON)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch OIDC configuration: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OIDC discovery endpoint returned status %d", resp.StatusCode)
	}

	var doc discoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode OIDC configuration: %w", err)
	}

	if doc.JWKSURI == "" {
		return nil, errors.New("OIDC configuration missing jwks_uri")
	}

	return &doc, nil
}

// ValidateToken parses and validates a bearer token and returns its claims.
func (v *validatorImpl) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return v.keyFromJWKS(ctx, token)
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		default:
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if err := v.validateClaims(claims); err != nil {
		return nil, err
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidClaim)
	}

	issuer, _ := claims.GetIssuer()

	return &Claims{
		Subject: subject,
		Issuer:  issuer,
	}, nil
}

// keyFromJWKS resolves the signing key referenced by the token header from
// the cached JWKS.
func (v *validatorImpl) keyFromJWKS(ctx context.Context, token *jwt.Token) (any, error) {
	if err := v.ensureRegistered(ctx); err != nil {
		return nil, err
	}

	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, errors.New("token header missing kid")
	}

	keySet, err := v.jwksCache.Lookup(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup JWKS: %w", err)
	}

	key, found := keySet.LookupKeyID(kid)
	if !found {
		return nil, fmt.Errorf("key ID %s not found in JWKS", kid)
	}

	var rawKey any
	if err := jwk.Export(key, &rawKey); err != nil {
		return nil, fmt.Errorf("failed to export raw key: %w", err)
	}

	return rawKey, nil
}

// ensureRegistered registers the JWKS URL with the cache on first use so
// startup does not block on the identity provider.
func (v *validatorImpl) ensureRegistered(ctx context.Context) error {
	v.registerOnce.Do(func() {
		registrationCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := v.jwksCache.Register(registrationCtx, v.jwksURL); err != nil {
			v.registerErr = fmt.Errorf("failed to register JWKS URL: %w", err)
		}
	})

	return v.registerErr
}

func (v *validatorImpl) validateClaims(claims jwt.MapClaims) error {
	if v.issuer != "" {
		issuerClaim, err := claims.GetIssuer()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidClaim, err)
		}

		if strings.TrimSpace(issuerClaim) != strings.TrimSpace(v.issuer) {
			return ErrInvalidIssuer
		}
	}

	if v.audience != "" {
		audiences, err := claims.GetAudience()
		if err != nil {
			return ErrInvalidClaim
		}

		found := false

		for _, aud := range audiences {
			if aud == v.audience {
				found = true

				break
			}
		}

		if !found {
			return ErrInvalidClaim
		}
	}

	expirationTime, err := claims.GetExpirationTime()
	if err != nil || expirationTime == nil || expirationTime.Before(time.Now()) {
		return ErrExpiredToken
	}

	return nil
}

// ExtractTokenFromHeader extracts the raw token from an Authorization header.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if !strings.HasPrefix(authHeader, constant.BearerSchema) {
		return "", ErrInvalidToken
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, constant.BearerSchema))
	if token == "" {
		return "", ErrInvalidToken
	}

	return token, nil
}
