package auth

import (
	"context"
	"net/http"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"todoapp/config"
	"todoapp/infras/otel"
	"todoapp/internal/client/session"
	"todoapp/shared/constant"
	"todoapp/shared/logger"
)

const (
	stateCookieName = "oauth_state"
	nonceCookieName = "oauth_nonce"

	flowCookieMaxAge = 300
)

// Authenticator drives the authorization-code login flow against the
// identity provider and manages the resulting browser session.
type Authenticator interface {
	Login(w http.ResponseWriter, r *http.Request)
	Callback(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type authenticatorImpl struct {
	config       *config.Config
	oauth        oauth2.Config
	verifier     *oidc.IDTokenVerifier
	endSession   string
	sessionStore session.Store
	otel         otel.Otel
}

// providerClaims picks the RP-initiated logout endpoint out of the
// discovery document. go-oidc does not expose it directly.
type providerClaims struct {
	EndSessionEndpoint string `json:"end_session_endpoint"`
}

func New(ctx context.Context, cfg *config.Config, sessionStore session.Store, ot otel.Otel) (Authenticator, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OIDC.Issuer)
	if err != nil {
		return nil, errors.Wrap(err, "discovering OIDC provider")
	}

	var claims providerClaims
	if err := provider.Claims(&claims); err != nil {
		return nil, errors.Wrap(err, "reading provider metadata")
	}

	return &authenticatorImpl{
		config: cfg,
		oauth: oauth2.Config{
			ClientID:     cfg.Client.ClientID,
			ClientSecret: cfg.Client.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.Client.BaseURL + "/callback",
			Scopes:       cfg.Client.Scopes,
		},
		verifier:     provider.Verifier(&oidc.Config{ClientID: cfg.Client.ClientID}),
		endSession:   claims.EndSessionEndpoint,
		sessionStore: sessionStore,
		otel:         ot,
	}, nil
}

func (a *authenticatorImpl) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	nonce := uuid.NewString()

	a.setFlowCookie(w, stateCookieName, state)
	a.setFlowCookie(w, nonceCookieName, nonce)

	http.Redirect(w, r, a.oauth.AuthCodeURL(state, oidc.Nonce(nonce)), http.StatusFound)
}

func (a *authenticatorImpl) Callback(w http.ResponseWriter, r *http.Request) {
	ctx, scope := a.otel.NewScope(r.Context(), constant.OtelAuthScopeName, constant.OtelAuthScopeName+".Callback")
	defer scope.End()

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		log.Warn().Msg("Login callback with missing or mismatched state")
		http.Error(w, "state mismatch", http.StatusBadRequest)

		return
	}

	token, err := a.oauth.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		scope.TraceError(err)
		logger.ErrorWithStack(err)
		http.Error(w, "failed to exchange authorization code", http.StatusInternalServerError)

		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		http.Error(w, "no id_token in token response", http.StatusInternalServerError)

		return
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		scope.TraceError(err)
		logger.ErrorWithStack(err)
		http.Error(w, "failed to verify ID token", http.StatusInternalServerError)

		return
	}

	if nonceCookie, err := r.Cookie(nonceCookieName); err != nil || idToken.Nonce != nonceCookie.Value {
		log.Warn().Msg("Login callback with missing or mismatched nonce")
		http.Error(w, "nonce mismatch", http.StatusBadRequest)

		return
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		scope.TraceError(err)
		logger.ErrorWithStack(err)
		http.Error(w, "failed to parse ID token claims", http.StatusInternalServerError)

		return
	}

	sess, err := a.sessionStore.Create(ctx, session.Session{
		Subject:     idToken.Subject,
		Username:    usernameFromClaims(claims),
		AccessToken: token.AccessToken,
		RawIDToken:  rawIDToken,
		Claims:      claims,
	})
	if err != nil {
		http.Error(w, "failed to create session", http.StatusInternalServerError)

		return
	}

	a.clearFlowCookie(w, stateCookieName)
	a.clearFlowCookie(w, nonceCookieName)
	a.sessionStore.Issue(w, sess)

	log.Info().Str("subject", sess.Subject).Msg("User logged in")

	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout destroys the local session and then sends the browser to the
// provider's end_session_endpoint so the IdP session ends as well. When
// the provider publishes no such endpoint only the local session ends.
func (a *authenticatorImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, scope := a.otel.NewScope(r.Context(), constant.OtelAuthScopeName, constant.OtelAuthScopeName+".Logout")
	defer scope.End()

	var rawIDToken string

	if cookie, err := r.Cookie(a.config.Client.Session.CookieName); err == nil {
		if sess, err := a.sessionStore.Get(ctx, cookie.Value); err == nil {
			rawIDToken = sess.RawIDToken

			if err := a.sessionStore.Delete(ctx, cookie.Value); err != nil {
				log.Warn().Err(err).Msg("Failed to delete session on logout")
			}

			log.Info().Str("subject", sess.Subject).Msg("User logged out")
		}
	}

	a.sessionStore.Clear(w)

	if a.endSession == "" {
		http.Redirect(w, r, "/", http.StatusFound)

		return
	}

	query := url.Values{}
	query.Set("post_logout_redirect_uri", a.config.Client.BaseURL)

	if rawIDToken != "" {
		query.Set("id_token_hint", rawIDToken)
	}

	http.Redirect(w, r, a.endSession+"?"+query.Encode(), http.StatusFound)
}

func (a *authenticatorImpl) setFlowCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   flowCookieMaxAge,
		HttpOnly: true,
		Secure:   a.config.Client.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *authenticatorImpl) clearFlowCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.config.Client.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func usernameFromClaims(claims map[string]any) string {
	for _, key := range []string{"preferred_username", "name", "email", "sub"} {
		if value, ok := claims[key].(string); ok && value != "" {
			return value
		}
	}

	return ""
}
