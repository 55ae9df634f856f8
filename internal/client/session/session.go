package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"todoapp/config"
	"todoapp/infras/otel"
	"todoapp/shared/cache"
	"todoapp/shared/constant"
	"todoapp/shared/failure"
	"todoapp/shared/logger"
)

const keyPrefix = "session:"

// Session holds the authenticated user's identity and tokens between
// requests. It is stored as JSON in redis and referenced by the id kept
// in the browser cookie.
type Session struct {
	ID          string         `json:"id"`
	Subject     string         `json:"subject"`
	Username    string         `json:"username"`
	AccessToken string         `json:"access_token"`
	RawIDToken  string         `json:"raw_id_token"`
	Claims      map[string]any `json:"claims"`
}

type Store interface {
	Create(ctx context.Context, sess Session) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	Middleware(next http.Handler) http.Handler
	Issue(w http.ResponseWriter, sess Session)
	Clear(w http.ResponseWriter)
}

type storeImpl struct {
	cache  cache.RedisCache
	config *config.Config
	otel   otel.Otel
}

func NewStore(redisCache cache.RedisCache, cfg *config.Config, ot otel.Otel) Store {
	return &storeImpl{
		cache:  redisCache,
		config: cfg,
		otel:   ot,
	}
}

func (store *storeImpl) Create(ctx context.Context, sess Session) (res Session, err error) {
	ctx, scope := store.otel.NewScope(ctx, constant.OtelSessionScopeName, constant.OtelSessionScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	sess.ID = uuid.NewString()

	err = store.cache.Save(ctx, keyPrefix+sess.ID, sess, store.config.Client.Session.TTLSeconds)
	if err != nil {
		logger.ErrorWithStack(err)

		return Session{}, errors.Wrap(err, "saving session")
	}

	return sess, nil
}

func (store *storeImpl) Get(ctx context.Context, id string) (res Session, err error) {
	ctx, scope := store.otel.NewScope(ctx, constant.OtelSessionScopeName, constant.OtelSessionScopeName+".Get")
	defer scope.End()

	err = store.cache.Get(ctx, keyPrefix+id, &res)
	if err != nil {
		if errors.Is(err, cache.Nil) {
			return Session{}, failure.Unauthorized("Session not found")
		}

		scope.TraceError(err)
		logger.ErrorWithStack(err)

		return Session{}, errors.Wrap(err, "reading session")
	}

	return res, nil
}

func (store *storeImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := store.otel.NewScope(ctx, constant.OtelSessionScopeName, constant.OtelSessionScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = store.cache.Delete(ctx, keyPrefix+id)
	if err != nil {
		logger.ErrorWithStack(err)

		return errors.Wrap(err, "deleting session")
	}

	return nil
}

// Middleware resolves the session cookie and puts the session on the
// request context. Requests without a valid session are redirected to
// the login flow.
func (store *storeImpl) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(store.config.Client.Session.CookieName)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)

			return
		}

		sess, err := store.Get(r.Context(), cookie.Value)
		if err != nil {
			log.Debug().Err(err).Msg("Session lookup failed, redirecting to login")
			store.Clear(w)
			http.Redirect(w, r, "/login", http.StatusFound)

			return
		}

		ctx := context.WithValue(r.Context(), constant.ContextKeySession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Issue sets the session cookie on the response.
func (store *storeImpl) Issue(w http.ResponseWriter, sess Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     store.config.Client.Session.CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   store.config.Client.Session.TTLSeconds,
		Expires:  time.Now().Add(time.Duration(store.config.Client.Session.TTLSeconds) * time.Second),
		HttpOnly: true,
		Secure:   store.config.Client.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (store *storeImpl) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     store.config.Client.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   store.config.Client.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromContext returns the session placed on the context by Middleware.
func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(constant.ContextKeySession).(Session)

	return sess, ok
}
