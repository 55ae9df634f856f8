package middleware

import (
	"net/http"
	"strconv"

	"todoapp/shared/constant"
	"todoapp/transport/http/response"
)

const (
	cacheKeyRateLimit = "limiter"
)

// RateLimit is a fixed-window limiter keyed by client IP and user agent.
// Cache failures let the request through.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.config.App.RateLimiter.Enable {
				next.ServeHTTP(w, r)

				return
			}

			maxReqs := a.config.App.RateLimiter.MaxRequests
			windowSecs := a.config.App.RateLimiter.WindowSeconds

			userAgent := r.Header.Get(constant.RequestHeaderUserAgent)
			if userAgent == "" {
				userAgent = "unknown"
			}

			cacheKey := cacheKeyRateLimit + ":" + a.getClientIP(r) + ":" + userAgent

			count, err := a.cache.Increment(r.Context(), cacheKey, windowSecs)
			if err != nil {
				next.ServeHTTP(w, r)

				return
			}

			if int(count) > maxReqs {
				response.WithRequestLimitExceeded(w)

				return
			}

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(maxReqs))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, maxReqs-int(count))))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(windowSecs))

			next.ServeHTTP(w, r)
		})
	}
}
