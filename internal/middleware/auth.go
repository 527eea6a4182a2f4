package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/model"
)

// SessionLookup resolves a session token to the user id it belongs to.
// Implemented by sessions.Store.
type SessionLookup interface {
	Lookup(ctx context.Context, token string) (string, error)
}

// SessionAuthConfig holds configuration for the session auth middleware.
type SessionAuthConfig struct {
	Logger     *slog.Logger
	Sessions   SessionLookup
	Secret     string
	CookieName string
}

// SessionAuth returns a middleware that authenticates requests via the
// session cookie. It verifies the cookie's signature, resolves the token
// to a user id in the session store, and injects the identity into the
// request context. All failures produce the same 401 so a client cannot
// distinguish a missing cookie from a forged or expired one.
func SessionAuth(cfg SessionAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "missing_cookie")
				writeAuthError(w)
				return
			}

			token, err := auth.VerifySessionCookie(cookie.Value, cfg.Secret)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "invalid_signature")
				writeAuthError(w)
				return
			}

			userID, err := cfg.Sessions.Lookup(r.Context(), token)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "unknown_session")
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithIdentity(r.Context(), &model.Identity{
				UserID:       userID,
				SessionToken: token,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent probing.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"error":{"code":"UNAUTHORIZED","message":"Authentication required"}}`))
}
