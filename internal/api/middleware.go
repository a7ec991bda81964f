// Package api implements the diary REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/starford/diary/internal/account"
)

// Auth modes.
const (
	AuthDisabled = "disabled"
	AuthToken    = "token"
	AuthPassword = "password"
)

// Auth selects how protected routes are authenticated.
type Auth struct {
	Mode  string
	Token string
}

// AuthMiddleware returns middleware that enforces auth.
//   - disabled: all requests pass through.
//   - token: requests must carry "Authorization: Bearer <token>".
//   - password: requests must carry HTTP Basic credentials matching the
//     account. Before the account is set up every request gets 403.
func AuthMiddleware(auth Auth, sess *account.Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch auth.Mode {
			case AuthToken:
				given, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
				if !ok || subtle.ConstantTimeCompare([]byte(given), []byte(auth.Token)) != 1 {
					writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
					return
				}
			case AuthPassword:
				if sess == nil || sess.FirstLaunch() {
					writeJSON(w, http.StatusForbidden, errorBody("account not set up"))
					return
				}
				user, pass, ok := r.BasicAuth()
				if !ok || !sess.Verify(user, pass) {
					w.Header().Set("WWW-Authenticate", `Basic realm="diary"`)
					writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
