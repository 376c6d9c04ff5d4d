package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// FormField carries the api key of html form posts
const FormField = "key"

type Auth struct {
	apiKey string
}

func New(apiKey string) *Auth {
	return &Auth{apiKey: apiKey}
}

func (a *Auth) Enabled() bool {
	return a.apiKey != ""
}

// AuthMiddleware is a middleware that checks for a valid API key on requests that change state.
// Reads stay open. Without a configured key every request passes.
func (a *Auth) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get("Authorization")
		apiKey = strings.TrimPrefix(apiKey, "Bearer ")
		if apiKey == "" {
			apiKey = r.URL.Query().Get(FormField)
		}
		if apiKey == "" && !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			apiKey = r.PostFormValue(FormField)
		}

		if apiKey == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(a.apiKey)) != 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
