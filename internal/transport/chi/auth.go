package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyHeader carries a gateway key as an alternative to a Bearer token.
const APIKeyHeader = "X-API-Key"

// publicRoutes answer without a key when called with GET.
var publicRoutes = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// APIKeyAuth returns a middleware that admits requests presenting one of
// keys, either as "Authorization: Bearer <key>" or in the X-API-Key header.
// With no non-empty key configured every request is admitted.
func APIKeyAuth(keys []string) func(http.Handler) http.Handler {
	var accepted [][]byte
	for _, k := range keys {
		if k != "" {
			accepted = append(accepted, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(accepted) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicRoutes[r.URL.Path]; ok && r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key, reason := presentedKey(r)
			if reason == "" && !keyAccepted(accepted, key) {
				reason = "invalid api key"
			}
			if reason != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="indexflow"`)
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, reason)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// presentedKey extracts the key from the request. A non-empty reason means
// the request carries no usable key.
func presentedKey(r *http.Request) (key, reason string) {
	if k := r.Header.Get(APIKeyHeader); k != "" {
		return k, ""
	}
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing api key"
	}
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", "authorization header must use Bearer scheme"
	}
	return token, ""
}

// keyAccepted compares key against every accepted key in constant time.
func keyAccepted(accepted [][]byte, key string) bool {
	presented := []byte(key)
	match := 0
	for _, k := range accepted {
		match |= subtle.ConstantTimeCompare(k, presented)
	}
	return match == 1
}
