package httpmiddleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

// APIKeyLookup resolves a hashed API key to its stored hash. It returns an
// error when no key matches.
type APIKeyLookup interface {
	FindHash(ctx context.Context, hash string) (string, error)
}

// APIKeyAuth returns a middleware that authenticates requests via
// HMAC-SHA256 hashed API keys carried in the api_key header. The stored
// hash is compared in constant time.
func APIKeyAuth(lookup APIKeyLookup, pepper []byte) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("api_key")
			if key == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			mac := hmac.New(sha256.New, pepper)
			mac.Write([]byte(key))
			hash := mac.Sum(nil)

			stored, err := lookup.FindHash(r.Context(), hex.EncodeToString(hash))
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			storedBytes, err := hex.DecodeString(stored)
			if err != nil || subtle.ConstantTimeCompare(hash, storedBytes) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
