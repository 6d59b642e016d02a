package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fintrackr/backend/internal/store"
)

// TokenHeader is the custom header carrying the session token on every
// authenticated request.
const TokenHeader = "X-Auth-Token"

// Middleware validates the session token on each request and resolves it to
// a user record before handlers run. Requests fail with 401 when the header
// is absent, the token does not verify, or the token's user no longer
// exists (deleted after issuance).
func Middleware(issuer *TokenIssuer, users store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)
			if token == "" {
				writeUnauthorized(w, "no token, authorization denied")
				return
			}

			userID, err := issuer.Verify(token)
			if err != nil {
				writeUnauthorized(w, "token is not valid")
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeUnauthorized(w, "user not found")
					return
				}
				log.Printf("[Auth] failed to resolve user %s: %v", userID, err)
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			claims := &UserClaims{
				UserID: user.ID,
				Email:  user.Email,
				Name:   user.Name,
			}
			next.ServeHTTP(w, r.WithContext(withUserClaims(r.Context(), claims)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusUnauthorized, message)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
