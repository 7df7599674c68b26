package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"loanlook/internal/domain"

	"github.com/rs/zerolog"
)

type ctxKey string

const UserIDKey ctxKey = "userID"

type TokenFinder interface {
	FindTokenByPlainToken(ctx context.Context, plainToken string) (*domain.PersonalAccessToken, error)
}

// PlainToken extracts a bearer token from the Authorization header, falling
// back to the "token" query parameter used by websocket clients.
func PlainToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); t != "" {
			return t
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// Authenticate resolves the token to a user id.
func Authenticate(ctx context.Context, tokens TokenFinder, plain string, now time.Time) (int64, error) {
	if plain == "" {
		return 0, errors.New("missing token")
	}
	pat, err := tokens.FindTokenByPlainToken(ctx, plain)
	if err != nil {
		return 0, err
	}
	if pat.Expired(now) {
		return 0, errors.New("token expired")
	}
	return pat.UserID, nil
}

func TokenMiddleware(tokens TokenFinder, log zerolog.Logger) func(http.Handler) http.Handler {
	log = log.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := Authenticate(r.Context(), tokens, PlainToken(r), time.Now())
			if err != nil {
				log.Debug().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("unauthorized")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserID(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	if !ok {
		return 0, errors.New("userID not found in context")
	}
	return userID, nil
}
