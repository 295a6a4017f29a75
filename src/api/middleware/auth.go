package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"inventory/src/models"
	"inventory/src/utils"

	"github.com/go-chi/jwtauth"
)

type TokenVerifier interface {
	Verify(token string) (models.Actor, error)
}

type actorKey struct{}

func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the zero Actor for anonymous requests.
func ActorFromContext(ctx context.Context) models.Actor {
	actor, _ := ctx.Value(actorKey{}).(models.Actor)
	return actor
}

// Authenticator rejects requests without a valid bearer token and stores the
// verified actor in the request context.
func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := jwtauth.TokenFromHeader(r)
			if token == "" {
				unauthorized(w, "missing bearer token")
				return
			}
			actor, err := verifier.Verify(token)
			if err != nil {
				utils.LoggerFromContext(r.Context()).WithError(err).Debug("token rejected")
				unauthorized(w, "invalid bearer token")
				return
			}

			ctx := WithActor(r.Context(), actor)
			ctx = utils.WithLogger(ctx, utils.LoggerFromContext(ctx).WithField("actor", actor.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
