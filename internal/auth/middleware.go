package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of this type, so nothing else can read
// or overwrite the principal stored under it.
type contextKey string

const principalKey contextKey = "principal"

// unauthenticatedMessage is the only thing a client learns about why a
// credential was rejected.
const unauthenticatedMessage = "valid authentication required"

// Guard is the single choke point between an inbound credential and every
// privileged operation. It has no side effects besides debug logging.
type Guard struct {
	tokens *TokenService
	logger *slog.Logger
}

// NewGuard creates a Guard that verifies tokens with the given service.
func NewGuard(tokens *TokenService, logger *slog.Logger) *Guard {
	return &Guard{tokens: tokens, logger: logger}
}

// Authenticate turns the raw value of an Authorization header into a
// Principal.
//
// Missing header, wrong scheme, bad signature and expiry all produce the same
// apperror.ErrUnauthenticated. The specific reason only goes to the debug log.
func (g *Guard) Authenticate(rawHeader string) (*model.Principal, error) {
	token, ok := bearerToken(rawHeader)
	if !ok {
		g.logger.Debug("authentication rejected", slog.String("reason", "missing or malformed bearer header"))
		return nil, apperror.Unauthenticated(unauthenticatedMessage)
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		g.logger.Debug("authentication rejected", slog.String("reason", err.Error()))
		return nil, apperror.Unauthenticated(unauthenticatedMessage)
	}

	p := claims.Principal()
	return &p, nil
}

// Require is a middleware that enforces authentication on protected routes.
//
// It reads "Authorization: Bearer <token>", runs Authenticate and stores the
// principal in the request context. On failure it answers 401 and the
// wrapped handler never runs.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := g.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthenticated","message":"` + unauthenticatedMessage + `"}` + "\n"))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), *p)))
	})
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the authenticated principal.
//
// Returns (zero, false) if no Guard ran for this request.
//
//	p, ok := auth.PrincipalFromContext(r.Context())
//	if !ok {
//	    // anonymous
//	}
func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey).(model.Principal)
	return p, ok && p.ID != ""
}

// bearerToken extracts the token from "Bearer <token>". The scheme is
// matched case-insensitively; the token itself must be non-empty.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
