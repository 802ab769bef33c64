package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

const bearerPrefix = "Bearer "

// ErrPrincipalNotFound is returned by a resolver when the subject of a valid
// token no longer maps to a user.
var ErrPrincipalNotFound = errors.New("principal not found")

// TokenVerifier verifies a raw token and returns its subject.
type TokenVerifier interface {
	Verify(token string, now time.Time) (string, error)
}

// PrincipalResolver maps a verified subject to a principal. It may block on I/O.
type PrincipalResolver interface {
	Resolve(ctx context.Context, subject string) (Principal, error)
}

// Authenticate attaches a principal to the request context when the request
// carries a valid bearer token for a known user. It never rejects a request.
// Token failures and unknown subjects continue without a principal; any other
// resolver failure is recorded in the context and reported by Authorize.
func Authenticate(verifier TokenVerifier, resolver PrincipalResolver, now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			subject, err := verifier.Verify(token, now())
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := resolver.Resolve(r.Context(), subject)
			if errors.Is(err, ErrPrincipalNotFound) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), resolveErrKey{}, err)))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

type resolveErrKey struct{}

// ResolveErrorFromContext returns the resolver failure recorded by
// Authenticate, or nil.
func ResolveErrorFromContext(ctx context.Context) error {
	err, _ := ctx.Value(resolveErrKey{}).(error)
	return err
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return token, token != ""
}
