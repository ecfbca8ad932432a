package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/upeosoft/cms/internal/common"
	"github.com/upeosoft/cms/internal/logging"
	"github.com/upeosoft/cms/internal/server/auth"
)

// TokenVerifier turns a bearer token into a Principal.
type TokenVerifier interface {
	Verify(token string) (auth.Principal, error)
}

// Guard authenticates bearer tokens and enforces route policies. A rejected
// request never reaches the wrapped handler.
type Guard struct {
	tokens TokenVerifier
	log    logging.Logger
}

func NewGuard(tokens TokenVerifier, log logging.Logger) *Guard {
	return &Guard{tokens: tokens, log: log.With("component", "guard")}
}

// Authenticate verifies the bearer token and stores the Principal on the
// request context.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			g.reject(w, r, &auth.Error{Kind: auth.KindMissingToken, Err: auth.ErrMissingToken})
			return
		}

		p, err := g.tokens.Verify(token)
		if err != nil {
			var ae *auth.Error
			if !errors.As(err, &ae) {
				ae = &auth.Error{Kind: auth.KindInvalidSignature, Err: err}
			}
			g.reject(w, r, ae)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

// Authorize admits only principals whose role is in policy. It expects
// Authenticate to have run; without a principal the request is treated as
// unauthenticated.
func (g *Guard) Authorize(policy auth.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				g.reject(w, r, &auth.Error{Kind: auth.KindMissingToken, Err: auth.ErrMissingToken})
				return
			}
			if !policy.Permits(p.Role) {
				g.reject(w, r, &auth.Error{Kind: auth.KindForbidden, Err: auth.ErrForbidden})
				return
			}
			g.log.Debug(r.Context(), "request authorized",
				"method", r.Method, "path", r.URL.Path, "user_id", p.SubjectID, "role", p.Role)
			next.ServeHTTP(w, r)
		})
	}
}

// Require is Authenticate followed by Authorize(policy).
func (g *Guard) Require(policy auth.Policy) func(http.Handler) http.Handler {
	authorize := g.Authorize(policy)
	return func(next http.Handler) http.Handler {
		return g.Authenticate(authorize(next))
	}
}

func (g *Guard) reject(w http.ResponseWriter, r *http.Request, e *auth.Error) {
	attrs := []any{"kind", e.Kind.String(), "method", r.Method, "path", r.URL.Path, "error", e.Err}
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		attrs = append(attrs, "user_id", p.SubjectID, "role", p.Role)
	}
	g.log.Warn(r.Context(), "request rejected", attrs...)

	switch e.Kind {
	case auth.KindMissingToken, auth.KindInvalidSignature, auth.KindExpired:
		writeError(w, http.StatusUnauthorized, "not authorized")
	case auth.KindForbidden:
		writeError(w, http.StatusForbidden, "insufficient permissions")
	default:
		writeError(w, http.StatusUnauthorized, "not authorized")
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get(common.AuthorizationHeaderName))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// principal returns the authenticated caller. Handlers mounted behind
// Require can rely on it being present.
func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}
