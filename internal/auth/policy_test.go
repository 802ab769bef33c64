package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	userPrincipal  = &Principal{UserID: 1, Subject: "user@example.com", Role: RoleUser}
	adminPrincipal = &Principal{UserID: 2, Subject: "admin@example.com", Role: RoleAdmin}
)

func TestDefaultPolicy_Decide(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		method    string
		path      string
		principal *Principal
		want      Decision
	}{
		{http.MethodPost, "/api/auth/login", nil, Allow},
		{http.MethodPost, "/api/auth/register", nil, Allow},
		{http.MethodGet, "/health", nil, Allow},
		{http.MethodPost, "/health", nil, Unauthenticated},
		{http.MethodGet, "/v3/api-docs", nil, Allow},
		{http.MethodGet, "/swagger-ui/index.html", nil, Allow},
		{http.MethodGet, "/swagger-ui.html", nil, Allow},

		{http.MethodPost, "/api/rooms", nil, Unauthenticated},
		{http.MethodPost, "/api/rooms", userPrincipal, Forbidden},
		{http.MethodPost, "/api/rooms", adminPrincipal, Allow},
		{http.MethodPut, "/api/rooms/7", userPrincipal, Forbidden},
		{http.MethodDelete, "/api/rooms/7", adminPrincipal, Allow},
		{http.MethodGet, "/api/rooms", userPrincipal, Allow},
		{http.MethodGet, "/api/rooms", nil, Unauthenticated},

		{http.MethodPost, "/api/reservations", nil, Unauthenticated},
		{http.MethodPost, "/api/reservations", userPrincipal, Allow},
		{http.MethodGet, "/does/not/exist", nil, Unauthenticated},
		{http.MethodGet, "/api/roomsx", userPrincipal, Allow},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := p.Decide(RouteDescriptor{Method: tt.method, Path: tt.path}, tt.principal)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicy_PublicRoutesIgnorePrincipal(t *testing.T) {
	p := DefaultPolicy()
	route := RouteDescriptor{Method: http.MethodGet, Path: "/health"}
	for _, principal := range []*Principal{nil, userPrincipal, adminPrincipal} {
		assert.Equal(t, Allow, p.Decide(route, principal))
	}
}

func TestPolicy_RoleMonotonicity(t *testing.T) {
	p := DefaultPolicy()
	routes := []RouteDescriptor{
		{http.MethodPost, "/api/rooms"},
		{http.MethodGet, "/api/reservations"},
		{http.MethodDelete, "/api/reservations/3"},
	}
	for _, route := range routes {
		if p.Decide(route, userPrincipal) == Allow {
			assert.Equal(t, Allow, p.Decide(route, adminPrincipal), "%s %s", route.Method, route.Path)
		}
	}
}

func TestPolicy_FirstMatchWins(t *testing.T) {
	p, err := NewPolicy([]Rule{
		{Pattern: "/api/open", Requirement: Public},
		{Pattern: "/api/**", Requirement: RequireRole, Role: RoleAdmin},
		{Pattern: "/api/open", Requirement: RequireRole, Role: RoleAdmin},
	})
	require.NoError(t, err)

	assert.Equal(t, Allow, p.Decide(RouteDescriptor{http.MethodGet, "/api/open"}, nil))
	assert.Equal(t, Forbidden, p.Decide(RouteDescriptor{http.MethodGet, "/api/other"}, userPrincipal))
}

func TestPolicy_UnmatchedRouteRequiresAuthentication(t *testing.T) {
	p, err := NewPolicy([]Rule{{Pattern: "/only", Requirement: Public}})
	require.NoError(t, err)

	assert.Equal(t, Unauthenticated, p.Decide(RouteDescriptor{http.MethodGet, "/elsewhere"}, nil))
	assert.Equal(t, Allow, p.Decide(RouteDescriptor{http.MethodGet, "/elsewhere"}, userPrincipal))
}

func TestNewPolicy_RejectsInvalidRules(t *testing.T) {
	_, err := NewPolicy(nil)
	assert.Error(t, err)

	_, err = NewPolicy([]Rule{{Pattern: "api/**", Requirement: Public}})
	assert.Error(t, err)

	_, err = NewPolicy([]Rule{{Pattern: "/api/**", Requirement: RequireRole}})
	assert.Error(t, err)
}

func TestNewPolicy_CopiesRules(t *testing.T) {
	rules := []Rule{{Methods: []string{http.MethodGet}, Pattern: "/x", Requirement: Public}}
	p, err := NewPolicy(rules)
	require.NoError(t, err)

	rules[0].Requirement = RequireRole
	rules[0].Role = RoleAdmin
	assert.Equal(t, Allow, p.Decide(RouteDescriptor{http.MethodGet, "/x"}, nil))
}

func TestMatchPath(t *testing.T) {
	assert.True(t, matchPath("/api/rooms/**", "/api/rooms"))
	assert.True(t, matchPath("/api/rooms/**", "/api/rooms/1/photos"))
	assert.False(t, matchPath("/api/rooms/**", "/api/roomsx"))
	assert.True(t, matchPath("/**", "/anything"))
	assert.True(t, matchPath("/health", "/health"))
	assert.False(t, matchPath("/health", "/health/db"))
}

func TestLoadPolicy(t *testing.T) {
	doc := `
rules:
  - path: /api/auth/**
    access: public
  - methods: [POST]
    path: /api/rooms/**
    access: role
    role: admin
  - path: /**
    access: authenticated
`
	p, err := LoadPolicy(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, Allow, p.Decide(RouteDescriptor{http.MethodPost, "/api/auth/login"}, nil))
	assert.Equal(t, Forbidden, p.Decide(RouteDescriptor{http.MethodPost, "/api/rooms"}, userPrincipal))
	assert.Equal(t, Allow, p.Decide(RouteDescriptor{http.MethodPut, "/api/rooms/1"}, userPrincipal))
	assert.Equal(t, Unauthenticated, p.Decide(RouteDescriptor{http.MethodGet, "/api/reservations"}, nil))
}

func TestLoadPolicy_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown access": "rules:\n  - path: /x\n    access: sometimes\n",
		"unknown role":   "rules:\n  - path: /x\n    access: role\n    role: OWNER\n",
		"unknown field":  "rules:\n  - path: /x\n    acess: public\n",
		"no rules":       "rules: []\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadPolicy(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadPolicyFile_EmptyPathUsesDefault(t *testing.T) {
	p, err := LoadPolicyFile("")
	require.NoError(t, err)
	assert.Equal(t, Forbidden, p.Decide(RouteDescriptor{http.MethodDelete, "/api/rooms/1"}, userPrincipal))
}

func TestAuthorize_WritesEnvelopes(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Authorize(DefaultPolicy())(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reservations", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"path":"/api/reservations"`)

	req := httptest.NewRequest(http.MethodDelete, "/api/rooms/1", nil)
	req = req.WithContext(WithPrincipal(req.Context(), *userPrincipal))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"Forbidden"`)

	req = httptest.NewRequest(http.MethodDelete, "/api/rooms/1", nil)
	req = req.WithContext(WithPrincipal(req.Context(), *adminPrincipal))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestAuthorize_ResolveErrorIsInternal(t *testing.T) {
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})
	h := Authorize(DefaultPolicy())(next)
	withFailure := func(req *http.Request) *http.Request {
		return req.WithContext(context.WithValue(req.Context(), resolveErrKey{}, context.DeadlineExceeded))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withFailure(httptest.NewRequest(http.MethodGet, "/api/reservations", nil)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"Internal Server Error"`)
	assert.Contains(t, rec.Body.String(), `"message":"Internal server error"`)
	assert.False(t, called)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withFailure(httptest.NewRequest(http.MethodGet, "/health", nil)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, called)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "forbidden", Forbidden.String())
}
