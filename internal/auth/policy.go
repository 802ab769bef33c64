package auth

import (
	"fmt"
	"net/http"
	"strings"

	"reservaja/internal/apperror"
)

// Requirement is what a rule demands from the caller.
type Requirement int

const (
	Public Requirement = iota
	AuthenticatedAny
	RequireRole
)

// Decision is the outcome of evaluating a route against the policy.
type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// RouteDescriptor identifies the route being requested.
type RouteDescriptor struct {
	Method string
	Path   string
}

// Rule matches a set of methods and a path pattern. An empty Methods list
// matches every method. Pattern is either an exact path or a prefix ending in
// "/**", which matches the prefix itself and everything below it.
type Rule struct {
	Methods     []string
	Pattern     string
	Requirement Requirement
	Role        Role
}

func (r Rule) matches(route RouteDescriptor) bool {
	if len(r.Methods) > 0 {
		found := false
		for _, m := range r.Methods {
			if m == "*" || strings.EqualFold(m, route.Method) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return matchPath(r.Pattern, route.Path)
}

func matchPath(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		if prefix == "" {
			return true
		}
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == pattern
}

// Policy is an ordered, first-match rule table. It is built once at startup
// and never modified.
type Policy struct {
	rules []Rule
}

// NewPolicy validates rules and returns a policy that evaluates them in order.
func NewPolicy(rules []Rule) (*Policy, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("policy needs at least one rule")
	}
	copied := make([]Rule, len(rules))
	for i, r := range rules {
		if !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("rule %d: pattern %q must start with /", i, r.Pattern)
		}
		if r.Requirement == RequireRole && r.Role != RoleUser && r.Role != RoleAdmin {
			return nil, fmt.Errorf("rule %d: role requirement without a valid role", i)
		}
		r.Methods = append([]string(nil), r.Methods...)
		copied[i] = r
	}
	return &Policy{rules: copied}, nil
}

// DefaultRules is the built-in route table.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "/api/auth/**", Requirement: Public},
		{Methods: []string{http.MethodGet}, Pattern: "/health", Requirement: Public},
		{Pattern: "/v3/api-docs/**", Requirement: Public},
		{Pattern: "/swagger-ui/**", Requirement: Public},
		{Methods: []string{http.MethodGet}, Pattern: "/swagger-ui.html", Requirement: Public},
		{Methods: []string{http.MethodPost, http.MethodPut, http.MethodDelete}, Pattern: "/api/rooms/**", Requirement: RequireRole, Role: RoleAdmin},
		{Pattern: "/**", Requirement: AuthenticatedAny},
	}
}

// DefaultPolicy returns the policy built from DefaultRules.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(DefaultRules())
	if err != nil {
		panic(err)
	}
	return p
}

// Decide evaluates the first matching rule. Routes matched by no rule require
// an authenticated caller.
func (p *Policy) Decide(route RouteDescriptor, principal *Principal) Decision {
	requirement, role := AuthenticatedAny, Role("")
	for _, r := range p.rules {
		if r.matches(route) {
			requirement, role = r.Requirement, r.Role
			break
		}
	}

	switch requirement {
	case Public:
		return Allow
	case RequireRole:
		if principal == nil {
			return Unauthenticated
		}
		if principal.Role != role {
			return Forbidden
		}
		return Allow
	default:
		if principal == nil {
			return Unauthenticated
		}
		return Allow
	}
}

// Authorize rejects requests the policy does not allow. It must run after
// Authenticate and before any handler. A resolver failure recorded by
// Authenticate ends any non-public request as an internal error.
func Authorize(policy *Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := RouteDescriptor{Method: r.Method, Path: r.URL.Path}
			var principal *Principal
			if p, ok := PrincipalFromContext(r.Context()); ok {
				principal = &p
			}
			decision := policy.Decide(route, principal)
			if err := ResolveErrorFromContext(r.Context()); err != nil && decision != Allow {
				apperror.Write(w, r, fmt.Errorf("resolve principal: %w", err))
				return
			}

			switch decision {
			case Unauthenticated:
				apperror.Write(w, r, apperror.Unauthenticated("Authentication is required to access this resource"))
			case Forbidden:
				apperror.Write(w, r, apperror.Forbidden("Access denied"))
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
