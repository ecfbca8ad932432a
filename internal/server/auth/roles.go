package auth

import (
	"fmt"
	"slices"
	"strings"
)

// Role is a coarse permission label carried in session tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole accepts only the known roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }

// Policy is the set of roles allowed on a protected route. It is immutable
// once built. The zero Policy permits nobody.
type Policy struct {
	roles map[Role]struct{}
}

// Allow builds a Policy from at least one role.
func Allow(first Role, rest ...Role) Policy {
	roles := make(map[Role]struct{}, 1+len(rest))
	roles[first] = struct{}{}
	for _, r := range rest {
		roles[r] = struct{}{}
	}
	return Policy{roles: roles}
}

// Permits reports whether r is in the policy.
func (p Policy) Permits(r Role) bool {
	_, ok := p.roles[r]
	return ok
}

// Roles returns the allowed roles, sorted.
func (p Policy) Roles() []Role {
	out := make([]Role, 0, len(p.roles))
	for r := range p.roles {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

func (p Policy) String() string {
	if len(p.roles) == 0 {
		return "deny-all"
	}
	names := make([]string, 0, len(p.roles))
	for _, r := range p.Roles() {
		names = append(names, string(r))
	}
	return strings.Join(names, "|")
}

// Common route policies.
var (
	AdminOnly     = Allow(RoleAdmin)
	Authenticated = Allow(RoleUser, RoleAdmin)
)
