// Package access decides which restaurants a principal may see.
package access

import (
	"strings"

	"restau/internal/domain"
)

// HasBlanketAccess reports whether role sees every restaurant.
func HasBlanketAccess(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleDev
}

// Visible returns the principal's restaurant scope. Restricted roles get a
// copy of their assigned codes, possibly empty.
func Visible(p *domain.Principal) domain.Scope {
	if p == nil {
		return domain.Scope{}
	}
	if HasBlanketAccess(p.Role) {
		return domain.Scope{All: true}
	}
	codes := make([]string, 0, len(p.RestaurantCodes))
	seen := make(map[string]struct{}, len(p.RestaurantCodes))
	for _, c := range p.RestaurantCodes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		codes = append(codes, c)
	}
	return domain.Scope{Codes: codes}
}

// CanAccessReport reports whether the principal may read or change a report
// of the given restaurant.
func CanAccessReport(p *domain.Principal, restaurantCode string) bool {
	return Visible(p).Allows(restaurantCode)
}

// RoleSatisfies reports whether role is one of allowed. DEV satisfies any
// requirement.
func RoleSatisfies(role domain.Role, allowed ...domain.Role) bool {
	if role == domain.RoleDev {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
