package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"restau/internal/access"
	"restau/internal/domain"
)

func TestHasBlanketAccess(t *testing.T) {
	assert.True(t, access.HasBlanketAccess(domain.RoleDev))
	assert.True(t, access.HasBlanketAccess(domain.RoleAdmin))
	assert.False(t, access.HasBlanketAccess(domain.RoleManager))
	assert.False(t, access.HasBlanketAccess(domain.RoleReadonly))
}

func TestVisible(t *testing.T) {
	admin := &domain.Principal{Role: domain.RoleAdmin}
	assert.Equal(t, domain.Scope{All: true}, access.Visible(admin))

	manager := &domain.Principal{Role: domain.RoleManager, RestaurantCodes: []string{"ab12", "AB12", " cd34 ", ""}}
	scope := access.Visible(manager)
	assert.False(t, scope.All)
	assert.Equal(t, []string{"AB12", "CD34"}, scope.Codes)
	assert.True(t, scope.Allows("AB12"))
	assert.False(t, scope.Allows("ZZ99"))

	empty := access.Visible(&domain.Principal{Role: domain.RoleReadonly})
	assert.True(t, empty.Empty())
	assert.False(t, empty.All)
	assert.False(t, empty.Allows("AB12"))

	assert.True(t, access.Visible(nil).Empty())
}

func TestCanAccessReport(t *testing.T) {
	p := &domain.Principal{Role: domain.RoleReadonly, RestaurantCodes: []string{"AB12"}}
	assert.True(t, access.CanAccessReport(p, "AB12"))
	assert.False(t, access.CanAccessReport(p, "CD34"))
	assert.True(t, access.CanAccessReport(&domain.Principal{Role: domain.RoleDev}, "CD34"))
}

func TestRoleSatisfies(t *testing.T) {
	assert.True(t, access.RoleSatisfies(domain.RoleDev, domain.RoleAdmin))
	assert.True(t, access.RoleSatisfies(domain.RoleManager, domain.RoleManager, domain.RoleAdmin))
	assert.False(t, access.RoleSatisfies(domain.RoleReadonly, domain.RoleManager, domain.RoleAdmin))
	assert.False(t, access.RoleSatisfies(domain.RoleAdmin))
}
