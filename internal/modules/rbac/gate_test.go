package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chyrplite/core/internal/models"
)

func grantFor(tier Tier) Grant {
	return Grant{UserID: "u1", Tier: tier, Perms: PermissionsForTier(tier)}
}

func TestMeets(t *testing.T) {
	tests := []struct {
		tier  Tier
		floor Tier
		want  bool
	}{
		{TierGuest, TierGuest, true},
		{TierGuest, TierMember, false},
		{TierMember, TierGuest, true},
		{TierMember, TierFriend, false},
		{TierFriend, TierMember, true},
		{TierAdmin, TierFriend, true},
		{TierAdmin, TierAdmin, true},
		// banned is outside the ladder in both directions
		{TierBanned, TierGuest, false},
		{TierBanned, TierBanned, true},
		{TierAdmin, TierBanned, false},
		// empty floor is always met
		{TierGuest, "", true},
		{TierBanned, "", true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.tier.Meets(tc.floor), "%s meets %s", tc.tier, tc.floor)
	}
}

func TestDecideCapability(t *testing.T) {
	admin := grantFor(TierAdmin)
	member := grantFor(TierMember)
	guest := grantFor(TierGuest)

	assert.Equal(t, Editable, Decide(admin, Check{Capability: PermEditPosts}))
	assert.Equal(t, Visible, Decide(admin, Check{Capability: PermViewDrafts}))
	assert.Equal(t, Denied, Decide(member, Check{Capability: PermEditPosts}))
	assert.Equal(t, Denied, Decide(guest, Check{Capability: PermAddPosts}))
}

func TestDecideOwnVariantFallback(t *testing.T) {
	member := grantFor(TierMember)

	// Members lack "Edit Posts" but hold "Edit Own Posts"; ownership unlocks it.
	assert.Equal(t, Denied, Decide(member, Check{Capability: PermEditPosts}))
	assert.Equal(t, Editable, Decide(member, Check{Capability: PermEditPosts, OwnerMatch: true}))
	assert.Equal(t, Editable, Decide(member, Check{Capability: PermDeletePosts, OwnerMatch: true}))
	assert.Equal(t, Visible, Decide(member, Check{Capability: PermViewDrafts, OwnerMatch: true}))
}

func TestDecideFloor(t *testing.T) {
	guest := grantFor(TierGuest)
	friend := grantFor(TierFriend)

	assert.Equal(t, Denied, Decide(guest, Check{Floor: TierFriend}))
	assert.Equal(t, Visible, Decide(friend, Check{Floor: TierFriend}))
	// Ownership overrides the floor.
	assert.Equal(t, Visible, Decide(guest, Check{Floor: TierFriend, OwnerMatch: true}))
}

func TestDecideSensitive(t *testing.T) {
	admin := grantFor(TierAdmin)
	member := grantFor(TierMember)

	assert.Equal(t, Visible, Decide(admin, Check{Sensitive: true}))
	assert.Equal(t, Denied, Decide(member, Check{Sensitive: true}))
}

func TestDecideUnknownCapability(t *testing.T) {
	admin := grantFor(TierAdmin)
	assert.Equal(t, Denied, Decide(admin, Check{Capability: "Reticulate Splines"}))
}

func TestDecideBanned(t *testing.T) {
	banned := grantFor(TierBanned)
	assert.Equal(t, Denied, Decide(banned, Check{Capability: PermViewSite}))
	assert.Equal(t, Denied, Decide(banned, Check{Floor: TierGuest}))
}

func TestFloorForStatus(t *testing.T) {
	assert.Equal(t, TierFriend, FloorForStatus(models.StatusFriend))
	assert.Equal(t, TierAdmin, FloorForStatus(models.StatusAdmin))
	assert.Equal(t, Tier(""), FloorForStatus(models.StatusPublic))
	assert.Equal(t, Tier(""), FloorForStatus(models.StatusDraft))
}

func TestTierForRoleAliases(t *testing.T) {
	tests := []struct {
		role string
		want Tier
		ok   bool
	}{
		{"admin", TierAdmin, true},
		{"member", TierMember, true},
		{"editor", TierMember, true},
		{"contributor", TierFriend, true},
		{"friend", TierFriend, true},
		{"banned", TierBanned, true},
		{"guest", TierGuest, true},
		{"superuser", "", false},
	}
	for _, tc := range tests {
		got, ok := TierForRole(tc.role)
		assert.Equal(t, tc.ok, ok, tc.role)
		if ok {
			assert.Equal(t, tc.want, got, tc.role)
		}
	}
}

func TestTierPermissionSets(t *testing.T) {
	guest := PermissionsForTier(TierGuest)
	assert.True(t, guest.Has(PermViewSite))
	assert.Len(t, guest.Names(), 1)

	assert.Empty(t, PermissionsForTier(TierBanned).Names())

	member := PermissionsForTier(TierMember)
	assert.True(t, member.Has(PermAddPosts))
	assert.True(t, member.Has(PermEditOwnPosts))
	assert.False(t, member.Has(PermEditPosts))
	assert.False(t, member.Has(PermViewPrivatePosts))

	friend := PermissionsForTier(TierFriend)
	assert.True(t, friend.Has(PermViewPrivatePosts))
	assert.True(t, friend.Has(PermAddCommentsToPrivate))

	// Every admin permission appears in the catalogue.
	for _, name := range PermissionsForTier(TierAdmin).Names() {
		_, known := Lookup(name)
		assert.True(t, known, name)
	}
}
