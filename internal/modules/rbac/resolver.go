package rbac

import (
	"strings"
	"sync"

	"github.com/chyrplite/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// groupNames maps tiers to the display names of the persisted group rows.
var groupNames = map[Tier]string{
	TierAdmin:  "Admin",
	TierMember: "Member",
	TierFriend: "Friend",
	TierBanned: "Banned",
	TierGuest:  "Guest",
}

var groupDescriptions = map[Tier]string{
	TierAdmin:  "Full administrative access to all features",
	TierMember: "Regular registered users with standard permissions",
	TierFriend: "Trusted users with additional privileges",
	TierBanned: "Users who have been banned from the platform",
	TierGuest:  "Anonymous or unregistered users with limited access",
}

// Grant is the resolved identity of a caller: its tier and capability set.
type Grant struct {
	UserID string
	Tier   Tier
	Perms  PermissionSet
}

func (g Grant) IsAnonymous() bool { return g.UserID == "" }

func (g Grant) Can(name string) bool { return g.Perms.Has(name) }

// Resolver maps callers to grants using the static catalogue, re-validated
// against the persisted groups and permissions tables at startup.
type Resolver struct {
	db  *gorm.DB
	log *zap.Logger

	mu             sync.RWMutex
	tiersByGroupID map[string]Tier
	groupIDsByTier map[Tier]string
}

func NewResolver(db *gorm.DB, log *zap.Logger) *Resolver {
	return &Resolver{
		db:             db,
		log:            log,
		tiersByGroupID: map[string]Tier{},
		groupIDsByTier: map[Tier]string{},
	}
}

// Load seeds missing group and permission rows, verifies the persisted
// catalogue against the static one, and caches the group id mapping.
// Called once at startup.
func (r *Resolver) Load() error {
	byID := map[string]Tier{}
	byTier := map[Tier]string{}

	for tier, name := range groupNames {
		group := models.GroupModel{Name: name, Description: groupDescriptions[tier]}
		err := r.db.Where("name = ?", name).FirstOrCreate(&group).Error
		if err != nil {
			return err
		}
		byID[group.ID] = tier
		byTier[tier] = group.ID

		if err := r.syncPermissions(group.ID, tier); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.tiersByGroupID = byID
	r.groupIDsByTier = byTier
	r.mu.Unlock()
	return nil
}

// syncPermissions inserts missing permission rows for a group and logs any
// persisted rows the static catalogue does not recognize. Drift is reported,
// never adopted: the static catalogue is authoritative.
func (r *Resolver) syncPermissions(groupID string, tier Tier) error {
	expected := PermissionsForTier(tier)

	var rows []models.PermissionModel
	if err := r.db.Where("group_id = ?", groupID).Find(&rows).Error; err != nil {
		return err
	}
	present := NewPermissionSet()
	for _, row := range rows {
		present[row.Name] = struct{}{}
		if !expected.Has(row.Name) {
			r.log.Warn("permission row not in catalogue, ignoring",
				zap.String("group", string(tier)),
				zap.String("permission", row.Name),
			)
		}
	}

	for _, name := range expected.Names() {
		if present.Has(name) {
			continue
		}
		row := models.PermissionModel{GroupID: groupID, Name: name}
		if err := r.db.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// Resolve maps a caller to its grant. Anonymous callers and users with an
// unknown group resolve to Guest, never to Admin.
func (r *Resolver) Resolve(user *models.UserModel) Grant {
	if user == nil {
		return Grant{Tier: TierGuest, Perms: PermissionsForTier(TierGuest)}
	}

	r.mu.RLock()
	tier, ok := r.tiersByGroupID[user.GroupID]
	r.mu.RUnlock()
	if !ok {
		r.log.Warn("unknown group id, resolving as guest",
			zap.String("user_id", user.ID),
			zap.String("group_id", user.GroupID),
		)
		tier = TierGuest
	}
	return Grant{UserID: user.ID, Tier: tier, Perms: PermissionsForTier(tier)}
}

// GrantForTier returns a grant for a bare tier with no user attached.
func (r *Resolver) GrantForTier(tier Tier) Grant {
	return Grant{Tier: tier, Perms: PermissionsForTier(tier)}
}

// GroupID returns the persisted group row id for a tier.
func (r *Resolver) GroupID(tier Tier) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.groupIDsByTier[tier]
	return id, ok
}

// TierForRole maps a role query value to a tier. The legacy aliases editor
// and contributor are kept for older admin clients.
func TierForRole(role string) (Tier, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "admin":
		return TierAdmin, true
	case "member", "editor":
		return TierMember, true
	case "friend", "contributor":
		return TierFriend, true
	case "banned":
		return TierBanned, true
	case "guest":
		return TierGuest, true
	}
	return "", false
}
