package rbac

import "github.com/chyrplite/core/internal/models"

// Decision is the outcome of a visibility check.
type Decision int

const (
	Denied Decision = iota
	Visible
	Editable
)

// Check describes one access decision. Zero fields are skipped: an empty
// Floor means no floor applies, an empty Capability means floor-only.
type Check struct {
	// Sensitive marks a settings key on the sensitive list. Reading or
	// writing one requires "Change Settings" regardless of anything else.
	Sensitive bool
	// Floor is the minimum tier required to see the resource.
	Floor Tier
	// Capability is the permission display name required for the operation.
	Capability string
	// OwnerMatch reports whether the caller owns the resource, enabling the
	// own-variant fallback when the global capability is absent.
	OwnerMatch bool
}

// Decide evaluates the rules in order: sensitive-key check, status-floor
// check, then the capability check with own-variant fallback.
func Decide(g Grant, chk Check) Decision {
	if chk.Sensitive && !g.Can(PermChangeSettings) {
		return Denied
	}
	if chk.Floor != "" && !g.Tier.Meets(chk.Floor) && !chk.OwnerMatch {
		return Denied
	}
	if chk.Capability == "" {
		return Visible
	}

	cap, known := Lookup(chk.Capability)
	if !known {
		return Denied
	}
	if g.Can(chk.Capability) {
		return decisionFor(cap)
	}
	if own, ok := OwnVariant(chk.Capability); ok && chk.OwnerMatch && g.Can(own) {
		return decisionFor(cap)
	}
	return Denied
}

func decisionFor(cap Capability) Decision {
	if cap.Action == "View" {
		return Visible
	}
	return Editable
}

// FloorForStatus maps a post status to the tier floor it demands. Lifecycle
// statuses carry no floor here; draft, private and scheduled visibility is
// capability-gated by the caller instead.
func FloorForStatus(status models.PostStatus) Tier {
	switch status {
	case models.StatusAdmin:
		return TierAdmin
	case models.StatusFriend:
		return TierFriend
	case models.StatusMember:
		return TierMember
	case models.StatusGuest:
		return TierGuest
	case models.StatusBanned:
		return TierBanned
	}
	return ""
}
