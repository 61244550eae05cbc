package rbac

import "sort"

// Tier is the ordered visibility tier a caller resolves to. Banned sits
// outside the order and satisfies no floor except its own.
type Tier string

const (
	TierGuest  Tier = "guest"
	TierMember Tier = "member"
	TierFriend Tier = "friend"
	TierAdmin  Tier = "admin"
	TierBanned Tier = "banned"
)

var tierRank = map[Tier]int{
	TierGuest:  0,
	TierMember: 1,
	TierFriend: 2,
	TierAdmin:  3,
}

// Meets reports whether the tier satisfies the given visibility floor.
// An empty floor is satisfied by everyone. Unknown tiers rank as guest.
func (t Tier) Meets(floor Tier) bool {
	if floor == "" {
		return true
	}
	if t == TierBanned || floor == TierBanned {
		return t == floor
	}
	return tierRank[t] >= tierRank[floor]
}

// Capability is the tagged form of a permission display name. Checks resolve
// display names through the catalogue table instead of parsing strings.
type Capability struct {
	Action   string
	Resource string
	OwnOnly  bool
}

// Permission display names referenced from code. The full catalogue below
// also carries names only exposed through the permissions listing.
const (
	PermAddComments          = "Add Comments"
	PermAddCommentsToPrivate = "Add Comments to Private Posts"
	PermAddDrafts            = "Add Drafts"
	PermAddPosts             = "Add Posts"
	PermAddUploads           = "Add Uploads"
	PermChangeSettings       = "Change Settings"
	PermDeleteComments       = "Delete Comments"
	PermDeleteOwnComments    = "Delete Own Comments"
	PermDeleteOwnPosts       = "Delete Own Posts"
	PermDeletePosts          = "Delete Posts"
	PermDeleteUploads        = "Delete Uploads"
	PermEditComments         = "Edit Comments"
	PermEditOwnComments      = "Edit Own Comments"
	PermEditOwnPosts         = "Edit Own Posts"
	PermEditPosts            = "Edit Posts"
	PermManageCategories     = "Manage Categories"
	PermToggleExtensions     = "Toggle Extensions"
	PermViewDrafts           = "View Drafts"
	PermViewOwnDrafts        = "View Own Drafts"
	PermViewPrivatePosts     = "View Private Posts"
	PermViewScheduledPosts   = "View Scheduled Posts"
	PermViewSite             = "View Site"
	PermViewUploads          = "View Uploads"
)

// catalogue maps every permission display name to its tagged capability.
var catalogue = map[string]Capability{
	PermAddComments:          {Action: "Add", Resource: "Comments"},
	PermAddCommentsToPrivate: {Action: "Add", Resource: "Comments to Private Posts"},
	PermAddDrafts:            {Action: "Add", Resource: "Drafts"},
	"Add Groups":             {Action: "Add", Resource: "Groups"},
	"Add Pages":              {Action: "Add", Resource: "Pages"},
	PermAddPosts:             {Action: "Add", Resource: "Posts"},
	PermAddUploads:           {Action: "Add", Resource: "Uploads"},
	"Add Users":              {Action: "Add", Resource: "Users"},
	PermChangeSettings:       {Action: "Change", Resource: "Settings"},
	"Use HTML in Comments":   {Action: "Use", Resource: "HTML in Comments"},
	PermDeleteComments:       {Action: "Delete", Resource: "Comments"},
	"Delete Drafts":          {Action: "Delete", Resource: "Drafts"},
	"Delete Groups":          {Action: "Delete", Resource: "Groups"},
	PermDeleteOwnComments:    {Action: "Delete", Resource: "Comments", OwnOnly: true},
	"Delete Own Drafts":      {Action: "Delete", Resource: "Drafts", OwnOnly: true},
	PermDeleteOwnPosts:       {Action: "Delete", Resource: "Posts", OwnOnly: true},
	"Delete Pages":           {Action: "Delete", Resource: "Pages"},
	"Delete Webmentions":     {Action: "Delete", Resource: "Webmentions"},
	PermDeletePosts:          {Action: "Delete", Resource: "Posts"},
	PermDeleteUploads:        {Action: "Delete", Resource: "Uploads"},
	"Delete Users":           {Action: "Delete", Resource: "Users"},
	PermEditComments:         {Action: "Edit", Resource: "Comments"},
	"Edit Drafts":            {Action: "Edit", Resource: "Drafts"},
	"Edit Groups":            {Action: "Edit", Resource: "Groups"},
	PermEditOwnComments:      {Action: "Edit", Resource: "Comments", OwnOnly: true},
	"Edit Own Drafts":        {Action: "Edit", Resource: "Drafts", OwnOnly: true},
	PermEditOwnPosts:         {Action: "Edit", Resource: "Posts", OwnOnly: true},
	"Edit Pages":             {Action: "Edit", Resource: "Pages"},
	"Edit Webmentions":       {Action: "Edit", Resource: "Webmentions"},
	PermEditPosts:            {Action: "Edit", Resource: "Posts"},
	"Edit Uploads":           {Action: "Edit", Resource: "Uploads"},
	"Edit Users":             {Action: "Edit", Resource: "Users"},
	"Export Content":         {Action: "Export", Resource: "Content"},
	"Import Content":         {Action: "Import", Resource: "Content"},
	"Like Posts":             {Action: "Like", Resource: "Posts"},
	PermManageCategories:     {Action: "Manage", Resource: "Categories"},
	PermToggleExtensions:     {Action: "Toggle", Resource: "Extensions"},
	"Unlike Posts":           {Action: "Unlike", Resource: "Posts"},
	PermViewDrafts:           {Action: "View", Resource: "Drafts"},
	PermViewOwnDrafts:        {Action: "View", Resource: "Drafts", OwnOnly: true},
	"View Pages":             {Action: "View", Resource: "Pages"},
	PermViewPrivatePosts:     {Action: "View", Resource: "Private Posts"},
	PermViewScheduledPosts:   {Action: "View", Resource: "Scheduled Posts"},
	PermViewSite:             {Action: "View", Resource: "Site"},
	PermViewUploads:          {Action: "View", Resource: "Uploads"},
}

// ownVariants maps a global capability name to its own-resource variant,
// built once from the catalogue table.
var ownVariants = buildOwnVariants()

func buildOwnVariants() map[string]string {
	type key struct{ action, resource string }
	owns := make(map[key]string)
	for name, cap := range catalogue {
		if cap.OwnOnly {
			owns[key{cap.Action, cap.Resource}] = name
		}
	}
	out := make(map[string]string)
	for name, cap := range catalogue {
		if cap.OwnOnly {
			continue
		}
		if own, ok := owns[key{cap.Action, cap.Resource}]; ok {
			out[name] = own
		}
	}
	return out
}

// Lookup resolves a permission display name to its tagged capability.
func Lookup(name string) (Capability, bool) {
	cap, ok := catalogue[name]
	return cap, ok
}

// OwnVariant returns the own-resource variant of a global capability name,
// e.g. "Edit Posts" resolves to "Edit Own Posts".
func OwnVariant(name string) (string, bool) {
	own, ok := ownVariants[name]
	return own, ok
}

// CatalogueNames returns every permission display name, sorted.
func CatalogueNames() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// tierPermissions is the static per-group capability grant. Banned has none,
// Guest has read access to the site only.
var tierPermissions = map[Tier][]string{
	TierAdmin: {
		PermAddComments, PermAddCommentsToPrivate, PermAddDrafts, "Add Groups",
		"Add Pages", PermAddPosts, PermAddUploads, "Add Users", PermChangeSettings,
		"Use HTML in Comments", PermDeleteComments, "Delete Drafts", "Delete Groups",
		PermDeleteOwnComments, "Delete Own Drafts", PermDeleteOwnPosts, "Delete Pages",
		"Delete Webmentions", PermDeletePosts, PermDeleteUploads, "Delete Users",
		PermEditComments, "Edit Drafts", "Edit Groups", PermEditOwnComments,
		"Edit Own Drafts", PermEditOwnPosts, "Edit Pages", "Edit Webmentions",
		PermEditPosts, "Edit Uploads", "Edit Users", "Export Content", "Import Content",
		"Like Posts", PermManageCategories, PermToggleExtensions, "Unlike Posts",
		PermViewDrafts, PermViewOwnDrafts, "View Pages", PermViewPrivatePosts,
		PermViewScheduledPosts, PermViewSite, PermViewUploads,
	},
	TierMember: {
		PermAddComments, PermAddDrafts, PermAddPosts, PermAddUploads,
		PermDeleteOwnComments, "Delete Own Drafts", PermDeleteOwnPosts,
		PermEditOwnComments, "Edit Own Drafts", PermEditOwnPosts,
		"Like Posts", "Unlike Posts", PermViewOwnDrafts, PermViewSite,
	},
	TierFriend: {
		PermAddComments, PermAddCommentsToPrivate, PermAddDrafts, PermAddPosts,
		PermAddUploads, PermDeleteOwnComments, "Delete Own Drafts", PermDeleteOwnPosts,
		PermEditOwnComments, "Edit Own Drafts", PermEditOwnPosts,
		"Like Posts", "Unlike Posts", PermViewOwnDrafts, PermViewPrivatePosts, PermViewSite,
	},
	TierBanned: {},
	TierGuest:  {PermViewSite},
}

// PermissionSet is a resolved capability grant, immutable for the lifetime
// of a request.
type PermissionSet map[string]struct{}

func NewPermissionSet(names ...string) PermissionSet {
	set := make(PermissionSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func (s PermissionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s PermissionSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PermissionsForTier returns the static capability set of a tier.
func PermissionsForTier(tier Tier) PermissionSet {
	return NewPermissionSet(tierPermissions[tier]...)
}
