package rbac

import (
	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/permissions")
	g.GET("", h.getForRole)
	g.GET("/roles", h.getRoles)
}

// getForRole returns the full capability checklist for a role: every
// catalogue name with a granted flag.
func (h *Handler) getForRole(c *gin.Context) {
	role := c.Query("role")
	if role == "" {
		response.BadRequest(c, "role query parameter is required")
		return
	}
	tier, ok := TierForRole(role)
	if !ok {
		response.NotFound(c)
		return
	}

	granted := PermissionsForTier(tier)
	perms := make(map[string]bool, len(catalogue))
	for _, name := range CatalogueNames() {
		perms[name] = granted.Has(name)
	}

	response.OK(c, gin.H{
		"role":        role,
		"group_name":  groupNames[tier],
		"permissions": perms,
	})
}

// getRoles returns the standard role names and the persisted group rows.
func (h *Handler) getRoles(c *gin.Context) {
	var groups []models.GroupModel
	if err := h.resolver.db.Order("name").Find(&groups).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{
		"roles":  []string{"admin", "member", "friend", "banned", "guest", "editor", "contributor"},
		"groups": groups,
	})
}
