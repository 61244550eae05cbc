package upload

import (
	"github.com/gin-gonic/gin"

	"github.com/chyrplite/core/internal/middleware"
	"github.com/chyrplite/core/internal/modules/rbac"
	"github.com/chyrplite/core/internal/pkg/pagination"
	"github.com/chyrplite/core/internal/pkg/response"
)

type Handler struct {
	svc      *Service
	resolver *rbac.Resolver
}

func NewHandler(svc *Service, resolver *rbac.Resolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	admin := rg.Group("/admin/uploads", authMW)
	admin.GET("", h.list)
	admin.DELETE("/:id", h.delete)
}

func (h *Handler) grant(c *gin.Context) rbac.Grant {
	return h.resolver.Resolve(middleware.CurrentUser(c))
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Page:   pagination.FromContext(c),
		Kind:   c.Query("type"),
		PostID: c.Query("post_id"),
		Orphan: c.Query("orphan") == "true",
	}
	uploads, page, err := h.svc.List(h.grant(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Paged(c, uploads, page)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), h.grant(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}
