package category

import (
	"github.com/chyrplite/core/internal/middleware"
	"github.com/chyrplite/core/internal/modules/rbac"
	"github.com/chyrplite/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc      *Service
	resolver *rbac.Resolver
}

func NewHandler(svc *Service, resolver *rbac.Resolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/categories")
	g.GET("", h.list)
	g.POST("", authMW, h.create)
	g.DELETE("/:id", authMW, h.delete)
}

func (h *Handler) list(c *gin.Context) {
	categories, err := h.svc.List()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, categories)
}

func (h *Handler) create(c *gin.Context) {
	var body struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name is required")
		return
	}
	grant := h.resolver.Resolve(middleware.CurrentUser(c))
	cat, err := h.svc.Create(grant, body.Name, body.Description)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, cat)
}

func (h *Handler) delete(c *gin.Context) {
	grant := h.resolver.Resolve(middleware.CurrentUser(c))
	if err := h.svc.Delete(grant, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}
