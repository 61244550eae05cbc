package post

import (
	"github.com/chyrplite/core/internal/middleware"
	"github.com/chyrplite/core/internal/modules/rbac"
	"github.com/chyrplite/core/internal/pkg/pagination"
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
	g := rg.Group("/posts")
	g.GET("", h.list)
	g.GET("/stats", authMW, h.stats)
	g.GET("/:id", h.get)
	g.POST("", authMW, h.create)
	g.PUT("/:id", authMW, h.update)
	g.DELETE("/:id", authMW, h.delete)
}

func (h *Handler) grant(c *gin.Context) rbac.Grant {
	return h.resolver.Resolve(middleware.CurrentUser(c))
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Page:       pagination.FromContext(c),
		Status:     c.Query("status"),
		CategoryID: c.Query("category_id"),
		Search:     c.Query("search"),
	}
	posts, page, err := h.svc.List(h.grant(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	out := make([]gin.H, 0, len(posts))
	for i := range posts {
		out = append(out, RenderSummary(&posts[i]))
	}
	response.Paged(c, out, page)
}

func (h *Handler) get(c *gin.Context) {
	post, err := h.svc.Get(h.grant(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, Render(post))
}

func (h *Handler) create(c *gin.Context) {
	draft, err := ParseRequest(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	post, err := h.svc.Ingest(c.Request.Context(), h.grant(c), draft)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, Render(post))
}

func (h *Handler) update(c *gin.Context) {
	draft, err := ParseRequest(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	post, err := h.svc.Update(c.Request.Context(), h.grant(c), c.Param("id"), draft)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, Render(post))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), h.grant(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.Stats()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, stats)
}
