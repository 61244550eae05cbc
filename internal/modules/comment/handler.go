package comment

import (
	"github.com/gin-gonic/gin"

	"github.com/chyrplite/core/internal/middleware"
	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/modules/rbac"
	"github.com/chyrplite/core/internal/pkg/pagination"
	"github.com/chyrplite/core/internal/pkg/response"
)

// Moderator is the service surface the handler needs.
type Moderator interface {
	Create(grant rbac.Grant, user *models.UserModel, postIDOrSlug string, dto CreateCommentDTO, ip, userAgent string) (*models.CommentModel, error)
	ListForPost(grant rbac.Grant, postIDOrSlug string, q pagination.Query) ([]models.CommentModel, response.Pagination, error)
	AdminList(grant rbac.Grant, q AdminQuery) ([]models.CommentModel, response.Pagination, Stats, error)
	UpdateStatus(grant rbac.Grant, id, status string) (*models.CommentModel, error)
	Delete(grant rbac.Grant, id string) error
	ApplyBatch(grant rbac.Grant, ids []string, action string) (BatchResult, error)
}

type Handler struct {
	svc      Moderator
	resolver *rbac.Resolver
}

func NewHandler(svc Moderator, resolver *rbac.Resolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/posts/:id/comments", h.listForPost)
	rg.POST("/posts/:id/comments", h.create)

	rg.PUT("/comments/:id/status", authMW, h.updateStatus)
	rg.DELETE("/comments/:id", authMW, h.delete)
	rg.POST("/comments/batch", authMW, h.batch)

	admin := rg.Group("/admin", authMW)
	admin.GET("/comments", h.adminList)
	admin.GET("/spam", h.spamList)
}

func (h *Handler) grant(c *gin.Context) rbac.Grant {
	return h.resolver.Resolve(middleware.CurrentUser(c))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCommentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	cm, err := h.svc.Create(h.grant(c), middleware.CurrentUser(c), c.Param("id"), dto, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, Render(cm, false))
}

func (h *Handler) listForPost(c *gin.Context) {
	comments, page, err := h.svc.ListForPost(h.grant(c), c.Param("id"), pagination.FromContext(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	out := make([]gin.H, 0, len(comments))
	for i := range comments {
		out = append(out, Render(&comments[i], false))
	}
	response.Paged(c, out, page)
}

func (h *Handler) adminList(c *gin.Context) {
	q := h.adminQuery(c)
	comments, page, stats, err := h.svc.AdminList(h.grant(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{
		"data":       GroupByPost(comments, false),
		"pagination": page,
		"stats":      stats,
	})
}

// spamList is the spam triage view: status defaults to spam, and denied
// comments are labelled "rejected".
func (h *Handler) spamList(c *gin.Context) {
	q := h.adminQuery(c)
	if q.Status == "" {
		q.Status = string(models.CommentSpam)
	}
	comments, page, stats, err := h.svc.AdminList(h.grant(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{
		"data":       GroupByPost(comments, true),
		"pagination": page,
		"stats": gin.H{
			"total":    stats.Total,
			"spam":     stats.Spam,
			"approved": stats.Approved,
			"rejected": stats.Denied,
		},
	})
}

func (h *Handler) adminQuery(c *gin.Context) AdminQuery {
	return AdminQuery{
		Page:     pagination.FromContext(c),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Author:   c.Query("author"),
		PostID:   c.Query("post_id"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Sort:     c.DefaultQuery("sort", "created_at"),
		Order:    c.DefaultQuery("order", "desc"),
	}
}

func (h *Handler) updateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "status is required")
		return
	}
	cm, err := h.svc.UpdateStatus(h.grant(c), c.Param("id"), body.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, Render(cm, false))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(h.grant(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) batch(c *gin.Context) {
	var body struct {
		IDs    []string `json:"ids"    binding:"required"`
		Action string   `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "ids and action are required")
		return
	}
	result, err := h.svc.ApplyBatch(h.grant(c), body.IDs, body.Action)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, result)
}
