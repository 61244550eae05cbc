package settings

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
	rg.GET("/settings", h.get)
	rg.PUT("/settings", authMW, h.update)

	admin := rg.Group("/admin", authMW)
	admin.PUT("/themes/:name/activate", h.activateTheme)
	admin.PUT("/modules/:name/status", h.setModuleStatus)
	admin.PUT("/feathers/:name/status", h.setFeatherStatus)
}

func (h *Handler) grant(c *gin.Context) rbac.Grant {
	return h.resolver.Resolve(middleware.CurrentUser(c))
}

// get returns the unified config object, redacted per caller.
func (h *Handler) get(c *gin.Context) {
	cfg, err := h.svc.Get(h.grant(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, cfg)
}

// update applies a partial settings update and returns the config as the
// caller sees it.
func (h *Handler) update(c *gin.Context) {
	var partial map[string]interface{}
	if err := c.ShouldBindJSON(&partial); err != nil {
		response.BadRequest(c, "request body must be a json object")
		return
	}
	cfg, err := h.svc.Update(h.grant(c), partial)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, cfg)
}

func (h *Handler) activateTheme(c *gin.Context) {
	theme, err := h.svc.ActivateTheme(h.grant(c), c.Param("name"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, theme)
}

func (h *Handler) setModuleStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "status is required")
		return
	}
	module, err := h.svc.SetModuleStatus(h.grant(c), c.Param("name"), body.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, module)
}

func (h *Handler) setFeatherStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "status is required")
		return
	}
	feather, err := h.svc.SetFeatherStatus(h.grant(c), c.Param("name"), body.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, feather)
}
