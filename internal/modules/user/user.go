package user

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/chyrplite/core/internal/middleware"
	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/modules/rbac"
	"github.com/chyrplite/core/internal/pkg/apierror"
	jwtpkg "github.com/chyrplite/core/internal/pkg/jwt"
	"github.com/chyrplite/core/internal/pkg/response"
)

const tokenTTL = 30 * 24 * time.Hour

type LoginDTO struct {
	// Login accepts a username or an email address.
	Login    string `json:"login"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Login verifies credentials and issues a signed token. Failures are
// indistinguishable between unknown user and wrong password.
func (s *Service) Login(login, password, ip string) (string, *models.UserModel, error) {
	var u models.UserModel
	err := s.db.Preload("Group").
		Where("username = ? OR email = ?", login, login).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, apierror.New(apierror.KindUnauthorized, "invalid credentials")
	}
	if err != nil {
		return "", nil, apierror.Wrap(apierror.KindInternal, "load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		return "", nil, apierror.New(apierror.KindUnauthorized, "invalid credentials")
	}
	if !u.IsActive || !u.Approved {
		return "", nil, apierror.New(apierror.KindUnauthorized, "account disabled")
	}

	now := time.Now()
	s.db.Model(&u).Updates(map[string]interface{}{
		"last_login_time": now,
		"last_login_ip":   ip,
	})
	u.LastLoginTime = &now
	u.LastLoginIP = ip

	token, err := jwtpkg.Sign(u.ID, tokenTTL)
	if err != nil {
		return "", nil, apierror.Wrap(apierror.KindInternal, "sign token", err)
	}
	return token, &u, nil
}

func (s *Service) ChangePassword(id, oldPwd, newPwd string) error {
	var u models.UserModel
	if err := s.db.Select("id, hashed_password").First(&u, "id = ?", id).Error; err != nil {
		return apierror.Wrap(apierror.KindInternal, "load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(oldPwd)); err != nil {
		return apierror.Validation("old_password", "wrong password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPwd), bcrypt.DefaultCost)
	if err != nil {
		return apierror.Wrap(apierror.KindInternal, "hash password", err)
	}
	if err := s.db.Model(&u).Update("hashed_password", string(hash)).Error; err != nil {
		return apierror.Wrap(apierror.KindInternal, "update password", err)
	}
	return nil
}

type Handler struct {
	svc      *Service
	resolver *rbac.Resolver
}

func NewHandler(svc *Service, resolver *rbac.Resolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/login", h.login)
	g.GET("/me", authMW, h.me)
	g.PUT("/password", authMW, h.changePassword)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "login and password are required")
		return
	}
	token, u, err := h.svc.Login(dto.Login, dto.Password, c.ClientIP())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"token": token, "user": h.render(u)})
}

func (h *Handler) me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Unauthorized(c)
		return
	}
	response.OK(c, h.render(u))
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "old_password and new_password are required")
		return
	}
	if err := h.svc.ChangePassword(middleware.CurrentUserID(c), dto.OldPassword, dto.NewPassword); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) render(u *models.UserModel) gin.H {
	grant := h.resolver.Resolve(u)
	return gin.H{
		"id":              u.ID,
		"username":        u.Username,
		"email":           u.Email,
		"full_name":       u.FullName,
		"website":         u.Website,
		"image":           u.Image,
		"role":            string(grant.Tier),
		"permissions":     grant.Perms.Names(),
		"last_login_time": u.LastLoginTime,
		"last_login_ip":   u.LastLoginIP,
	}
}
