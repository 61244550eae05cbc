package settings

import (
	"errors"

	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/modules/rbac"
	"github.com/chyrplite/core/internal/pkg/apierror"
	"gorm.io/gorm"
)

// ActivateTheme makes the named theme the single active one. The
// deactivate-then-activate pair runs in one transaction so at most one theme
// is ever active.
func (s *Service) ActivateTheme(grant rbac.Grant, name string) (*models.ThemeModel, error) {
	if rbac.Decide(grant, rbac.Check{Capability: rbac.PermChangeSettings}) == rbac.Denied {
		return nil, apierror.New(apierror.KindPermission, "forbidden")
	}

	var theme models.ThemeModel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", name).First(&theme).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.Newf(apierror.KindNotFound, "theme %q not found", name)
			}
			return err
		}
		if err := tx.Model(&models.ThemeModel{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		theme.IsActive = true
		return tx.Model(&theme).Update("is_active", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &theme, nil
}

// SetModuleStatus enables or disables a module. Disabling is refused for
// modules marked as not disableable.
func (s *Service) SetModuleStatus(grant rbac.Grant, name, status string) (*models.ModuleModel, error) {
	if rbac.Decide(grant, rbac.Check{Capability: rbac.PermToggleExtensions}) == rbac.Denied {
		return nil, apierror.New(apierror.KindPermission, "forbidden")
	}
	if status != "enabled" && status != "disabled" {
		return nil, apierror.Validation("status", "must be enabled or disabled")
	}

	var module models.ModuleModel
	if err := s.db.Where("name = ?", name).First(&module).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Newf(apierror.KindNotFound, "module %q not found", name)
		}
		return nil, err
	}
	if status == "disabled" && !module.CanDisable {
		return nil, apierror.Validation("status", "module cannot be disabled")
	}

	module.Status = status
	if err := s.db.Model(&module).Update("status", status).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

// SetFeatherStatus enables or disables a post-type handler.
func (s *Service) SetFeatherStatus(grant rbac.Grant, name, status string) (*models.FeatherModel, error) {
	if rbac.Decide(grant, rbac.Check{Capability: rbac.PermToggleExtensions}) == rbac.Denied {
		return nil, apierror.New(apierror.KindPermission, "forbidden")
	}
	if status != "enabled" && status != "disabled" {
		return nil, apierror.Validation("status", "must be enabled or disabled")
	}

	var feather models.FeatherModel
	if err := s.db.Where("name = ?", name).First(&feather).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Newf(apierror.KindNotFound, "feather %q not found", name)
		}
		return nil, err
	}
	if status == "disabled" && !feather.CanDisable {
		return nil, apierror.Validation("status", "feather cannot be disabled")
	}

	feather.Status = status
	if err := s.db.Model(&feather).Update("status", status).Error; err != nil {
		return nil, err
	}
	return &feather, nil
}
