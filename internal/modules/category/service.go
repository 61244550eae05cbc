package category

import (
	"errors"
	"strings"

	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/modules/rbac"
	"github.com/chyrplite/core/internal/pkg/apierror"
	"github.com/chyrplite/core/internal/pkg/slug"
	"gorm.io/gorm"
)

// ListedCategory is a category row with its post count, as returned by the
// public listing.
type ListedCategory struct {
	models.CategoryModel
	PostCount int64 `json:"post_count"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns the publicly listed categories ordered for display, each with
// its post count.
func (s *Service) List() ([]ListedCategory, error) {
	var categories []models.CategoryModel
	err := s.db.Where("is_listed = ?", true).
		Order("display_order, name").
		Find(&categories).Error
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "failed to load categories", err)
	}

	out := make([]ListedCategory, 0, len(categories))
	for _, cat := range categories {
		var count int64
		if err := s.db.Model(&models.PostModel{}).Where("category_id = ?", cat.ID).Count(&count).Error; err != nil {
			return nil, apierror.Wrap(apierror.KindInternal, "failed to count posts", err)
		}
		out = append(out, ListedCategory{CategoryModel: cat, PostCount: count})
	}
	return out, nil
}

// Create adds a category. Requires "Manage Categories".
func (s *Service) Create(grant rbac.Grant, name, description string) (*models.CategoryModel, error) {
	if rbac.Decide(grant, rbac.Check{Capability: rbac.PermManageCategories}) == rbac.Denied {
		return nil, apierror.New(apierror.KindPermission, "forbidden")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierror.Validation("name", "name is required")
	}

	catSlug, err := slug.Unique(slug.Make(name), func(candidate string) (bool, error) {
		var count int64
		err := s.db.Model(&models.CategoryModel{}).Where("slug = ?", candidate).Count(&count).Error
		return count > 0, err
	})
	if err != nil {
		return nil, err
	}

	cat := models.CategoryModel{
		UserID:      grant.UserID,
		Name:        name,
		Slug:        catSlug,
		Description: description,
		IsListed:    true,
	}
	if err := s.db.Create(&cat).Error; err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "failed to create category", err)
	}
	return &cat, nil
}

// Delete removes a category. Posts referencing it are detached, never
// deleted. Requires "Manage Categories".
func (s *Service) Delete(grant rbac.Grant, id string) error {
	if rbac.Decide(grant, rbac.Check{Capability: rbac.PermManageCategories}) == rbac.Denied {
		return apierror.New(apierror.KindPermission, "forbidden")
	}

	var cat models.CategoryModel
	if err := s.db.Where("id = ?", id).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.New(apierror.KindNotFound, "category not found")
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.PostModel{}).Where("category_id = ?", cat.ID).
			Update("category_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(&cat).Error
	})
}

// LookupOrCreate resolves a category name to an id for the given user,
// creating it when absent. The lookup is scoped to the user so one author's
// category is never silently reused for another. Runs inside the caller's
// transaction.
func LookupOrCreate(tx *gorm.DB, userID, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	var existing models.CategoryModel
	err := tx.Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	catSlug, err := slug.Unique(slug.Make(name), func(candidate string) (bool, error) {
		var count int64
		err := tx.Model(&models.CategoryModel{}).Where("slug = ?", candidate).Count(&count).Error
		return count > 0, err
	})
	if err != nil {
		return "", err
	}

	cat := models.CategoryModel{UserID: userID, Name: name, Slug: catSlug, IsListed: true}
	if err := tx.Create(&cat).Error; err != nil {
		return "", err
	}
	return cat.ID, nil
}
