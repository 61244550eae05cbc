package upload

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/modules/rbac"
	"github.com/chyrplite/core/internal/pkg/apierror"
	"github.com/chyrplite/core/internal/pkg/blob"
	"github.com/chyrplite/core/internal/pkg/pagination"
	"github.com/chyrplite/core/internal/pkg/response"
)

// ListQuery filters the upload listing.
type ListQuery struct {
	Page   pagination.Query
	Kind   string
	PostID string
	Orphan bool
}

type Service struct {
	db    *gorm.DB
	store blob.Store
	log   *zap.Logger
}

func NewService(db *gorm.DB, store blob.Store, log *zap.Logger) *Service {
	return &Service{db: db, store: store, log: log}
}

// List returns stored uploads. Requires "View Uploads".
func (s *Service) List(grant rbac.Grant, q ListQuery) ([]models.UploadModel, response.Pagination, error) {
	if rbac.Decide(grant, rbac.Check{Capability: rbac.PermViewUploads}) == rbac.Denied {
		return nil, response.Pagination{}, apierror.New(apierror.KindPermission, "forbidden")
	}

	query := s.db.Model(&models.UploadModel{}).Order("created_at DESC")
	if q.Kind != "" {
		query = query.Where("type = ?", strings.ToLower(q.Kind))
	}
	if q.PostID != "" {
		query = query.Where("post_id = ?", q.PostID)
	}
	if q.Orphan {
		query = query.Where("post_id IS NULL")
	}

	var uploads []models.UploadModel
	page, err := pagination.Paginate(query, q.Page, &uploads)
	if err != nil {
		return nil, response.Pagination{}, apierror.Wrap(apierror.KindInternal, "list uploads", err)
	}
	return uploads, page, nil
}

// Delete removes an upload row and its blob. Deleting an upload still
// attached to a post detaches nothing: the post keeps its remaining files.
func (s *Service) Delete(ctx context.Context, grant rbac.Grant, id string) error {
	var up models.UploadModel
	err := s.db.Where("id = ?", id).First(&up).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.New(apierror.KindNotFound, "upload not found")
	}
	if err != nil {
		return apierror.Wrap(apierror.KindInternal, "load upload", err)
	}

	owner := up.UserID == grant.UserID
	if rbac.Decide(grant, rbac.Check{Capability: rbac.PermDeleteUploads, OwnerMatch: owner}) != rbac.Editable {
		return apierror.New(apierror.KindPermission, "forbidden")
	}

	if err := s.db.Delete(&up).Error; err != nil {
		return apierror.Wrap(apierror.KindInternal, "delete upload", err)
	}
	if up.Key != "" {
		if err := s.store.Delete(ctx, up.Key); err != nil {
			s.log.Warn("orphaned blob left behind",
				zap.String("key", up.Key), zap.Error(err))
		}
	}
	return nil
}
