package post

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"

	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/modules/category"
	"github.com/chyrplite/core/internal/modules/rbac"
	"github.com/chyrplite/core/internal/pkg/apierror"
	"github.com/chyrplite/core/internal/pkg/blob"
	"github.com/chyrplite/core/internal/pkg/pagination"
	"github.com/chyrplite/core/internal/pkg/response"
	"github.com/chyrplite/core/internal/pkg/slug"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	store blob.Store
	log   *zap.Logger
}

func NewService(db *gorm.DB, store blob.Store, log *zap.Logger) *Service {
	return &Service{db: db, store: store, log: log}
}

// stagedUpload is a blob already written to the store, waiting for its row
// to commit. If the transaction fails every staged blob is deleted again.
type stagedUpload struct {
	ref    blob.Ref
	kind   models.UploadKind
	name   string
	mime   string
	poster bool
}

var uploadDirs = map[models.UploadKind]string{
	models.UploadImage:   "images",
	models.UploadVideo:   "videos",
	models.UploadAudio:   "audio",
	models.UploadCaption: "captions",
	models.UploadFile:    "files",
}

// Ingest decodes nothing: it receives the already-normalized draft, checks
// permissions before any persistence, stores blobs, and commits the post,
// attributes, tags and upload rows in one transaction.
func (s *Service) Ingest(ctx context.Context, grant rbac.Grant, draft *PostDraft) (*models.PostModel, error) {
	status := effectiveStatus(draft)

	required := rbac.PermAddPosts
	if status == models.StatusDraft {
		required = rbac.PermAddDrafts
	}
	if rbac.Decide(grant, rbac.Check{Capability: required}) == rbac.Denied {
		return nil, apierror.New(apierror.KindPermission, "forbidden")
	}

	if err := validateCreate(draft); err != nil {
		return nil, err
	}

	postURL, err := s.uniqueURL(draft.Title, draft.CustomSlug, "")
	if err != nil {
		return nil, err
	}

	staged, err := s.stageFiles(ctx, draft)
	if err != nil {
		return nil, err
	}

	post := models.PostModel{
		Type:   draft.Type,
		Title:  draft.Title,
		URL:    postURL,
		UserID: grant.UserID,
	}
	applyContent(&post, draft)
	applyStagedMedia(&post, staged)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if draft.CategorySet && draft.Category != "" {
			catID, err := category.LookupOrCreate(tx, grant.UserID, draft.Category)
			if err != nil {
				return err
			}
			post.CategoryID = &catID
		}

		if err := tx.Create(&post).Error; err != nil {
			if isDuplicateURLError(err) {
				return apierror.New(apierror.KindConflict, "slug already in use")
			}
			return err
		}

		attrs := models.PostAttributesModel{
			PostID:        post.ID,
			Status:        status,
			Slug:          postURL,
			ScheduledAt:   draft.ScheduledAt,
			AllowComments: true,
			OriginalWork:  true,
			License:       "All Rights Reserved",
		}
		if draft.Pinned != nil {
			attrs.Pinned = *draft.Pinned
		}
		if draft.AllowComments != nil {
			attrs.AllowComments = *draft.AllowComments
		}
		if draft.OriginalWork != nil {
			attrs.OriginalWork = *draft.OriginalWork
		}
		if draft.RightsHolder != nil {
			attrs.RightsHolder = *draft.RightsHolder
		}
		if draft.License != nil && *draft.License != "" {
			attrs.License = *draft.License
		}
		if err := tx.Create(&attrs).Error; err != nil {
			return err
		}

		if err := replaceTags(tx, post.ID, grant.UserID, draft.Tags); err != nil {
			return err
		}

		return createUploadRows(tx, grant.UserID, post.ID, staged)
	})
	if err != nil {
		s.discard(ctx, staged)
		return nil, classifyDBError(err)
	}

	return s.reload(post.ID)
}

// Update re-gates with ownership against the stored author, then applies
// only the fields the draft carries.
func (s *Service) Update(ctx context.Context, grant rbac.Grant, id string, draft *PostDraft) (*models.PostModel, error) {
	post, err := s.find(id)
	if err != nil {
		return nil, err
	}

	check := rbac.Check{
		Capability: rbac.PermEditPosts,
		OwnerMatch: post.UserID == grant.UserID,
	}
	if rbac.Decide(grant, check) != rbac.Editable {
		return nil, apierror.New(apierror.KindPermission, "forbidden")
	}

	if err := validateUpdate(draft, post); err != nil {
		return nil, err
	}

	if draft.Title != "" || draft.CustomSlug != "" {
		title := draft.Title
		if title == "" {
			title = post.Title
		}
		newURL, err := s.uniqueURL(title, draft.CustomSlug, post.ID)
		if err != nil {
			return nil, err
		}
		post.URL = newURL
	}
	if draft.Title != "" {
		post.Title = draft.Title
	}
	if draft.Type != "" {
		post.Type = draft.Type
	}
	applyContent(post, draft)

	staged, err := s.stageFiles(ctx, draft)
	if err != nil {
		return nil, err
	}
	applyStagedMedia(post, staged)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if draft.CategorySet {
			if draft.Category == "" {
				post.CategoryID = nil
			} else {
				catID, err := category.LookupOrCreate(tx, grant.UserID, draft.Category)
				if err != nil {
					return err
				}
				post.CategoryID = &catID
			}
		}

		if err := tx.Save(post).Error; err != nil {
			return err
		}

		attrs := post.Attributes
		applyAttributes(attrs, draft)
		attrs.Slug = post.URL
		if err := tx.Save(attrs).Error; err != nil {
			return err
		}

		if draft.TagsSet {
			if err := tx.Where("post_id = ?", post.ID).Delete(&models.TagModel{}).Error; err != nil {
				return err
			}
			if err := replaceTags(tx, post.ID, grant.UserID, draft.Tags); err != nil {
				return err
			}
		}

		return createUploadRows(tx, grant.UserID, post.ID, staged)
	})
	if err != nil {
		s.discard(ctx, staged)
		return nil, classifyDBError(err)
	}

	return s.reload(post.ID)
}

// ListQuery carries the feed filters.
type ListQuery struct {
	Page       pagination.Query
	Status     string
	CategoryID string
	Search     string
}

// List returns the caller-visible feed, newest first. Filters apply on top
// of the visibility scope, never instead of it.
func (s *Service) List(grant rbac.Grant, q ListQuery) ([]models.PostModel, response.Pagination, error) {
	if rbac.Decide(grant, rbac.Check{Capability: rbac.PermViewSite}) == rbac.Denied {
		return nil, response.Pagination{}, apierror.New(apierror.KindPermission, "forbidden")
	}

	db := s.visibleScope(grant)
	if q.Status != "" {
		db = db.Where("post_attributes.status = ?", q.Status)
	}
	if q.CategoryID != "" {
		db = db.Where("posts.category_id = ?", q.CategoryID)
	}
	if q.Search != "" {
		term := "%" + q.Search + "%"
		db = db.Where("posts.title LIKE ? OR posts.body LIKE ?", term, term)
	}
	db = db.Order("posts.created_at DESC").
		Preload("User").Preload("Category").Preload("Attributes").
		Preload("Uploads").Preload("Tags")

	var posts []models.PostModel
	page, err := pagination.Paginate(db, q.Page, &posts)
	if err != nil {
		return nil, response.Pagination{}, apierror.Wrap(apierror.KindInternal, "failed to list posts", err)
	}
	return posts, page, nil
}

// Get fetches a single post by id or slug. A post outside the caller's
// visible set renders exactly like a missing one.
func (s *Service) Get(grant rbac.Grant, idOrSlug string) (*models.PostModel, error) {
	post, err := s.find(idOrSlug)
	if err != nil {
		return nil, err
	}
	if !s.visibleTo(grant, post) {
		return nil, apierror.New(apierror.KindNotVisible, "post not found")
	}
	return post, nil
}

// Delete removes a post, its rows, and its stored blobs.
func (s *Service) Delete(ctx context.Context, grant rbac.Grant, id string) error {
	post, err := s.find(id)
	if err != nil {
		return err
	}

	check := rbac.Check{
		Capability: rbac.PermDeletePosts,
		OwnerMatch: post.UserID == grant.UserID,
	}
	if rbac.Decide(grant, check) != rbac.Editable {
		return apierror.New(apierror.KindPermission, "forbidden")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []interface{}{
			&models.CommentModel{}, &models.TagModel{}, &models.UploadModel{}, &models.PostAttributesModel{},
		} {
			if err := tx.Where("post_id = ?", post.ID).Delete(table).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.PostModel{}, "id = ?", post.ID).Error
	})
	if err != nil {
		return classifyDBError(err)
	}

	// Blob deletion is best effort after the rows are gone.
	for _, up := range post.Uploads {
		if up.Key == "" {
			continue
		}
		if err := s.store.Delete(ctx, up.Key); err != nil {
			s.log.Warn("failed to delete blob for removed post",
				zap.String("post_id", post.ID),
				zap.String("key", up.Key),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Stats returns dashboard counts: totals by status and type plus recent
// activity over the last 30 days.
func (s *Service) Stats() (map[string]interface{}, error) {
	var total int64
	if err := s.db.Model(&models.PostModel{}).Count(&total).Error; err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "failed to count posts", err)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var byStatus []statusCount
	err := s.db.Model(&models.PostAttributesModel{}).
		Select("status, COUNT(*) as count").Group("status").Scan(&byStatus).Error
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "failed to count posts by status", err)
	}
	statusMap := map[string]int64{}
	for _, row := range byStatus {
		statusMap[row.Status] = row.Count
	}

	type typeCount struct {
		Type  string
		Count int64
	}
	var byType []typeCount
	err = s.db.Model(&models.PostModel{}).
		Select("type, COUNT(*) as count").Group("type").Scan(&byType).Error
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "failed to count posts by type", err)
	}
	typeMap := map[string]int64{}
	for _, row := range byType {
		typeMap[row.Type] = row.Count
	}

	var recent int64
	cutoff := time.Now().AddDate(0, 0, -30)
	err = s.db.Model(&models.PostModel{}).Where("created_at >= ?", cutoff).Count(&recent).Error
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "failed to count recent posts", err)
	}

	return map[string]interface{}{
		"totalPosts":    total,
		"postsByStatus": statusMap,
		"postsByType":   typeMap,
		"recentPosts":   recent,
		"generatedAt":   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// PublishDueScheduled flips scheduled posts whose time has come to public.
// Returns the number of posts published.
func (s *Service) PublishDueScheduled(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.PostAttributesModel{}).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?",
			models.StatusScheduled, time.Now()).
		Updates(map[string]interface{}{"status": models.StatusPublic, "scheduled_at": nil})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// visibleScope builds the WHERE clause of the caller's visible set: statuses
// the grant can see, or anything the caller authored.
func (s *Service) visibleScope(grant rbac.Grant) *gorm.DB {
	db := s.db.Model(&models.PostModel{}).
		Joins("JOIN post_attributes ON post_attributes.post_id = posts.id")

	statuses := visibleStatuses(grant)
	if grant.UserID != "" {
		return db.Where("post_attributes.status IN ? OR posts.user_id = ?", statuses, grant.UserID)
	}
	return db.Where("post_attributes.status IN ?", statuses)
}

func visibleStatuses(grant rbac.Grant) []models.PostStatus {
	statuses := []models.PostStatus{models.StatusPublic, models.StatusOpen}
	for _, floored := range []models.PostStatus{
		models.StatusAdmin, models.StatusMember, models.StatusFriend,
		models.StatusGuest, models.StatusBanned,
	} {
		if grant.Tier.Meets(rbac.FloorForStatus(floored)) {
			statuses = append(statuses, floored)
		}
	}
	if grant.Can(rbac.PermViewPrivatePosts) {
		statuses = append(statuses, models.StatusPrivate)
	}
	if grant.Can(rbac.PermViewDrafts) {
		statuses = append(statuses, models.StatusDraft)
	}
	if grant.Can(rbac.PermViewScheduledPosts) {
		statuses = append(statuses, models.StatusScheduled)
	}
	return statuses
}

// visibleTo decides single-post visibility, with ownership overriding the
// status checks.
func (s *Service) visibleTo(grant rbac.Grant, post *models.PostModel) bool {
	if grant.UserID != "" && post.UserID == grant.UserID {
		return true
	}
	status := models.StatusPublic
	if post.Attributes != nil {
		status = post.Attributes.Status
	}
	switch status {
	case models.StatusPublic, models.StatusOpen:
		return grant.Tier != rbac.TierBanned
	case models.StatusPrivate:
		return grant.Can(rbac.PermViewPrivatePosts)
	case models.StatusDraft:
		return grant.Can(rbac.PermViewDrafts)
	case models.StatusScheduled:
		return grant.Can(rbac.PermViewScheduledPosts)
	default:
		return grant.Tier.Meets(rbac.FloorForStatus(status))
	}
}

func (s *Service) find(idOrSlug string) (*models.PostModel, error) {
	var post models.PostModel
	err := s.db.
		Preload("User").Preload("Category").Preload("Attributes").
		Preload("Uploads").Preload("Tags").
		Where("posts.id = ? OR posts.url = ?", idOrSlug, idOrSlug).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.New(apierror.KindNotFound, "post not found")
	}
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "failed to load post", err)
	}
	if post.Attributes == nil {
		return nil, apierror.New(apierror.KindInternal, "post has no attributes row")
	}
	return &post, nil
}

func (s *Service) reload(id string) (*models.PostModel, error) {
	return s.find(id)
}

// uniqueURL derives the post URL from the title or a custom slug, excluding
// the post itself when updating.
func (s *Service) uniqueURL(title, customSlug, selfID string) (string, error) {
	base := slug.Make(title)
	if customSlug != "" {
		base = slug.Make(customSlug)
	}
	return slug.Unique(base, func(candidate string) (bool, error) {
		q := s.db.Model(&models.PostModel{}).Where("url = ?", candidate)
		if selfID != "" {
			q = q.Where("id <> ?", selfID)
		}
		var count int64
		err := q.Count(&count).Error
		return count > 0, err
	})
}

// applyAttributes folds the draft's attribute fields into attrs. A status
// other than scheduled drops any stored schedule date.
func applyAttributes(attrs *models.PostAttributesModel, draft *PostDraft) {
	if draft.StatusSet {
		attrs.Status = draft.Status
	}
	if draft.Pinned != nil {
		attrs.Pinned = *draft.Pinned
	}
	if draft.ScheduledSet {
		attrs.ScheduledAt = draft.ScheduledAt
	}
	if attrs.Status != models.StatusScheduled {
		attrs.ScheduledAt = nil
	}
	if draft.AllowComments != nil {
		attrs.AllowComments = *draft.AllowComments
	}
	if draft.OriginalWork != nil {
		attrs.OriginalWork = *draft.OriginalWork
	}
	if draft.RightsHolder != nil {
		attrs.RightsHolder = *draft.RightsHolder
	}
	if draft.License != nil && *draft.License != "" {
		attrs.License = *draft.License
	}
}

// isDuplicateURLError reports whether err is the unique-index violation on
// posts.url. The slug probe runs outside the insert transaction, so two
// concurrent creates can still collide here.
func isDuplicateURLError(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062 && strings.Contains(mysqlErr.Message, "url")
	}
	return false
}

// stageFiles writes every binary part to the blob store before the database
// transaction opens. On failure the already-written blobs are removed and a
// retryable error surfaces when the store was the problem.
func (s *Service) stageFiles(ctx context.Context, draft *PostDraft) ([]stagedUpload, error) {
	var staged []stagedUpload

	put := func(h *multipart.FileHeader, kind models.UploadKind, poster bool) error {
		ref, err := s.putFile(ctx, h, kind)
		if err != nil {
			return err
		}
		staged = append(staged, stagedUpload{
			ref:    ref,
			kind:   kind,
			name:   h.Filename,
			mime:   h.Header.Get("Content-Type"),
			poster: poster,
		})
		return nil
	}

	fail := func(err error) ([]stagedUpload, error) {
		s.discard(ctx, staged)
		return nil, blob.AsAPIError(err)
	}

	for _, h := range draft.Images {
		if err := put(h, models.UploadImage, false); err != nil {
			return fail(err)
		}
	}
	if draft.Video != nil {
		if err := put(draft.Video, models.UploadVideo, false); err != nil {
			return fail(err)
		}
	}
	if draft.Audio != nil {
		if err := put(draft.Audio, models.UploadAudio, false); err != nil {
			return fail(err)
		}
	}
	for _, h := range draft.Files {
		if err := put(h, models.UploadFile, false); err != nil {
			return fail(err)
		}
	}
	if draft.Poster != nil {
		if err := put(draft.Poster, models.UploadImage, true); err != nil {
			return fail(err)
		}
	}
	for _, h := range draft.Captions {
		if err := put(h, models.UploadCaption, false); err != nil {
			return fail(err)
		}
	}
	return staged, nil
}

func (s *Service) putFile(ctx context.Context, h *multipart.FileHeader, kind models.UploadKind) (blob.Ref, error) {
	f, err := h.Open()
	if err != nil {
		return blob.Ref{}, err
	}
	defer f.Close()

	key := fmt.Sprintf("uploads/%s/%s%s",
		uploadDirs[kind], strings.ReplaceAll(uuid.NewString(), "-", ""), filepath.Ext(h.Filename))
	return s.store.Put(ctx, key, f, blob.Meta{
		Name:        h.Filename,
		ContentType: h.Header.Get("Content-Type"),
		Size:        h.Size,
	})
}

// discard deletes staged blobs after a failed ingestion. Errors are logged
// only: the compensation must not mask the original failure.
func (s *Service) discard(ctx context.Context, staged []stagedUpload) {
	for _, up := range staged {
		if err := s.store.Delete(ctx, up.ref.Key); err != nil {
			s.log.Warn("failed to delete orphaned blob",
				zap.String("key", up.ref.Key),
				zap.Error(err),
			)
		}
	}
}

// applyContent maps the draft's content object onto the post's type-specific
// columns. Only fields the draft carries are written.
func applyContent(post *models.PostModel, draft *PostDraft) {
	c := draft.Content
	typ := draft.Type
	if typ == "" {
		typ = post.Type
	}
	switch typ {
	case models.PostTypeText:
		setIfPresent(&post.Body, c.Body)
	case models.PostTypePhoto:
		setIfPresent(&post.Caption, c.Caption)
		setIfPresent(&post.AltText, c.AltText)
	case models.PostTypeVideo:
		setIfPresent(&post.Caption, c.Caption)
		setIfPresent(&post.Description, c.Description)
		setIfPresent(&post.Thumbnail, c.VideoThumbnail)
		setIfPresent(&post.Source, c.VideoURL)
	case models.PostTypeAudio:
		setIfPresent(&post.Caption, c.AudioDescription)
		setIfPresent(&post.Description, c.Description)
	case models.PostTypeQuote:
		setIfPresent(&post.Quote, c.Quote)
		setIfPresent(&post.QuoteSource, c.Source)
	case models.PostTypeLink:
		setIfPresent(&post.LinkURL, c.URL)
		setIfPresent(&post.Description, c.Description)
		setIfPresent(&post.Thumbnail, c.LinkThumbnail)
	case models.PostTypeFile:
		setIfPresent(&post.Description, c.Description)
	}
}

// applyStagedMedia points the post's derived columns at freshly stored
// blobs: an uploaded video or audio track becomes the source, a poster the
// thumbnail.
func applyStagedMedia(post *models.PostModel, staged []stagedUpload) {
	for _, up := range staged {
		if up.kind == models.UploadVideo || up.kind == models.UploadAudio {
			post.Source = up.ref.URL
		}
		if up.poster {
			post.Thumbnail = up.ref.URL
		}
	}
}

func setIfPresent(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func replaceTags(tx *gorm.DB, postID, userID string, tags []string) error {
	seen := map[string]struct{}{}
	for _, name := range tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		tag := models.TagModel{PostID: postID, UserID: userID, Name: name}
		if err := tx.Create(&tag).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUploadRows(tx *gorm.DB, userID, postID string, staged []stagedUpload) error {
	for _, up := range staged {
		row := models.UploadModel{
			URL:      up.ref.URL,
			Key:      up.ref.Key,
			UserID:   userID,
			PostID:   &postID,
			Type:     up.kind,
			Size:     up.ref.Size,
			Name:     up.name,
			MimeType: up.mime,
		}
		if row.MimeType == "" {
			row.MimeType = "application/octet-stream"
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// classifyDBError keeps already-classified errors and maps duplicate-key
// failures to conflicts.
func classifyDBError(err error) error {
	var ae *apierror.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apierror.Wrap(apierror.KindConflict, "duplicate record", err)
	}
	return apierror.Wrap(apierror.KindInternal, "database error", err)
}
