package comment

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/modules/post"
	"github.com/chyrplite/core/internal/modules/rbac"
	"github.com/chyrplite/core/internal/pkg/apierror"
	"github.com/chyrplite/core/internal/pkg/mail"
	"github.com/chyrplite/core/internal/pkg/pagination"
	"github.com/chyrplite/core/internal/pkg/response"
)

// CreateCommentDTO is the public comment submission body.
type CreateCommentDTO struct {
	Body     string  `json:"body"   binding:"required"`
	Author   string  `json:"author"`
	Mail     string  `json:"mail"`
	URL      string  `json:"url"`
	ParentID *string `json:"parent_id"`
}

// AdminQuery carries the moderation list filters. Zero values mean
// "no filter"; Status accepts the spam view's "rejected" alias for denied.
type AdminQuery struct {
	Page     pagination.Query
	Status   string
	Search   string
	Author   string
	PostID   string
	DateFrom string
	DateTo   string
	Sort     string
	Order    string
}

// Stats are per-status counts over the unfiltered comment set, independent
// of the current page and filters.
type Stats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Spam     int64 `json:"spam"`
	Denied   int64 `json:"denied"`
}

// BatchResult reports a batch moderation run. Items fail independently;
// one bad id never aborts its siblings.
type BatchResult struct {
	Processed int          `json:"processed"`
	Errors    []BatchError `json:"errors"`
}

type BatchError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type Service struct {
	db         *gorm.DB
	posts      *post.Service
	log        *zap.Logger
	mailer     *mail.Sender
	adminEmail func() string
}

type Option func(*Service)

// WithNotifier makes the service email the admin when a comment enters the
// moderation queue.
func WithNotifier(mailer *mail.Sender, adminEmail func() string) Option {
	return func(s *Service) {
		s.mailer = mailer
		s.adminEmail = adminEmail
	}
}

func NewService(db *gorm.DB, posts *post.Service, log *zap.Logger, opts ...Option) *Service {
	s := &Service{db: db, posts: posts, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var commentStatuses = map[models.CommentStatus]struct{}{
	models.CommentPending:  {},
	models.CommentApproved: {},
	models.CommentSpam:     {},
	models.CommentDenied:   {},
}

// normalizeStatus folds the spam view's "rejected" alias onto denied.
func normalizeStatus(raw string) (models.CommentStatus, bool) {
	s := models.CommentStatus(strings.ToLower(strings.TrimSpace(raw)))
	if s == "rejected" {
		s = models.CommentDenied
	}
	_, ok := commentStatuses[s]
	return s, ok
}

// canTransition reports whether a status change is legal. Moderators may move
// a comment between any two states. Everyone else may only withdraw their own
// pending comment; approval stays with moderation.
func canTransition(from, to models.CommentStatus, moderator bool) bool {
	if _, ok := commentStatuses[to]; !ok {
		return false
	}
	if moderator {
		return true
	}
	return from == models.CommentPending && to == models.CommentDenied
}

// Create submits a comment on a post the caller can see. New comments start
// pending regardless of who submits them.
func (s *Service) Create(grant rbac.Grant, user *models.UserModel, postIDOrSlug string, dto CreateCommentDTO, ip, userAgent string) (*models.CommentModel, error) {
	p, err := s.posts.Get(grant, postIDOrSlug)
	if err != nil {
		return nil, err
	}

	required := rbac.PermAddComments
	if p.Attributes.Status == models.StatusPrivate {
		required = rbac.PermAddCommentsToPrivate
	}
	if rbac.Decide(grant, rbac.Check{Capability: required, OwnerMatch: p.UserID == grant.UserID}) == rbac.Denied {
		return nil, apierror.New(apierror.KindPermission, "forbidden")
	}
	if !p.Attributes.AllowComments {
		return nil, apierror.Validation("post_id", "comments are closed on this post")
	}

	body := strings.TrimSpace(dto.Body)
	if body == "" {
		return nil, apierror.Validation("body", "required")
	}

	if dto.ParentID != nil && *dto.ParentID != "" {
		var parent models.CommentModel
		err := s.db.Where("id = ? AND post_id = ?", *dto.ParentID, p.ID).First(&parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Validation("parent_id", "parent comment not found on this post")
		}
		if err != nil {
			return nil, apierror.Wrap(apierror.KindInternal, "load parent comment", err)
		}
	} else {
		dto.ParentID = nil
	}

	cm := models.CommentModel{
		PostID:    p.ID,
		ParentID:  dto.ParentID,
		Body:      body,
		Author:    strings.TrimSpace(dto.Author),
		Mail:      strings.TrimSpace(dto.Mail),
		URL:       strings.TrimSpace(dto.URL),
		IP:        ip,
		UserAgent: userAgent,
		Status:    models.CommentPending,
	}
	if user != nil {
		cm.UserID = &user.ID
		if cm.Author == "" {
			cm.Author = displayName(user)
		}
		if cm.Mail == "" {
			cm.Mail = user.Email
		}
	}
	if cm.Author == "" {
		cm.Author = "Anonymous"
	}

	if err := s.db.Create(&cm).Error; err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "create comment", err)
	}
	s.notifyPending(p, &cm)
	return s.find(cm.ID)
}

// notifyPending emails the admin about a new comment awaiting moderation.
// Delivery is best effort and never blocks or fails the request.
func (s *Service) notifyPending(p *models.PostModel, cm *models.CommentModel) {
	if s.mailer == nil || s.adminEmail == nil {
		return
	}
	to := s.adminEmail()
	if to == "" {
		return
	}
	data := mail.CommentNotifyData{
		PostTitle: p.Title,
		PostURL:   "/posts/" + p.URL,
		Author:    cm.Author,
		Body:      cm.Body,
		IP:        cm.IP,
	}
	go func() {
		if err := s.mailer.SendCommentNotify(to, data); err != nil {
			s.log.Warn("comment notification failed", zap.String("comment_id", cm.ID), zap.Error(err))
		}
	}()
}

// ListForPost returns the threaded comments of a visible post. Non-moderators
// see approved comments plus their own in any state.
func (s *Service) ListForPost(grant rbac.Grant, postIDOrSlug string, q pagination.Query) ([]models.CommentModel, response.Pagination, error) {
	p, err := s.posts.Get(grant, postIDOrSlug)
	if err != nil {
		return nil, response.Pagination{}, err
	}

	scope := func(db *gorm.DB) *gorm.DB {
		if grant.Can(rbac.PermEditComments) {
			return db
		}
		if grant.IsAnonymous() {
			return db.Where("status = ?", models.CommentApproved)
		}
		return db.Where("status = ? OR user_id = ?", models.CommentApproved, grant.UserID)
	}

	query := scope(s.db.Model(&models.CommentModel{})).
		Where("post_id = ? AND parent_id IS NULL", p.ID).
		Preload("User").
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return scope(db).Order("created_at ASC")
		}).
		Preload("Children.User").
		Order("created_at ASC")

	var comments []models.CommentModel
	page, err := pagination.Paginate(query, q, &comments)
	if err != nil {
		return nil, response.Pagination{}, apierror.Wrap(apierror.KindInternal, "list comments", err)
	}
	return comments, page, nil
}

// AdminList returns the moderation listing grouped by post, with stats
// computed over the unfiltered set so the counters stay stable while
// filtering.
func (s *Service) AdminList(grant rbac.Grant, q AdminQuery) ([]models.CommentModel, response.Pagination, Stats, error) {
	if rbac.Decide(grant, rbac.Check{Capability: rbac.PermEditComments}) == rbac.Denied {
		return nil, response.Pagination{}, Stats{}, apierror.New(apierror.KindPermission, "forbidden")
	}

	query := s.db.Model(&models.CommentModel{}).Preload("User").Preload("Post")

	if q.Status != "" {
		st, ok := normalizeStatus(q.Status)
		if !ok {
			return nil, response.Pagination{}, Stats{}, apierror.Validation("status", "unknown status")
		}
		query = query.Where("status = ?", st)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("body LIKE ? OR author LIKE ?", like, like)
	}
	if q.Author != "" {
		query = query.Where("author LIKE ?", "%"+q.Author+"%")
	}
	if q.PostID != "" {
		query = query.Where("post_id = ?", q.PostID)
	}
	if q.DateFrom != "" {
		from, err := parseTime(q.DateFrom)
		if err != nil {
			return nil, response.Pagination{}, Stats{}, apierror.Validation("date_from", "invalid date, use RFC 3339")
		}
		query = query.Where("created_at >= ?", from)
	}
	if q.DateTo != "" {
		to, err := parseTime(q.DateTo)
		if err != nil {
			return nil, response.Pagination{}, Stats{}, apierror.Validation("date_to", "invalid date, use RFC 3339")
		}
		query = query.Where("created_at <= ?", to)
	}
	query = query.Order(orderClause(q.Sort, q.Order))

	var comments []models.CommentModel
	page, err := pagination.Paginate(query, q.Page, &comments)
	if err != nil {
		return nil, response.Pagination{}, Stats{}, apierror.Wrap(apierror.KindInternal, "list comments", err)
	}

	stats, err := s.stats()
	if err != nil {
		return nil, response.Pagination{}, Stats{}, err
	}
	return comments, page, stats, nil
}

var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"status":     "status",
	"author":     "author",
}

func orderClause(sort, order string) string {
	col, ok := sortColumns[sort]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(order, "asc") {
		dir = "ASC"
	}
	return col + " " + dir
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (s *Service) stats() (Stats, error) {
	var rows []struct {
		Status models.CommentStatus
		N      int64
	}
	err := s.db.Model(&models.CommentModel{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return Stats{}, apierror.Wrap(apierror.KindInternal, "count comments", err)
	}

	var st Stats
	for _, r := range rows {
		st.Total += r.N
		switch r.Status {
		case models.CommentPending:
			st.Pending = r.N
		case models.CommentApproved:
			st.Approved = r.N
		case models.CommentSpam:
			st.Spam = r.N
		case models.CommentDenied:
			st.Denied = r.N
		}
	}
	return st, nil
}

// UpdateStatus moves a comment through the moderation state machine.
func (s *Service) UpdateStatus(grant rbac.Grant, id, status string) (*models.CommentModel, error) {
	target, ok := normalizeStatus(status)
	if !ok {
		return nil, apierror.Validation("status", "must be pending, approved, spam or denied")
	}

	cm, err := s.find(id)
	if err != nil {
		return nil, err
	}

	owner := cm.UserID != nil && *cm.UserID == grant.UserID
	if rbac.Decide(grant, rbac.Check{Capability: rbac.PermEditComments, OwnerMatch: owner}) != rbac.Editable {
		return nil, apierror.New(apierror.KindPermission, "forbidden")
	}
	if !canTransition(cm.Status, target, grant.Can(rbac.PermEditComments)) {
		return nil, apierror.Validation("status", "transition not allowed")
	}

	if err := s.db.Model(cm).Update("status", target).Error; err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "update comment status", err)
	}
	cm.Status = target
	return cm, nil
}

// Delete removes a comment and every reply under it.
func (s *Service) Delete(grant rbac.Grant, id string) error {
	cm, err := s.find(id)
	if err != nil {
		return err
	}

	owner := cm.UserID != nil && *cm.UserID == grant.UserID
	if rbac.Decide(grant, rbac.Check{Capability: rbac.PermDeleteComments, OwnerMatch: owner}) != rbac.Editable {
		return apierror.New(apierror.KindPermission, "forbidden")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		ids := []string{cm.ID}
		frontier := ids
		for len(frontier) > 0 {
			var children []string
			if err := tx.Model(&models.CommentModel{}).
				Where("parent_id IN ?", frontier).
				Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}
		return tx.Where("id IN ?", ids).Delete(&models.CommentModel{}).Error
	})
	if err != nil {
		return apierror.Wrap(apierror.KindInternal, "delete comment", err)
	}
	return nil
}

// ApplyBatch runs one moderation action over many ids. Each id is handled
// independently; failures are collected, never propagated to siblings.
func (s *Service) ApplyBatch(grant rbac.Grant, ids []string, action string) (BatchResult, error) {
	if len(ids) == 0 {
		return BatchResult{}, apierror.Validation("ids", "required")
	}

	var target string
	switch action {
	case "approve":
		target = string(models.CommentApproved)
	case "deny", "reject":
		target = string(models.CommentDenied)
	case "spam":
		target = string(models.CommentSpam)
	case "delete":
	default:
		return BatchResult{}, apierror.Validation("action", "must be approve, deny, spam or delete")
	}

	result := BatchResult{Errors: []BatchError{}}
	for _, id := range ids {
		var err error
		if action == "delete" {
			err = s.Delete(grant, id)
		} else {
			_, err = s.UpdateStatus(grant, id, target)
		}
		if err != nil {
			result.Errors = append(result.Errors, BatchError{ID: id, Message: err.Error()})
			continue
		}
		result.Processed++
	}
	return result, nil
}

func (s *Service) find(id string) (*models.CommentModel, error) {
	var cm models.CommentModel
	err := s.db.Preload("User").Preload("Post").Where("id = ?", id).First(&cm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.New(apierror.KindNotFound, "comment not found")
	}
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "load comment", err)
	}
	return &cm, nil
}

func displayName(u *models.UserModel) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
