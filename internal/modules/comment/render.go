package comment

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chyrplite/core/internal/models"
)

// PostGroup is one post's slice of a moderation listing.
type PostGroup struct {
	Post     gin.H   `json:"post"`
	Comments []gin.H `json:"comments"`
	Count    int     `json:"commentCount"`
}

// Render formats a comment for API responses. The spam view shows denied
// comments under the label "rejected"; the stored status never changes.
func Render(cm *models.CommentModel, spamView bool) gin.H {
	out := gin.H{
		"id":         cm.ID,
		"post_id":    cm.PostID,
		"parent_id":  cm.ParentID,
		"body":       cm.Body,
		"author":     renderAuthor(cm),
		"email":      renderMail(cm),
		"url":        renderURL(cm),
		"ip":         cm.IP,
		"status":     renderStatus(cm.Status, spamView),
		"created_at": cm.CreatedAt.Format(time.RFC3339),
		"updated_at": cm.UpdatedAt.Format(time.RFC3339),
	}
	if len(cm.Children) > 0 {
		children := make([]gin.H, 0, len(cm.Children))
		for i := range cm.Children {
			children = append(children, Render(&cm.Children[i], spamView))
		}
		out["children"] = children
	}
	return out
}

// GroupByPost folds a flat moderation listing into per-post groups,
// preserving the listing order.
func GroupByPost(comments []models.CommentModel, spamView bool) []PostGroup {
	groups := make([]PostGroup, 0)
	index := make(map[string]int)

	for i := range comments {
		cm := &comments[i]
		gi, ok := index[cm.PostID]
		if !ok {
			gi = len(groups)
			index[cm.PostID] = gi
			groups = append(groups, PostGroup{
				Post:     renderPostInfo(cm),
				Comments: make([]gin.H, 0, 1),
			})
		}
		groups[gi].Comments = append(groups[gi].Comments, Render(cm, spamView))
		groups[gi].Count++
	}
	return groups
}

func renderStatus(st models.CommentStatus, spamView bool) string {
	if spamView && st == models.CommentDenied {
		return "rejected"
	}
	return string(st)
}

func renderPostInfo(cm *models.CommentModel) gin.H {
	if cm.Post == nil {
		return gin.H{"id": cm.PostID, "title": "", "url": ""}
	}
	return gin.H{"id": cm.Post.ID, "title": cm.Post.Title, "url": cm.Post.URL}
}

func renderAuthor(cm *models.CommentModel) string {
	if cm.User != nil {
		return displayName(cm.User)
	}
	if cm.Author != "" {
		return cm.Author
	}
	return "Anonymous"
}

func renderMail(cm *models.CommentModel) string {
	if cm.User != nil && cm.User.Email != "" {
		return cm.User.Email
	}
	return cm.Mail
}

func renderURL(cm *models.CommentModel) string {
	if cm.User != nil && cm.User.Website != "" {
		return cm.User.Website
	}
	return cm.URL
}
