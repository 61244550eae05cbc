package post

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"github.com/chyrplite/core/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

const excerptLength = 200

// Excerpt renders markdown to plain text and truncates it for list views.
func Excerpt(markdown string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return truncate(markdown)
	}
	plain := htmlTagPattern.ReplaceAllString(buf.String(), "")
	plain = strings.Join(strings.Fields(plain), " ")
	return truncate(plain)
}

func truncate(s string) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= excerptLength {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:excerptLength])) + "…"
}

// Render produces the API shape of a post: shared fields, the per-type
// content object, and attached uploads.
func Render(p *models.PostModel) gin.H {
	out := gin.H{
		"id":      p.ID,
		"title":   p.Title,
		"type":    p.Type,
		"url":     p.URL,
		"author":  renderAuthor(p.User),
		"content": renderContent(p),
		"tags":    tagNames(p.Tags),
		"uploads": renderUploads(p.Uploads),
	}
	if p.Category != nil {
		out["category"] = p.Category.Name
	} else {
		out["category"] = nil
	}

	if a := p.Attributes; a != nil {
		out["status"] = a.Status
		out["pinned"] = a.Pinned
		out["slug"] = a.Slug
		out["allowComments"] = a.AllowComments
		out["commentStatus"] = commentStatus(a.AllowComments)
		out["isOriginalWork"] = a.OriginalWork
		out["rightsHolder"] = a.RightsHolder
		out["license"] = a.License
		out["createdAt"] = a.CreatedAt.UTC().Format(time.RFC3339)
		out["updatedAt"] = a.UpdatedAt.UTC().Format(time.RFC3339)
		if a.ScheduledAt != nil {
			out["scheduledDate"] = a.ScheduledAt.UTC().Format(time.RFC3339)
		} else {
			out["scheduledDate"] = nil
		}
	}
	return out
}

// RenderSummary is the compact feed shape: same shared fields, an excerpt
// instead of the full text body.
func RenderSummary(p *models.PostModel) gin.H {
	out := Render(p)
	if p.Type == models.PostTypeText {
		content := out["content"].(gin.H)
		content["excerpt"] = Excerpt(p.Body)
	}
	delete(out, "uploads")
	return out
}

func renderContent(p *models.PostModel) gin.H {
	switch p.Type {
	case models.PostTypeText:
		return gin.H{"body": p.Body}
	case models.PostTypePhoto:
		return gin.H{
			"images":  uploadURLs(p.Uploads, models.UploadImage),
			"caption": p.Caption,
			"altText": p.AltText,
		}
	case models.PostTypeVideo:
		return gin.H{
			"videoUrl":       firstUploadURL(p.Uploads, models.UploadVideo, p.Source),
			"videoThumbnail": p.Thumbnail,
			"caption":        p.Caption,
			"description":    p.Description,
		}
	case models.PostTypeAudio:
		return gin.H{
			"audioUrl":         firstUploadURL(p.Uploads, models.UploadAudio, p.Source),
			"audioDescription": p.Caption,
			"description":      p.Description,
		}
	case models.PostTypeQuote:
		return gin.H{"quote": p.Quote, "source": p.QuoteSource}
	case models.PostTypeLink:
		return gin.H{
			"url":             p.LinkURL,
			"linkTitle":       p.Title,
			"linkDescription": p.Description,
			"linkThumbnail":   p.Thumbnail,
		}
	case models.PostTypeFile:
		files := make([]gin.H, 0, len(p.Uploads))
		for _, up := range p.Uploads {
			files = append(files, gin.H{
				"name": up.Name,
				"url":  up.URL,
				"size": up.Size,
				"type": up.MimeType,
			})
		}
		return gin.H{"files": files, "description": p.Description}
	}
	return gin.H{}
}

func renderAuthor(u *models.UserModel) gin.H {
	if u == nil {
		return nil
	}
	return gin.H{
		"id":       u.ID,
		"username": u.Username,
		"name":     u.FullName,
		"image":    u.Image,
		"website":  u.Website,
	}
}

func renderUploads(uploads []models.UploadModel) []gin.H {
	out := make([]gin.H, 0, len(uploads))
	for _, up := range uploads {
		out = append(out, gin.H{
			"id":       up.ID,
			"url":      up.URL,
			"name":     up.Name,
			"type":     up.Type,
			"size":     up.Size,
			"mimeType": up.MimeType,
		})
	}
	return out
}

func uploadURLs(uploads []models.UploadModel, kind models.UploadKind) []string {
	urls := make([]string, 0, len(uploads))
	for _, up := range uploads {
		if up.Type == kind {
			urls = append(urls, up.URL)
		}
	}
	return urls
}

func firstUploadURL(uploads []models.UploadModel, kind models.UploadKind, fallback string) string {
	for _, up := range uploads {
		if up.Type == kind {
			return up.URL
		}
	}
	return fallback
}

func tagNames(tags []models.TagModel) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func commentStatus(allow bool) string {
	if allow {
		return "open"
	}
	return "closed"
}
