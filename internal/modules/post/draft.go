package post

import (
	"encoding/json"
	"mime/multipart"
	"strings"
	"time"

	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/pkg/apierror"
	"github.com/gin-gonic/gin"
)

// Content carries the type-specific fields of a submission. Only the fields
// belonging to the declared post type are read.
type Content struct {
	Body             string   `json:"body"`
	Caption          string   `json:"caption"`
	AltText          string   `json:"altText"`
	Description      string   `json:"description"`
	AudioDescription string   `json:"audioDescription"`
	Quote            string   `json:"quote"`
	Source           string   `json:"source"`
	URL              string   `json:"url"`
	VideoURL         string   `json:"videoUrl"`
	VideoThumbnail   string   `json:"videoThumbnail"`
	LinkThumbnail    string   `json:"linkThumbnail"`
	Images           []string `json:"images"`
}

// PostDraft is the normalized, encoding-independent form of an incoming
// submission. Both parsers produce it; validation and persistence never
// branch on the wire encoding again.
type PostDraft struct {
	Title   string
	Type    models.PostType
	Content Content

	Status    models.PostStatus
	StatusSet bool

	Category    string
	CategorySet bool

	CustomSlug string
	Tags       []string
	TagsSet    bool

	Pinned        *bool
	ScheduledAt   *time.Time
	ScheduledSet  bool
	AllowComments *bool
	OriginalWork  *bool
	RightsHolder  *string
	License       *string

	Images   []*multipart.FileHeader
	Video    *multipart.FileHeader
	Audio    *multipart.FileHeader
	Files    []*multipart.FileHeader
	Poster   *multipart.FileHeader
	Captions []*multipart.FileHeader
}

// HasFiles reports whether any binary part accompanies the draft.
func (d *PostDraft) HasFiles() bool {
	return len(d.Images) > 0 || d.Video != nil || d.Audio != nil ||
		len(d.Files) > 0 || d.Poster != nil || len(d.Captions) > 0
}

// payload is the JSON shape shared by the bare JSON body and the multipart
// "data" field. Pointer fields distinguish absent from zero for updates.
type payload struct {
	Title          string   `json:"title"`
	Type           string   `json:"type"`
	Content        Content  `json:"content"`
	Status         *string  `json:"status"`
	Category       *string  `json:"category"`
	Slug           string   `json:"slug"`
	Tags           []string `json:"tags"`
	IsPinned       *bool    `json:"isPinned"`
	ScheduledDate  *string  `json:"scheduledDate"`
	CommentStatus  *string  `json:"commentStatus"`
	AllowComments  *bool    `json:"allowComments"`
	IsOriginalWork *bool    `json:"isOriginalWork"`
	RightsHolder   *string  `json:"rightsHolder"`
	License        *string  `json:"license"`
}

// ParseRequest decodes the request into a draft, choosing the multipart
// parser when the body carries form data and the JSON parser otherwise.
func ParseRequest(c *gin.Context) (*PostDraft, error) {
	contentType := c.GetHeader("Content-Type")
	if strings.Contains(contentType, "multipart/form-data") {
		return parseMultipart(c)
	}
	return parseJSON(c)
}

func parseJSON(c *gin.Context) (*PostDraft, error) {
	var p payload
	if err := c.ShouldBindJSON(&p); err != nil {
		return nil, apierror.Validation("body", "request body must be valid json")
	}
	return draftFromPayload(&p)
}

func parseMultipart(c *gin.Context) (*PostDraft, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apierror.Validation("body", "invalid multipart form")
	}

	dataValues := form.Value["data"]
	if len(dataValues) == 0 || strings.TrimSpace(dataValues[0]) == "" {
		return nil, apierror.Validation("data", "missing 'data' field in form")
	}
	var p payload
	if err := json.Unmarshal([]byte(dataValues[0]), &p); err != nil {
		return nil, apierror.Validation("data", "invalid json in 'data' field")
	}

	draft, err := draftFromPayload(&p)
	if err != nil {
		return nil, err
	}

	draft.Images = collectFiles(form, "imageFiles")
	draft.Files = collectFiles(form, "files")
	draft.Captions = collectFiles(form, "captionFiles")
	draft.Video = firstFile(form, "videoFile")
	draft.Audio = firstFile(form, "audioFile")
	draft.Poster = firstFile(form, "posterImage")
	if single := firstFile(form, "captionFile"); single != nil {
		draft.Captions = append(draft.Captions, single)
	}
	return draft, nil
}

// collectFiles gathers list-field parts. Clients send either the bare field
// name repeated or indexed variants like imageFiles_0, imageFiles_1.
func collectFiles(form *multipart.Form, field string) []*multipart.FileHeader {
	var out []*multipart.FileHeader
	for name, headers := range form.File {
		if name != field && !strings.HasPrefix(name, field+"_") {
			continue
		}
		for _, h := range headers {
			if h != nil && h.Filename != "" {
				out = append(out, h)
			}
		}
	}
	return out
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	headers := form.File[field]
	if len(headers) == 0 || headers[0] == nil || headers[0].Filename == "" {
		return nil
	}
	return headers[0]
}

func draftFromPayload(p *payload) (*PostDraft, error) {
	draft := &PostDraft{
		Title:        strings.TrimSpace(p.Title),
		Type:         normalizeType(p.Type),
		Content:      p.Content,
		CustomSlug:   p.Slug,
		Tags:         p.Tags,
		TagsSet:      p.Tags != nil,
		Pinned:       p.IsPinned,
		OriginalWork: p.IsOriginalWork,
		RightsHolder: p.RightsHolder,
		License:      p.License,
	}

	if p.Status != nil {
		draft.Status = models.PostStatus(strings.ToLower(strings.TrimSpace(*p.Status)))
		draft.StatusSet = true
	}
	if p.Category != nil {
		draft.Category = strings.TrimSpace(*p.Category)
		draft.CategorySet = true
	}
	if p.ScheduledDate != nil {
		draft.ScheduledSet = true
		if *p.ScheduledDate != "" {
			at, err := time.Parse(time.RFC3339, *p.ScheduledDate)
			if err != nil {
				return nil, apierror.Validation("scheduledDate", "must be an RFC 3339 timestamp")
			}
			draft.ScheduledAt = &at
		}
	}

	// commentStatus open/closed takes precedence over the allowComments flag.
	if p.CommentStatus != nil {
		allow := *p.CommentStatus == "open"
		draft.AllowComments = &allow
	} else if p.AllowComments != nil {
		draft.AllowComments = p.AllowComments
	}

	return draft, nil
}

// normalizeType folds the legacy "image" alias into photo.
func normalizeType(t string) models.PostType {
	typ := models.PostType(strings.ToLower(strings.TrimSpace(t)))
	if typ == "image" {
		return models.PostTypePhoto
	}
	return typ
}
