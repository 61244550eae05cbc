package post

import (
	"time"

	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/pkg/apierror"
)

var validTypes = map[models.PostType]struct{}{
	models.PostTypeText:  {},
	models.PostTypePhoto: {},
	models.PostTypeVideo: {},
	models.PostTypeAudio: {},
	models.PostTypeQuote: {},
	models.PostTypeLink:  {},
	models.PostTypeFile:  {},
}

var validStatuses = map[models.PostStatus]struct{}{
	models.StatusDraft:     {},
	models.StatusPublic:    {},
	models.StatusPrivate:   {},
	models.StatusScheduled: {},
	models.StatusOpen:      {},
	models.StatusAdmin:     {},
	models.StatusMember:    {},
	models.StatusFriend:    {},
	models.StatusGuest:     {},
	models.StatusBanned:    {},
}

// validateCreate checks a draft for ingestion in order: type, type-specific
// content, status legality and schedule consistency.
func validateCreate(d *PostDraft) error {
	if d.Title == "" {
		return apierror.Validation("title", "title is required")
	}
	if d.Type == "" {
		return apierror.Validation("type", "post type is required")
	}
	if _, ok := validTypes[d.Type]; !ok {
		return apierror.Validation("type", "invalid post type")
	}

	switch d.Type {
	case models.PostTypeText:
		if d.Content.Body == "" {
			return apierror.Validation("body", "body is required for text posts")
		}
	case models.PostTypeQuote:
		if d.Content.Quote == "" {
			return apierror.Validation("quote", "quote is required for quote posts")
		}
	case models.PostTypeLink:
		if d.Content.URL == "" {
			return apierror.Validation("url", "url is required for link posts")
		}
	case models.PostTypePhoto:
		if len(d.Images) == 0 && len(d.Content.Images) == 0 {
			return apierror.Validation("imageFiles", "at least one image is required for photo posts")
		}
	case models.PostTypeVideo:
		if d.Video == nil && d.Content.VideoURL == "" {
			return apierror.Validation("videoFile", "a video file or video url is required for video posts")
		}
	case models.PostTypeAudio:
		if d.Audio == nil {
			return apierror.Validation("audioFile", "an audio file is required for audio posts")
		}
	case models.PostTypeFile:
		if len(d.Files) == 0 {
			return apierror.Validation("files", "at least one file is required for file posts")
		}
	}

	return validateStatus(effectiveStatus(d), d)
}

// validateUpdate checks only what the draft carries. Explicitly empty
// required content is rejected, absent fields are left alone.
func validateUpdate(d *PostDraft, current *models.PostModel) error {
	if d.Type != "" {
		if _, ok := validTypes[d.Type]; !ok {
			return apierror.Validation("type", "invalid post type")
		}
	}

	typ := d.Type
	if typ == "" {
		typ = current.Type
	}
	switch typ {
	case models.PostTypeText:
		if d.Content.Body == "" && current.Body == "" {
			return apierror.Validation("body", "body cannot be empty for text posts")
		}
	case models.PostTypeQuote:
		if d.Content.Quote == "" && current.Quote == "" {
			return apierror.Validation("quote", "quote cannot be empty for quote posts")
		}
	case models.PostTypeLink:
		if d.Content.URL == "" && current.LinkURL == "" {
			return apierror.Validation("url", "url cannot be empty for link posts")
		}
	}

	status := current.Attributes.Status
	if d.StatusSet {
		status = d.Status
	}
	if _, ok := validStatuses[status]; !ok {
		return apierror.Validation("status", "invalid status")
	}
	if status == models.StatusScheduled {
		when := d.ScheduledAt
		if !d.ScheduledSet {
			when = current.Attributes.ScheduledAt
		}
		if when == nil {
			return apierror.Validation("scheduledDate", "scheduled posts require a scheduled date")
		}
		// A date kept from the stored attributes may already be due; only a
		// date the draft sends has to lie in the future.
		if d.ScheduledSet && !when.After(time.Now()) {
			return apierror.Validation("scheduledDate", "scheduled date must be in the future")
		}
		return nil
	}
	if d.ScheduledSet && d.ScheduledAt != nil {
		return apierror.Validation("scheduledDate", "only scheduled posts may carry a scheduled date")
	}
	return nil
}

func validateStatus(status models.PostStatus, d *PostDraft) error {
	if _, ok := validStatuses[status]; !ok {
		return apierror.Validation("status", "invalid status")
	}
	if status == models.StatusScheduled {
		if d.ScheduledAt == nil {
			return apierror.Validation("scheduledDate", "scheduled posts require a scheduled date")
		}
		if !d.ScheduledAt.After(time.Now()) {
			return apierror.Validation("scheduledDate", "scheduled date must be in the future")
		}
		return nil
	}
	if d.ScheduledAt != nil {
		return apierror.Validation("scheduledDate", "only scheduled posts may carry a scheduled date")
	}
	return nil
}

// effectiveStatus is the status a new post will be stored with: the draft's
// explicit status, or draft when none was sent.
func effectiveStatus(d *PostDraft) models.PostStatus {
	if d.StatusSet {
		return d.Status
	}
	return models.StatusDraft
}
