package post

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/pkg/apierror"
)

func validationField(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	var ae *apierror.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, apierror.KindValidation, ae.Kind)
	require.Len(t, ae.Details, 1)
	for field := range ae.Details {
		return field
	}
	return ""
}

func textDraft() *PostDraft {
	return &PostDraft{
		Title:   "A post",
		Type:    models.PostTypeText,
		Content: Content{Body: "hello"},
	}
}

func TestValidateCreateRequiredFields(t *testing.T) {
	d := textDraft()
	d.Title = ""
	assert.Equal(t, "title", validationField(t, validateCreate(d)))

	d = textDraft()
	d.Type = ""
	assert.Equal(t, "type", validationField(t, validateCreate(d)))

	d = textDraft()
	d.Type = "carousel"
	assert.Equal(t, "type", validationField(t, validateCreate(d)))

	d = textDraft()
	d.Content.Body = ""
	assert.Equal(t, "body", validationField(t, validateCreate(d)))
}

func TestValidateCreateTypeContent(t *testing.T) {
	quote := &PostDraft{Title: "q", Type: models.PostTypeQuote}
	assert.Equal(t, "quote", validationField(t, validateCreate(quote)))

	link := &PostDraft{Title: "l", Type: models.PostTypeLink}
	assert.Equal(t, "url", validationField(t, validateCreate(link)))

	photo := &PostDraft{Title: "p", Type: models.PostTypePhoto}
	assert.Equal(t, "imageFiles", validationField(t, validateCreate(photo)))

	// An existing image reference satisfies a photo post without uploads.
	photo.Content.Images = []string{"/files/uploads/images/a.jpg"}
	assert.NoError(t, validateCreate(photo))

	video := &PostDraft{Title: "v", Type: models.PostTypeVideo}
	assert.Equal(t, "videoFile", validationField(t, validateCreate(video)))
	video.Content.VideoURL = "https://example.com/v.mp4"
	assert.NoError(t, validateCreate(video))
}

func TestValidateCreateDefaultsToDraftStatus(t *testing.T) {
	d := textDraft()
	assert.NoError(t, validateCreate(d))
	assert.Equal(t, models.StatusDraft, effectiveStatus(d))
}

func TestValidateCreateScheduled(t *testing.T) {
	d := textDraft()
	d.Status = models.StatusScheduled
	d.StatusSet = true
	assert.Equal(t, "scheduledDate", validationField(t, validateCreate(d)))

	past := time.Now().Add(-time.Hour)
	d.ScheduledAt = &past
	assert.Equal(t, "scheduledDate", validationField(t, validateCreate(d)))

	future := time.Now().Add(time.Hour)
	d.ScheduledAt = &future
	assert.NoError(t, validateCreate(d))
}

func TestValidateCreateRejectsStrayScheduledDate(t *testing.T) {
	d := textDraft()
	d.Status = models.StatusPublic
	d.StatusSet = true
	at := time.Now().Add(time.Hour)
	d.ScheduledAt = &at
	assert.Equal(t, "scheduledDate", validationField(t, validateCreate(d)))
}

func TestValidateCreateGroupStatuses(t *testing.T) {
	for _, status := range []models.PostStatus{
		models.StatusFriend, models.StatusMember, models.StatusAdmin,
		models.StatusPrivate, models.StatusGuest,
	} {
		d := textDraft()
		d.Status = status
		d.StatusSet = true
		assert.NoError(t, validateCreate(d), string(status))
	}

	d := textDraft()
	d.Status = "vip"
	d.StatusSet = true
	assert.Equal(t, "status", validationField(t, validateCreate(d)))
}

func TestValidateUpdate(t *testing.T) {
	current := &models.PostModel{
		Type: models.PostTypeText,
		Body: "existing",
		Attributes: &models.PostAttributesModel{
			Status: models.StatusPublic,
		},
	}

	// An empty draft changes nothing and passes.
	assert.NoError(t, validateUpdate(&PostDraft{}, current))

	// Switching to an unknown type is rejected.
	bad := &PostDraft{Type: "carousel"}
	assert.Equal(t, "type", validationField(t, validateUpdate(bad, current)))

	// A draft cannot blank out required content when the stored post has none.
	empty := &models.PostModel{
		Type:       models.PostTypeText,
		Attributes: &models.PostAttributesModel{Status: models.StatusDraft},
	}
	assert.Equal(t, "body", validationField(t, validateUpdate(&PostDraft{}, empty)))

	// Moving to scheduled needs a future date.
	sched := &PostDraft{Status: models.StatusScheduled, StatusSet: true}
	assert.Equal(t, "scheduledDate", validationField(t, validateUpdate(sched, current)))
}

func TestValidateUpdateScheduledPost(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	current := &models.PostModel{
		Type: models.PostTypeText,
		Body: "existing",
		Attributes: &models.PostAttributesModel{
			Status:      models.StatusScheduled,
			ScheduledAt: &future,
		},
	}

	// A title-only edit keeps the stored schedule date and passes.
	assert.NoError(t, validateUpdate(&PostDraft{Title: "new title"}, current))

	// A schedule date the draft sends must still lie in the future.
	past := time.Now().Add(-time.Hour)
	late := &PostDraft{ScheduledAt: &past, ScheduledSet: true}
	assert.Equal(t, "scheduledDate", validationField(t, validateUpdate(late, current)))

	// A stored date that has come due does not block unrelated edits.
	due := &models.PostModel{
		Type: models.PostTypeText,
		Body: "existing",
		Attributes: &models.PostAttributesModel{
			Status:      models.StatusScheduled,
			ScheduledAt: &past,
		},
	}
	assert.NoError(t, validateUpdate(&PostDraft{Title: "new title"}, due))

	// Demoting to draft without resending the date passes.
	demote := &PostDraft{Status: models.StatusDraft, StatusSet: true}
	assert.NoError(t, validateUpdate(demote, current))
}

func TestApplyAttributesClearsScheduleOnDemotion(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	attrs := &models.PostAttributesModel{
		Status:      models.StatusScheduled,
		ScheduledAt: &future,
	}

	applyAttributes(attrs, &PostDraft{Status: models.StatusDraft, StatusSet: true})
	assert.Equal(t, models.StatusDraft, attrs.Status)
	assert.Nil(t, attrs.ScheduledAt)

	// Staying scheduled keeps the date.
	attrs = &models.PostAttributesModel{
		Status:      models.StatusScheduled,
		ScheduledAt: &future,
	}
	applyAttributes(attrs, &PostDraft{Title: "ignored"})
	assert.Equal(t, &future, attrs.ScheduledAt)
}
