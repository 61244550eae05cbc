package post

import (
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/pkg/blob"
)

func TestExcerptStripsMarkup(t *testing.T) {
	got := Excerpt("# Heading\n\nSome **bold** text with a [link](https://example.com).")
	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "<")
	assert.Contains(t, got, "Heading")
	assert.Contains(t, got, "bold")
	assert.Contains(t, got, "link")
}

func TestExcerptTruncatesLongBodies(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := Excerpt(long)
	assert.LessOrEqual(t, len([]rune(got)), 201)
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestExcerptShortBodyUntouched(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short"))
}

func TestRenderShapes(t *testing.T) {
	p := &models.PostModel{
		Type:  models.PostTypeQuote,
		Title: "Said once",
		URL:   "said-once",
		Quote: "Less is more.",
		Attributes: &models.PostAttributesModel{
			Status:        models.StatusPublic,
			Slug:          "said-once",
			AllowComments: true,
			License:       "All Rights Reserved",
		},
	}
	out := Render(p)
	assert.Equal(t, "Said once", out["title"])
	assert.Equal(t, models.PostTypeQuote, out["type"])
	assert.Equal(t, "open", out["commentStatus"])

	content, ok := out["content"].(gin.H)
	require.True(t, ok)
	assert.Equal(t, "Less is more.", content["quote"])
}

func TestVideoSourceRoundTrip(t *testing.T) {
	draft := &PostDraft{
		Type:    models.PostTypeVideo,
		Content: Content{VideoURL: "https://example.com/clip.mp4"},
	}
	p := &models.PostModel{Type: models.PostTypeVideo}
	applyContent(p, draft)
	assert.Equal(t, "https://example.com/clip.mp4", p.Source)
	assert.Empty(t, p.LinkURL)

	p.Attributes = &models.PostAttributesModel{Status: models.StatusPublic}
	content, ok := Render(p)["content"].(gin.H)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/clip.mp4", content["videoUrl"])

	// An uploaded file wins over the external source.
	p.Uploads = []models.UploadModel{{Type: models.UploadVideo, URL: "/static/videos/clip.mp4"}}
	content, ok = Render(p)["content"].(gin.H)
	require.True(t, ok)
	assert.Equal(t, "/static/videos/clip.mp4", content["videoUrl"])
}

func TestStagedMediaSetsSource(t *testing.T) {
	p := &models.PostModel{Type: models.PostTypeAudio}
	applyStagedMedia(p, []stagedUpload{
		{kind: models.UploadAudio, ref: blob.Ref{URL: "/static/audio/track.mp3"}},
	})
	assert.Equal(t, "/static/audio/track.mp3", p.Source)
}
