package comment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chyrplite/core/internal/models"
)

func commentWith(post *models.PostModel, status models.CommentStatus) models.CommentModel {
	cm := models.CommentModel{
		PostID: post.ID,
		Post:   post,
		Body:   "hello",
		Author: "Visitor",
		Status: status,
	}
	return cm
}

func TestRenderSpamViewMapsDeniedToRejected(t *testing.T) {
	p := &models.PostModel{Title: "A post", URL: "a-post"}
	cm := commentWith(p, models.CommentDenied)

	assert.Equal(t, "denied", Render(&cm, false)["status"])
	assert.Equal(t, "rejected", Render(&cm, true)["status"])

	// Other statuses are untouched either way.
	cm.Status = models.CommentSpam
	assert.Equal(t, "spam", Render(&cm, true)["status"])
}

func TestRenderPrefersAccountIdentity(t *testing.T) {
	cm := models.CommentModel{Body: "hi", Author: "typed name", Mail: "typed@example.com"}
	out := Render(&cm, false)
	assert.Equal(t, "typed name", out["author"])
	assert.Equal(t, "typed@example.com", out["email"])

	cm.User = &models.UserModel{Username: "alice", FullName: "Alice A", Email: "alice@example.com"}
	out = Render(&cm, false)
	assert.Equal(t, "Alice A", out["author"])
	assert.Equal(t, "alice@example.com", out["email"])

	anon := models.CommentModel{Body: "hi"}
	assert.Equal(t, "Anonymous", Render(&anon, false)["author"])
}

func TestGroupByPost(t *testing.T) {
	p1 := &models.PostModel{Title: "First", URL: "first"}
	p1.ID = "post-1"
	p2 := &models.PostModel{Title: "Second", URL: "second"}
	p2.ID = "post-2"

	comments := []models.CommentModel{
		commentWith(p1, models.CommentPending),
		commentWith(p2, models.CommentApproved),
		commentWith(p1, models.CommentSpam),
	}

	groups := GroupByPost(comments, false)
	require.Len(t, groups, 2)

	assert.Equal(t, "post-1", groups[0].Post["id"])
	assert.Equal(t, 2, groups[0].Count)
	require.Len(t, groups[0].Comments, 2)

	assert.Equal(t, "post-2", groups[1].Post["id"])
	assert.Equal(t, 1, groups[1].Count)
}

func TestGroupByPostEmpty(t *testing.T) {
	groups := GroupByPost(nil, false)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}
