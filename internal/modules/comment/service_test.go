package comment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chyrplite/core/internal/models"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want models.CommentStatus
		ok   bool
	}{
		{"pending", models.CommentPending, true},
		{"APPROVED", models.CommentApproved, true},
		{" spam ", models.CommentSpam, true},
		{"denied", models.CommentDenied, true},
		{"rejected", models.CommentDenied, true},
		{"deleted", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := normalizeStatus(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}

func TestCanTransition(t *testing.T) {
	// Moderators move comments freely between states.
	assert.True(t, canTransition(models.CommentPending, models.CommentApproved, true))
	assert.True(t, canTransition(models.CommentApproved, models.CommentSpam, true))
	assert.True(t, canTransition(models.CommentSpam, models.CommentApproved, true))
	assert.True(t, canTransition(models.CommentDenied, models.CommentPending, true))

	// Non-moderators may only withdraw a pending comment. Approving your own
	// comment would sidestep moderation.
	assert.True(t, canTransition(models.CommentPending, models.CommentDenied, false))
	assert.False(t, canTransition(models.CommentPending, models.CommentApproved, false))
	assert.False(t, canTransition(models.CommentPending, models.CommentSpam, false))
	assert.False(t, canTransition(models.CommentApproved, models.CommentSpam, false))
	assert.False(t, canTransition(models.CommentSpam, models.CommentApproved, false))

	assert.False(t, canTransition(models.CommentPending, "deleted", true))
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "created_at DESC", orderClause("created_at", "desc"))
	assert.Equal(t, "author ASC", orderClause("author", "asc"))
	// Unknown sort columns never reach the query verbatim.
	assert.Equal(t, "created_at DESC", orderClause("body; DROP TABLE comments", "desc"))
	assert.Equal(t, "created_at DESC", orderClause("", "sideways"))
}

func TestParseTime(t *testing.T) {
	_, err := parseTime("2026-08-31T10:00:00Z")
	assert.NoError(t, err)
	_, err = parseTime("2026-08-31")
	assert.NoError(t, err)
	_, err = parseTime("yesterday")
	assert.Error(t, err)
}
