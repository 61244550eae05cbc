package post

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/pkg/apierror"
)

func ginContextFor(t *testing.T, req *http.Request) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

func jsonRequest(t *testing.T, body string) *gin.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return ginContextFor(t, req)
}

func multipartRequest(t *testing.T, data string, files map[string][]byte) *gin.Context {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("data", data))
	for name, content := range files {
		fw, err := w.CreateFormFile(name, name+".bin")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return ginContextFor(t, req)
}

const samplePayload = `{
	"title": "Hello World",
	"type": "text",
	"content": {"body": "First post."},
	"status": "public",
	"category": "General",
	"tags": ["intro", "meta"],
	"isPinned": true,
	"commentStatus": "closed"
}`

func TestParseRequestJSONAndMultipartAgree(t *testing.T) {
	fromJSON, err := ParseRequest(jsonRequest(t, samplePayload))
	require.NoError(t, err)

	fromForm, err := ParseRequest(multipartRequest(t, samplePayload, nil))
	require.NoError(t, err)

	assert.Equal(t, fromJSON.Title, fromForm.Title)
	assert.Equal(t, fromJSON.Type, fromForm.Type)
	assert.Equal(t, fromJSON.Content, fromForm.Content)
	assert.Equal(t, fromJSON.Status, fromForm.Status)
	assert.Equal(t, fromJSON.Category, fromForm.Category)
	assert.Equal(t, fromJSON.Tags, fromForm.Tags)
	assert.Equal(t, fromJSON.Pinned, fromForm.Pinned)
	assert.Equal(t, fromJSON.AllowComments, fromForm.AllowComments)
	assert.False(t, fromForm.HasFiles())
}

func TestParseRequestDraftFields(t *testing.T) {
	draft, err := ParseRequest(jsonRequest(t, samplePayload))
	require.NoError(t, err)

	assert.Equal(t, "Hello World", draft.Title)
	assert.Equal(t, models.PostTypeText, draft.Type)
	assert.Equal(t, models.StatusPublic, draft.Status)
	assert.True(t, draft.StatusSet)
	assert.Equal(t, "General", draft.Category)
	assert.True(t, draft.CategorySet)
	require.NotNil(t, draft.Pinned)
	assert.True(t, *draft.Pinned)
	// commentStatus "closed" wins over the absent allowComments flag
	require.NotNil(t, draft.AllowComments)
	assert.False(t, *draft.AllowComments)
}

func TestParseRequestCommentStatusPrecedence(t *testing.T) {
	draft, err := ParseRequest(jsonRequest(t, `{
		"title": "t", "type": "text", "content": {"body": "b"},
		"commentStatus": "open", "allowComments": false
	}`))
	require.NoError(t, err)
	require.NotNil(t, draft.AllowComments)
	assert.True(t, *draft.AllowComments)
}

func TestParseRequestImageTypeAlias(t *testing.T) {
	draft, err := ParseRequest(jsonRequest(t, `{"title": "t", "type": "image"}`))
	require.NoError(t, err)
	assert.Equal(t, models.PostTypePhoto, draft.Type)
}

func TestParseRequestCollectsFiles(t *testing.T) {
	draft, err := ParseRequest(multipartRequest(t, `{"title": "pics", "type": "photo"}`, map[string][]byte{
		"imageFiles_0": []byte("a"),
		"imageFiles_1": []byte("b"),
		"posterImage":  []byte("p"),
	}))
	require.NoError(t, err)
	assert.Len(t, draft.Images, 2)
	require.NotNil(t, draft.Poster)
	assert.True(t, draft.HasFiles())
}

func TestParseRequestMultipartRequiresDataField(t *testing.T) {
	_, err := ParseRequest(multipartRequest(t, "", nil))
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestParseRequestBadScheduledDate(t *testing.T) {
	_, err := ParseRequest(jsonRequest(t, `{
		"title": "t", "type": "text", "content": {"body": "b"},
		"status": "scheduled", "scheduledDate": "next tuesday"
	}`))
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}
