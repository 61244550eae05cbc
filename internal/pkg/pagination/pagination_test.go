package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func queryContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  Query
	}{
		{"defaults", "", Query{Page: 1, Size: 10}},
		{"explicit", "page=3&limit=25", Query{Page: 3, Size: 25}},
		{"size alias", "page=2&size=5", Query{Page: 2, Size: 5}},
		{"limit wins over size", "limit=20&size=5", Query{Page: 1, Size: 20}},
		{"clamped high", "limit=5000", Query{Page: 1, Size: 100}},
		{"clamped low", "page=0&limit=-1", Query{Page: 1, Size: 10}},
		{"garbage", "page=abc&limit=xyz", Query{Page: 1, Size: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FromContext(queryContext(t, tc.query)))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Query{Page: 1, Size: 10}.Offset())
	assert.Equal(t, 40, Query{Page: 5, Size: 10}.Offset())
}
