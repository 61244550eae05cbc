package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chyrplite/core/internal/pkg/response"
)

const (
	defaultSize = 10
	maxSize     = 100
)

// Query is a validated page request. The zero value is not usable; build one
// with FromContext or set both fields explicitly.
type Query struct {
	Page int
	Size int
}

func (q Query) Offset() int { return (q.Page - 1) * q.Size }

// FromContext reads `page` and `limit` (or `size`) from the query string,
// clamping out-of-range values instead of rejecting them.
func FromContext(c *gin.Context) Query {
	q := Query{
		Page: atoiOr(c.Query("page"), 1),
		Size: atoiOr(c.DefaultQuery("limit", c.Query("size")), defaultSize),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.Size < 1:
		q.Size = defaultSize
	case q.Size > maxSize:
		q.Size = maxSize
	}
	return q
}

// Paginate counts the scoped query, fetches one page into dest and returns
// the page metadata. An empty result set skips the fetch.
func Paginate[T any](db *gorm.DB, q Query, dest *[]T) (response.Pagination, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return response.Pagination{}, err
	}

	pages := int((total + int64(q.Size) - 1) / int64(q.Size))
	meta := response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   pages,
		Size:        q.Size,
		HasNextPage: q.Page < pages,
	}
	if total == 0 {
		*dest = []T{}
		return meta, nil
	}

	if err := db.Offset(q.Offset()).Limit(q.Size).Find(dest).Error; err != nil {
		return response.Pagination{}, err
	}
	return meta, nil
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
