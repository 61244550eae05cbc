package comment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/modules/rbac"
	"github.com/chyrplite/core/internal/pkg/apierror"
	"github.com/chyrplite/core/internal/pkg/pagination"
	"github.com/chyrplite/core/internal/pkg/response"
)

type MockModerator struct {
	mock.Mock
}

func (m *MockModerator) Create(grant rbac.Grant, user *models.UserModel, postIDOrSlug string, dto CreateCommentDTO, ip, userAgent string) (*models.CommentModel, error) {
	args := m.Called(grant, user, postIDOrSlug, dto, ip, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommentModel), args.Error(1)
}

func (m *MockModerator) ListForPost(grant rbac.Grant, postIDOrSlug string, q pagination.Query) ([]models.CommentModel, response.Pagination, error) {
	args := m.Called(grant, postIDOrSlug, q)
	if args.Get(0) == nil {
		return nil, response.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]models.CommentModel), args.Get(1).(response.Pagination), args.Error(2)
}

func (m *MockModerator) AdminList(grant rbac.Grant, q AdminQuery) ([]models.CommentModel, response.Pagination, Stats, error) {
	args := m.Called(grant, q)
	if args.Get(0) == nil {
		return nil, response.Pagination{}, Stats{}, args.Error(3)
	}
	return args.Get(0).([]models.CommentModel), args.Get(1).(response.Pagination), args.Get(2).(Stats), args.Error(3)
}

func (m *MockModerator) UpdateStatus(grant rbac.Grant, id, status string) (*models.CommentModel, error) {
	args := m.Called(grant, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommentModel), args.Error(1)
}

func (m *MockModerator) Delete(grant rbac.Grant, id string) error {
	return m.Called(grant, id).Error(0)
}

func (m *MockModerator) ApplyBatch(grant rbac.Grant, ids []string, action string) (BatchResult, error) {
	args := m.Called(grant, ids, action)
	return args.Get(0).(BatchResult), args.Error(1)
}

func setupRouter(svc Moderator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	resolver := rbac.NewResolver(nil, zap.NewNop())
	h := NewHandler(svc, resolver)
	noAuth := func(c *gin.Context) { c.Next() }
	h.RegisterRoutes(r.Group("/api/v1"), noAuth)
	return r
}

func TestBatchEndpointReportsPartialFailure(t *testing.T) {
	svc := new(MockModerator)
	svc.On("ApplyBatch", mock.Anything, []string{"c1", "c2"}, "approve").
		Return(BatchResult{
			Processed: 1,
			Errors:    []BatchError{{ID: "c2", Message: "comment not found"}},
		}, nil)

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/batch",
		strings.NewReader(`{"ids":["c1","c2"],"action":"approve"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Processed)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, "c2", got.Errors[0].ID)
	svc.AssertExpectations(t)
}

func TestBatchEndpointRejectsMissingFields(t *testing.T) {
	svc := new(MockModerator)
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/batch",
		strings.NewReader(`{"ids":["c1"]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ApplyBatch")
}

func TestSpamViewDefaultsToSpamStatus(t *testing.T) {
	svc := new(MockModerator)
	svc.On("AdminList", mock.Anything, mock.MatchedBy(func(q AdminQuery) bool {
		return q.Status == "spam"
	})).Return([]models.CommentModel{}, response.Pagination{}, Stats{Total: 4, Spam: 2, Approved: 1, Denied: 1}, nil)

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/spam", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Stats map[string]int64 `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Stats["rejected"])
	assert.NotContains(t, body.Stats, "denied")
	svc.AssertExpectations(t)
}

func TestSpamViewKeepsExplicitStatusFilter(t *testing.T) {
	svc := new(MockModerator)
	svc.On("AdminList", mock.Anything, mock.MatchedBy(func(q AdminQuery) bool {
		return q.Status == "approved"
	})).Return([]models.CommentModel{}, response.Pagination{}, Stats{}, nil)

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/spam?status=approved", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestUpdateStatusErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", apierror.New(apierror.KindNotFound, "comment not found"), http.StatusNotFound},
		{"forbidden", apierror.New(apierror.KindPermission, "forbidden"), http.StatusForbidden},
		{"bad transition", apierror.Validation("status", "transition not allowed"), http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockModerator)
			svc.On("UpdateStatus", mock.Anything, "c1", "approved").Return(nil, tc.err)

			r := setupRouter(svc)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/api/v1/comments/c1/status",
				strings.NewReader(`{"status":"approved"}`))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantCode, w.Code)
		})
	}
}

func TestDeleteEndpoint(t *testing.T) {
	svc := new(MockModerator)
	svc.On("Delete", mock.Anything, "c1").Return(nil)

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/comments/c1", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}
