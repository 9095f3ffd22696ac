package responses

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/squadup/internal/common"
)

func TestStatusForKind(t *testing.T) {
	cases := map[common.Kind]int{
		common.KindNotFound:         http.StatusNotFound,
		common.KindConflict:         http.StatusConflict,
		common.KindCapacityExceeded: http.StatusConflict,
		common.KindForbidden:        http.StatusForbidden,
		common.KindInvalidOperation: http.StatusBadRequest,
		common.KindStorage:          http.StatusInternalServerError,
		common.KindUnknown:          http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusForKind(kind), kind.String())
	}
}

func TestSendAppError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	SendAppError(c, common.CapacityExceeded("tournament %d is full", 7))
	require.Equal(t, http.StatusConflict, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "capacity_exceeded", resp.Kind)
	assert.Contains(t, resp.Message, "tournament 7 is full")
	assert.True(t, c.IsAborted())

	// Storage detail stays out of the response body.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	SendAppError(c, common.StorageError(errors.New("pq: connection refused")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestSendPaginated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SendPaginated(c, http.StatusOK, "", []int{1, 2}, 25, 2, 10)
	var resp PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	p := resp.Pagination
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)
	require.NotNil(t, p.NextPage)
	assert.Equal(t, 3, *p.NextPage)
	require.NotNil(t, p.PreviousPage)
	assert.Equal(t, 1, *p.PreviousPage)
}
