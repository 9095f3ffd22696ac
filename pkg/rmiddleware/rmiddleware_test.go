package rmiddleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/DhavalSuthar-24/squadup/internal/common"
)

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	roles := map[string]common.Role{
		"owner":   common.RoleOwner,
		"manager": common.RoleManager,
		"player":  common.RoleParticipant,
	}
	lookup := func(_ context.Context, resourceID uint, userID string) (common.Role, error) {
		if resourceID == 13 {
			return "", errors.New("database unavailable")
		}
		role, ok := roles[userID]
		if !ok {
			return "", common.NotFound("no role")
		}
		return role, nil
	}

	do := func(userID, id string) *httptest.ResponseRecorder {
		r := gin.New()
		r.PUT("/tournaments/:tournament_id", func(c *gin.Context) {
			if userID != "" {
				c.Set(common.ContextUserIDKey, userID)
			}
			c.Next()
		}, ManagerMiddleware(lookup, "tournament_id"), func(c *gin.Context) {
			c.String(http.StatusOK, c.MustGet(ContextRoleKey).(common.Role).String())
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/tournaments/"+id, nil))
		return w
	}

	w := do("owner", "1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner", w.Body.String())

	assert.Equal(t, http.StatusOK, do("manager", "1").Code)
	assert.Equal(t, http.StatusForbidden, do("player", "1").Code)
	assert.Equal(t, http.StatusForbidden, do("stranger", "1").Code)
	assert.Equal(t, http.StatusUnauthorized, do("", "1").Code)
	assert.Equal(t, http.StatusBadRequest, do("owner", "abc").Code)
	assert.Equal(t, http.StatusInternalServerError, do("owner", "13").Code)
}
