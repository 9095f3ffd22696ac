package common

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleOwner.AtLeast(RoleManager))
	assert.True(t, RoleManager.AtLeast(RoleManager))
	assert.False(t, RoleParticipant.AtLeast(RoleManager))
	assert.False(t, Role("captain").AtLeast(RoleParticipant))

	assert.True(t, RoleOwner.Outranks(RoleManager))
	assert.False(t, RoleManager.Outranks(RoleManager))
	assert.True(t, RoleManager.Outranks(RoleParticipant))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Manager ")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, r)

	_, err = ParseRole("captain")
	assert.Error(t, err)
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("join: %w", Conflict("already a member"))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, IsKind(err, KindConflict))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "already a member", Conflict("already a member").Error())
}

func TestStorageErrorPassesTypedErrorsThrough(t *testing.T) {
	nf := NotFound("team %d not found", 7)
	assert.Same(t, nf, StorageError(nf))

	wrapped := StorageError(errors.New("connection reset"))
	assert.Equal(t, KindStorage, KindOf(wrapped))
	assert.Contains(t, wrapped.Error(), "connection reset")
	assert.NoError(t, StorageError(nil))
}

func TestTranslateWriteError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "team_memberships_pkey"}
	err := TranslateWriteError(fmt.Errorf("insert: %w", pgErr), "already a member")
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "already a member", err.Error())

	err = TranslateWriteError(gorm.ErrDuplicatedKey, "dup")
	assert.Equal(t, KindConflict, KindOf(err))

	err = TranslateWriteError(&pgconn.PgError{Code: "23503"}, "dup")
	assert.Equal(t, KindStorage, KindOf(err))

	assert.NoError(t, TranslateWriteError(nil, "dup"))
}

func TestNormalizeName(t *testing.T) {
	name, err := NormalizeName("team", "  Night Owls \t")
	require.NoError(t, err)
	assert.Equal(t, "Night Owls", name)

	name, err = NormalizeName("team", " Éço ")
	require.NoError(t, err)
	assert.Equal(t, "Éço", name)

	for _, bad := range []string{"", "    ", "  a ", "ab", strings.Repeat("x", MaxNameLength+1)} {
		_, err := NormalizeName("tournament", bad)
		assert.True(t, IsKind(err, KindInvalidOperation), "%q", bad)
	}
}

func TestParsePage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query string
		want  Page
	}{
		{"", Page{Page: 1, Limit: DefaultPageSize}},
		{"?page=3&limit=20", Page{Page: 3, Limit: 20}},
		{"?page=-1&limit=0", Page{Page: 1, Limit: DefaultPageSize}},
		{"?limit=5000", Page{Page: 1, Limit: MaxPageSize}},
		{"?page=abc", Page{Page: 1, Limit: DefaultPageSize}},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/teams"+tc.query, nil)
		assert.Equal(t, tc.want, ParsePage(c), tc.query)
	}
	assert.Equal(t, 40, Page{Page: 3, Limit: 20}.Offset())
}

func TestGetUserIDFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GetUserIDFromContext(c)
	assert.Error(t, err)

	c.Set(ContextUserIDKey, "user_2abc")
	id, err := GetUserIDFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", id)
}
