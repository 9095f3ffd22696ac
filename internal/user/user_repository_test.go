package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/internal/relation"
	"github.com/DhavalSuthar-24/squadup/internal/team"
	"github.com/DhavalSuthar-24/squadup/internal/testutil"
	"github.com/DhavalSuthar-24/squadup/internal/tournament"
	"github.com/DhavalSuthar-24/squadup/internal/user"
)

func newRepo(t *testing.T, users ...user.User) (user.UserRepository, *gorm.DB) {
	db := testutil.OpenDB(t,
		&user.User{}, &relation.Follow{},
		&team.Team{}, &team.TeamMembership{}, &team.TeamInvitation{},
		&tournament.TournamentMembership{},
	)
	repo := user.NewUserRepository(db)
	for i := range users {
		require.NoError(t, repo.UpsertUser(context.Background(), &users[i]))
	}
	return repo, db
}

func TestUpsertUser(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, user.User{ID: "u1", Username: "ada", Email: "ada@example.com", Metadata: datatypes.JSONMap{"tier": "gold"}})

	require.NoError(t, repo.UpsertUser(ctx, &user.User{ID: "u1", Username: "ada_l", Email: "ada@example.com", FirstName: "Ada"}))
	u, err := repo.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "ada_l", u.Username)
	assert.Equal(t, "Ada", u.FirstName)

	byName, err := repo.GetUserByUsername(ctx, "ADA_L")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "u1", byName.ID)

	missing, err := repo.GetUserByID(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = repo.UpsertUser(ctx, &user.User{ID: "u2", Username: "ada_l", Email: "other@example.com"})
	assert.True(t, common.IsUniqueViolation(err), "got %v", err)
}

func TestListUsersSearch(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t,
		user.User{ID: "u1", Username: "charlie", Email: "c@example.com", FirstName: "Charles"},
		user.User{ID: "u2", Username: "alice", Email: "a@example.com"},
		user.User{ID: "u3", Username: "bob", Email: "b@example.com", LastName: "Charleston"},
	)

	all, total, err := repo.ListUsers(ctx, "", common.NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"alice", "bob", "charlie"}, []string{all[0].Username, all[1].Username, all[2].Username})

	matched, total, err := repo.ListUsers(ctx, "CHARL", common.NewPage(1, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, matched, 1)
	assert.Equal(t, "bob", matched[0].Username)

	summaries, err := repo.GetSummaries(ctx, []string{"u1", "u3", "missing"})
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
	assert.Equal(t, "charlie", summaries["u1"].Username)
}

func TestDeleteUserRemovesEdges(t *testing.T) {
	ctx := context.Background()
	repo, db := newRepo(t,
		user.User{ID: "gone", Username: "gone", Email: "gone@example.com"},
		user.User{ID: "kept", Username: "kept", Email: "kept@example.com"},
	)
	now := time.Now().UTC()
	require.NoError(t, db.Create(&relation.Follow{FollowerID: "gone", FollowedID: "kept", CreatedAt: now}).Error)
	require.NoError(t, db.Create(&relation.Follow{FollowerID: "kept", FollowedID: "gone", CreatedAt: now}).Error)
	require.NoError(t, db.Create(&team.TeamMembership{TeamID: 1, UserID: "gone", Role: common.RoleOwner, JoinedAt: now}).Error)
	require.NoError(t, db.Create(&team.TeamMembership{TeamID: 1, UserID: "kept", Role: common.RoleParticipant, JoinedAt: now}).Error)
	require.NoError(t, db.Create(&team.TeamInvitation{TeamID: 2, InvitedID: "kept", InviterID: "gone", CreatedAt: now}).Error)
	require.NoError(t, db.Create(&tournament.TournamentMembership{TournamentID: 1, UserID: "gone", Role: common.RoleOwner, JoinedAt: now}).Error)

	profile, err := repo.GetProfile(ctx, "kept")
	require.NoError(t, err)
	assert.EqualValues(t, 1, profile.FollowerCount)
	assert.EqualValues(t, 1, profile.FollowingCount)

	deleted, err := repo.DeleteUser(ctx, "gone")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteUser(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, deleted)

	profile, err = repo.GetProfile(ctx, "kept")
	require.NoError(t, err)
	assert.Zero(t, profile.FollowerCount)
	assert.Zero(t, profile.FollowingCount)

	for _, model := range []interface{}{&team.TeamInvitation{}, &tournament.TournamentMembership{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
	var members []team.TeamMembership
	require.NoError(t, db.Find(&members).Error)
	require.Len(t, members, 1)
	assert.Equal(t, "kept", members[0].UserID)
}
