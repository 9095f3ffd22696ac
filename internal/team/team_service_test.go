package team

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/internal/testutil"
	"github.com/DhavalSuthar-24/squadup/internal/user"
)

// Stand-ins for the tournament tables DeleteTeam clears.
type tournamentMembershipRow struct {
	TournamentID uint   `gorm:"primaryKey;autoIncrement:false"`
	UserID       string `gorm:"primaryKey"`
	TeamID       *uint
}

func (tournamentMembershipRow) TableName() string { return "tournament_memberships" }

type registrationRow struct {
	TournamentID uint `gorm:"primaryKey;autoIncrement:false"`
	TeamID       uint `gorm:"primaryKey;autoIncrement:false"`
}

func (registrationRow) TableName() string { return "tournament_registrations" }

type TeamServiceSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	repo    TeamRepository
	service *TeamService
}

func TestTeamServiceSuite(t *testing.T) {
	suite.Run(t, new(TeamServiceSuite))
}

func (s *TeamServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.OpenDB(s.T(), &user.User{}, &Team{}, &TeamMembership{}, &TeamInvitation{},
		&tournamentMembershipRow{}, &registrationRow{})
	s.repo = NewTeamRepository(s.db)
	logger, _ := logtest.NewNullLogger()
	s.service = NewTeamService(s.repo, logger)

	users := user.NewUserRepository(s.db)
	for _, id := range []string{"owner", "alice", "bob", "carol"} {
		s.Require().NoError(users.UpsertUser(s.ctx, &user.User{ID: id, Username: id, Email: id + "@example.com"}))
	}
}

func (s *TeamServiceSuite) createTeam(name string, open bool) *Team {
	team, err := s.service.CreateTeam(s.ctx, "owner", CreateTeamInput{Name: name, Open: open})
	s.Require().NoError(err)
	return team
}

func (s *TeamServiceSuite) requireKind(err error, kind common.Kind) {
	s.T().Helper()
	s.Require().Error(err)
	s.Equal(kind, common.KindOf(err), "unexpected error: %v", err)
}

func (s *TeamServiceSuite) membershipCount(teamID uint, userID string) int64 {
	var count int64
	s.Require().NoError(s.db.Model(&TeamMembership{}).Where("team_id = ? AND user_id = ?", teamID, userID).Count(&count).Error)
	return count
}

func (s *TeamServiceSuite) invitationExists(teamID uint, userID string) bool {
	inv, err := s.repo.GetPendingInvitation(s.ctx, teamID, userID)
	s.Require().NoError(err)
	return inv != nil
}

func (s *TeamServiceSuite) TestCreateTeamInsertsOwner() {
	team := s.createTeam("Rockets", true)

	role, err := s.service.RoleOf(s.ctx, team.ID, "owner")
	s.Require().NoError(err)
	s.Equal(common.RoleOwner, role)

	_, err = s.service.CreateTeam(s.ctx, "alice", CreateTeamInput{Name: "rockets"})
	s.requireKind(err, common.KindConflict)

	_, err = s.service.CreateTeam(s.ctx, "ghost", CreateTeamInput{Name: "Ghosts"})
	s.requireKind(err, common.KindNotFound)

	detail, err := s.service.GetTeam(s.ctx, team.ID)
	s.Require().NoError(err)
	s.EqualValues(1, detail.MemberCount)
}

func (s *TeamServiceSuite) TestJoinOpenTeamTwiceConflicts() {
	team := s.createTeam("Open", true)

	member, err := s.service.JoinTeam(s.ctx, team.ID, "alice")
	s.Require().NoError(err)
	s.Equal(common.RoleParticipant, member.Role)
	s.EqualValues(1, s.membershipCount(team.ID, "alice"))

	_, err = s.service.JoinTeam(s.ctx, team.ID, "alice")
	s.requireKind(err, common.KindConflict)
	s.EqualValues(1, s.membershipCount(team.ID, "alice"))

	_, err = s.service.JoinTeam(s.ctx, 9999, "alice")
	s.requireKind(err, common.KindNotFound)
}

// Invite-only teams are gated on join; only invitations get users in.
func (s *TeamServiceSuite) TestJoinClosedTeamIsForbidden() {
	team := s.createTeam("Closed", false)

	_, err := s.service.JoinTeam(s.ctx, team.ID, "alice")
	s.requireKind(err, common.KindForbidden)

	// The owner is already a member, so the conflict wins over the gate.
	_, err = s.service.JoinTeam(s.ctx, team.ID, "owner")
	s.requireKind(err, common.KindConflict)
}

func (s *TeamServiceSuite) TestJoinConsumesPendingInvitation() {
	team := s.createTeam("Hybrid", true)
	_, err := s.service.SendInvitation(s.ctx, team.ID, "alice", "owner", "")
	s.Require().NoError(err)

	_, err = s.service.JoinTeam(s.ctx, team.ID, "alice")
	s.Require().NoError(err)
	s.False(s.invitationExists(team.ID, "alice"))
}

func (s *TeamServiceSuite) TestLeaveTeam() {
	team := s.createTeam("Leavers", true)
	_, err := s.service.JoinTeam(s.ctx, team.ID, "alice")
	s.Require().NoError(err)

	s.Require().NoError(s.service.LeaveTeam(s.ctx, team.ID, "alice"))
	s.requireKind(s.service.LeaveTeam(s.ctx, team.ID, "alice"), common.KindNotFound)

	s.requireKind(s.service.LeaveTeam(s.ctx, team.ID, "owner"), common.KindForbidden)

	_, err = s.service.JoinTeam(s.ctx, team.ID, "bob")
	s.Require().NoError(err)
	_, err = s.service.UpdateMemberRole(s.ctx, team.ID, "owner", "bob", "owner")
	s.Require().NoError(err)
	s.Require().NoError(s.service.LeaveTeam(s.ctx, team.ID, "owner"))
}

func (s *TeamServiceSuite) TestRemoveMemberRules() {
	team := s.createTeam("Hierarchy", true)
	for _, id := range []string{"alice", "bob", "carol"} {
		_, err := s.service.JoinTeam(s.ctx, team.ID, id)
		s.Require().NoError(err)
	}
	_, err := s.service.UpdateMemberRole(s.ctx, team.ID, "owner", "alice", "manager")
	s.Require().NoError(err)
	_, err = s.service.UpdateMemberRole(s.ctx, team.ID, "owner", "bob", "manager")
	s.Require().NoError(err)

	s.requireKind(s.service.RemoveMember(s.ctx, team.ID, "alice", "alice"), common.KindInvalidOperation)
	s.requireKind(s.service.RemoveMember(s.ctx, team.ID, "carol", "alice"), common.KindForbidden)
	s.requireKind(s.service.RemoveMember(s.ctx, team.ID, "alice", "bob"), common.KindForbidden)
	s.requireKind(s.service.RemoveMember(s.ctx, team.ID, "alice", "owner"), common.KindForbidden)
	s.requireKind(s.service.RemoveMember(s.ctx, team.ID, "alice", "ghost"), common.KindNotFound)

	s.Require().NoError(s.service.RemoveMember(s.ctx, team.ID, "alice", "carol"))
	s.Require().NoError(s.service.RemoveMember(s.ctx, team.ID, "owner", "bob"))
	s.EqualValues(0, s.membershipCount(team.ID, "carol"))
	s.EqualValues(0, s.membershipCount(team.ID, "bob"))
}

func (s *TeamServiceSuite) TestUpdateMemberRole() {
	team := s.createTeam("Roles", true)
	_, err := s.service.JoinTeam(s.ctx, team.ID, "alice")
	s.Require().NoError(err)

	_, err = s.service.UpdateMemberRole(s.ctx, team.ID, "owner", "alice", "captain")
	s.requireKind(err, common.KindInvalidOperation)

	_, err = s.service.UpdateMemberRole(s.ctx, team.ID, "alice", "alice", "manager")
	s.requireKind(err, common.KindForbidden)

	_, err = s.service.UpdateMemberRole(s.ctx, team.ID, "owner", "bob", "manager")
	s.requireKind(err, common.KindNotFound)

	_, err = s.service.UpdateMemberRole(s.ctx, team.ID, "owner", "owner", "manager")
	s.requireKind(err, common.KindForbidden)

	member, err := s.service.UpdateMemberRole(s.ctx, team.ID, "owner", "alice", "MANAGER")
	s.Require().NoError(err)
	s.Equal(common.RoleManager, member.Role)
}

func (s *TeamServiceSuite) TestListMembersOrdersByRole() {
	team := s.createTeam("Ordered", true)
	for _, id := range []string{"carol", "bob", "alice"} {
		_, err := s.service.JoinTeam(s.ctx, team.ID, id)
		s.Require().NoError(err)
		time.Sleep(2 * time.Millisecond)
	}
	_, err := s.service.UpdateMemberRole(s.ctx, team.ID, "owner", "alice", "manager")
	s.Require().NoError(err)

	members, total, err := s.service.ListMembers(s.ctx, team.ID, common.NewPage(1, 10))
	s.Require().NoError(err)
	s.EqualValues(4, total)
	s.Require().Len(members, 4)

	var ids []string
	for i, m := range members {
		ids = append(ids, m.ID)
		if i > 0 {
			s.GreaterOrEqual(members[i-1].Role.Rank(), m.Role.Rank())
		}
	}
	s.Equal([]string{"owner", "alice", "carol", "bob"}, ids)

	count, err := s.service.CountMembers(s.ctx, team.ID)
	s.Require().NoError(err)
	s.EqualValues(4, count)
}

func (s *TeamServiceSuite) TestTeamNamesAreTrimmedBeforeLengthCheck() {
	for _, name := range []string{"    ", "  a ", "\tab\n"} {
		_, err := s.service.CreateTeam(s.ctx, "owner", CreateTeamInput{Name: name, Open: true})
		s.requireKind(err, common.KindInvalidOperation)
	}
	var count int64
	s.Require().NoError(s.db.Model(&Team{}).Count(&count).Error)
	s.Zero(count)

	team := s.createTeam("  Padded  ", true)
	s.Equal("Padded", team.Name)

	for _, name := range []string{"   ", " x "} {
		name := name
		_, err := s.service.UpdateTeam(s.ctx, team.ID, "owner", TeamPatch{Name: &name})
		s.requireKind(err, common.KindInvalidOperation)
	}
	detail, err := s.service.GetTeam(s.ctx, team.ID)
	s.Require().NoError(err)
	s.Equal("Padded", detail.Name)
}

// The unique index agrees with the case-insensitive lookup, so a racing
// insert that skipped the lookup still fails.
func (s *TeamServiceSuite) TestTeamNameIndexIgnoresCase() {
	s.Require().NoError(s.repo.CreateTeam(s.ctx, &Team{Name: "Alpha", Open: true}))
	err := s.repo.CreateTeam(s.ctx, &Team{Name: "ALPHA", Open: true})
	s.True(common.IsUniqueViolation(err), "got %v", err)
	s.requireKind(common.TranslateWriteError(err, "taken"), common.KindConflict)
}

func (s *TeamServiceSuite) TestUpdateAndDeleteTeam() {
	team := s.createTeam("Before", true)
	other := s.createTeam("Taken", true)
	_, err := s.service.JoinTeam(s.ctx, team.ID, "alice")
	s.Require().NoError(err)

	name := "After"
	_, err = s.service.UpdateTeam(s.ctx, team.ID, "alice", TeamPatch{Name: &name})
	s.requireKind(err, common.KindForbidden)

	taken := other.Name
	_, err = s.service.UpdateTeam(s.ctx, team.ID, "owner", TeamPatch{Name: &taken})
	s.requireKind(err, common.KindConflict)

	closed := false
	updated, err := s.service.UpdateTeam(s.ctx, team.ID, "owner", TeamPatch{Name: &name, Open: &closed})
	s.Require().NoError(err)
	s.Equal("After", updated.Name)
	s.False(updated.Open)

	teamID := team.ID
	s.Require().NoError(s.db.Create(&registrationRow{TournamentID: 1, TeamID: teamID}).Error)
	s.Require().NoError(s.db.Create(&tournamentMembershipRow{TournamentID: 1, UserID: "alice", TeamID: &teamID}).Error)
	_, err = s.service.SendInvitation(s.ctx, teamID, "bob", "owner", "")
	s.Require().NoError(err)

	s.requireKind(s.service.DeleteTeam(s.ctx, teamID, "alice"), common.KindForbidden)
	s.Require().NoError(s.service.DeleteTeam(s.ctx, teamID, "owner"))

	for _, model := range []interface{}{&TeamMembership{}, &TeamInvitation{}, &registrationRow{}, &tournamentMembershipRow{}} {
		var count int64
		s.Require().NoError(s.db.Model(model).Where("team_id = ?", teamID).Count(&count).Error)
		s.Zero(count)
	}
	_, err = s.service.GetTeam(s.ctx, teamID)
	s.requireKind(err, common.KindNotFound)
}

func (s *TeamServiceSuite) TestListTeamsAndUserTeams() {
	s.createTeam("Alpha Squad", true)
	closed := s.createTeam("Beta Squad", false)
	s.createTeam("Gamma", true)

	teams, total, err := s.service.ListTeams(s.ctx, TeamFilter{Name: "squad"}, common.NewPage(1, 10))
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(teams, 2)

	open := false
	teams, total, err = s.service.ListTeams(s.ctx, TeamFilter{Open: &open}, common.NewPage(1, 10))
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(teams, 1)
	s.Equal(closed.ID, teams[0].ID)
	s.EqualValues(1, teams[0].MemberCount)

	mine, total, err := s.service.ListUserTeams(s.ctx, "owner", common.NewPage(1, 2))
	s.Require().NoError(err)
	s.EqualValues(3, total)
	s.Len(mine, 2)
	s.Equal(common.RoleOwner, mine[0].Role)

	_, _, err = s.service.ListUserTeams(s.ctx, "ghost", common.NewPage(1, 10))
	s.requireKind(err, common.KindNotFound)
}

// --- Invitations ---

func (s *TeamServiceSuite) TestInvitationAcceptedThenCancelIsNotFound() {
	team := s.createTeam("Invites", false)

	inv, err := s.service.SendInvitation(s.ctx, team.ID, "bob", "owner", "join us")
	s.Require().NoError(err)
	s.Equal("join us", inv.Message)

	member, err := s.service.AcceptInvitation(s.ctx, team.ID, "bob")
	s.Require().NoError(err)
	s.Equal(common.RoleParticipant, member.Role)
	s.False(s.invitationExists(team.ID, "bob"))
	s.EqualValues(1, s.membershipCount(team.ID, "bob"))

	s.requireKind(s.service.CancelInvitation(s.ctx, team.ID, "bob", "owner"), common.KindNotFound)
}

func (s *TeamServiceSuite) TestSendInvitationPreconditions() {
	team := s.createTeam("Gatekeepers", true)
	_, err := s.service.JoinTeam(s.ctx, team.ID, "alice")
	s.Require().NoError(err)

	_, err = s.service.SendInvitation(s.ctx, 9999, "bob", "owner", "")
	s.requireKind(err, common.KindNotFound)
	_, err = s.service.SendInvitation(s.ctx, team.ID, "owner", "owner", "")
	s.requireKind(err, common.KindInvalidOperation)
	_, err = s.service.SendInvitation(s.ctx, team.ID, "bob", "alice", "")
	s.requireKind(err, common.KindForbidden)
	_, err = s.service.SendInvitation(s.ctx, team.ID, "ghost", "owner", "")
	s.requireKind(err, common.KindNotFound)
	_, err = s.service.SendInvitation(s.ctx, team.ID, "alice", "owner", "")
	s.requireKind(err, common.KindConflict)

	_, err = s.service.SendInvitation(s.ctx, team.ID, "bob", "owner", "")
	s.Require().NoError(err)
	_, err = s.service.SendInvitation(s.ctx, team.ID, "bob", "owner", "")
	s.requireKind(err, common.KindConflict)
}

func (s *TeamServiceSuite) TestRejectTwiceIsNotFound() {
	team := s.createTeam("Rejected", true)
	_, err := s.service.SendInvitation(s.ctx, team.ID, "bob", "owner", "")
	s.Require().NoError(err)

	s.Require().NoError(s.service.RejectInvitation(s.ctx, team.ID, "bob"))
	s.requireKind(s.service.RejectInvitation(s.ctx, team.ID, "bob"), common.KindNotFound)
	s.EqualValues(0, s.membershipCount(team.ID, "bob"))
}

func (s *TeamServiceSuite) TestCancelRequiresTheInviter() {
	team := s.createTeam("Cancelled", true)
	_, err := s.service.JoinTeam(s.ctx, team.ID, "alice")
	s.Require().NoError(err)
	_, err = s.service.UpdateMemberRole(s.ctx, team.ID, "owner", "alice", "manager")
	s.Require().NoError(err)
	_, err = s.service.SendInvitation(s.ctx, team.ID, "bob", "owner", "")
	s.Require().NoError(err)

	s.requireKind(s.service.CancelInvitation(s.ctx, team.ID, "bob", "alice"), common.KindNotFound)
	s.True(s.invitationExists(team.ID, "bob"))
	s.Require().NoError(s.service.CancelInvitation(s.ctx, team.ID, "bob", "owner"))
	s.False(s.invitationExists(team.ID, "bob"))
}

// A stale invitation for someone who is already a member is cleared on
// accept, and the caller is told about the conflict.
func (s *TeamServiceSuite) TestAcceptWhenAlreadyMemberClearsInvitation() {
	team := s.createTeam("Stale", true)
	s.Require().NoError(s.repo.CreateTeamInvitation(s.ctx, &TeamInvitation{TeamID: team.ID, InvitedID: "alice", InviterID: "owner"}))
	s.Require().NoError(s.repo.AddTeamMember(s.ctx, &TeamMembership{TeamID: team.ID, UserID: "alice", Role: common.RoleParticipant, JoinedAt: time.Now()}))

	_, err := s.service.AcceptInvitation(s.ctx, team.ID, "alice")
	s.requireKind(err, common.KindConflict)
	s.False(s.invitationExists(team.ID, "alice"))
	s.EqualValues(1, s.membershipCount(team.ID, "alice"))
}

func (s *TeamServiceSuite) TestAcceptRollsBackWhenMembershipInsertFails() {
	team := s.createTeam("Atomic", false)
	_, err := s.service.SendInvitation(s.ctx, team.ID, "bob", "owner", "")
	s.Require().NoError(err)

	s.Require().NoError(s.db.Callback().Create().Before("gorm:create").Register("test:fail_membership_insert", func(tx *gorm.DB) {
		if tx.Statement.Table == "team_memberships" {
			_ = tx.AddError(errors.New("injected failure"))
		}
	}))

	_, err = s.service.AcceptInvitation(s.ctx, team.ID, "bob")
	s.requireKind(err, common.KindStorage)
	s.True(s.invitationExists(team.ID, "bob"))
	s.EqualValues(0, s.membershipCount(team.ID, "bob"))
}

func (s *TeamServiceSuite) TestConcurrentAcceptAndRejectHaveOneWinner() {
	team := s.createTeam("Race", true)
	_, err := s.service.SendInvitation(s.ctx, team.ID, "bob", "owner", "")
	s.Require().NoError(err)

	var wg sync.WaitGroup
	results := make([]error, 6)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, results[i] = s.service.AcceptInvitation(s.ctx, team.ID, "bob")
			} else {
				results[i] = s.service.RejectInvitation(s.ctx, team.ID, "bob")
			}
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
			continue
		}
		s.Equal(common.KindNotFound, common.KindOf(err), "unexpected error: %v", err)
	}
	s.Equal(1, winners)
	s.False(s.invitationExists(team.ID, "bob"))
	s.LessOrEqual(s.membershipCount(team.ID, "bob"), int64(1))
}

func (s *TeamServiceSuite) TestListInvitations() {
	team := s.createTeam("Listing", true)
	_, err := s.service.SendInvitation(s.ctx, team.ID, "bob", "owner", "")
	s.Require().NoError(err)
	_, err = s.service.SendInvitation(s.ctx, team.ID, "carol", "owner", "")
	s.Require().NoError(err)

	invitations, total, err := s.service.ListTeamInvitations(s.ctx, team.ID, "owner", common.NewPage(1, 10))
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(invitations, 2)

	_, _, err = s.service.ListTeamInvitations(s.ctx, team.ID, "bob", common.NewPage(1, 10))
	s.requireKind(err, common.KindForbidden)

	mine, total, err := s.service.ListUserInvitations(s.ctx, "bob", common.NewPage(1, 10))
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(mine, 1)
	s.Equal("Listing", mine[0].TeamName)
}
