package team

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/internal/user"
)

// Rows that reference a team through team_id. Tournament rows are named by
// table since the tournament package builds on this one.
var teamCascadeTables = []string{
	"tournament_memberships",
	"tournament_registrations",
	"team_invitations",
	"team_memberships",
}

// TeamRepository defines the interface for team data operations
type TeamRepository interface {
	// Team operations
	CreateTeam(ctx context.Context, team *Team) error
	GetTeamByID(ctx context.Context, id uint) (*Team, error)
	GetTeamByName(ctx context.Context, name string) (*Team, error)
	GetTeamWithCount(ctx context.Context, id uint) (*TeamWithCount, error)
	GetAllTeams(ctx context.Context, filter TeamFilter, page common.Page) ([]TeamWithCount, int64, error)
	GetTeamsByUserID(ctx context.Context, userID string, page common.Page) ([]UserTeam, int64, error)
	UpdateTeam(ctx context.Context, id uint, updates map[string]interface{}) error
	DeleteTeam(ctx context.Context, id uint) error
	UserExists(ctx context.Context, userID string) (bool, error)

	// TeamMembership operations
	AddTeamMember(ctx context.Context, member *TeamMembership) error
	GetTeamMember(ctx context.Context, teamID uint, userID string) (*TeamMembership, error)
	GetTeamMembers(ctx context.Context, teamID uint, page common.Page) ([]MemberEntry, int64, error)
	CountTeamMembers(ctx context.Context, teamID uint) (int64, error)
	CountTeamMembersByRole(ctx context.Context, teamID uint, role common.Role) (int64, error)
	UpdateTeamMemberRole(ctx context.Context, teamID uint, userID string, role common.Role) (bool, error)
	RemoveTeamMember(ctx context.Context, teamID uint, userID string) (bool, error)

	// TeamInvitation operations
	CreateTeamInvitation(ctx context.Context, invitation *TeamInvitation) error
	GetPendingInvitation(ctx context.Context, teamID uint, invitedID string) (*TeamInvitation, error)
	DeleteInvitation(ctx context.Context, teamID uint, invitedID string) (bool, error)
	DeleteInvitationFrom(ctx context.Context, teamID uint, invitedID, inviterID string) (bool, error)
	GetTeamInvitationsByTeamID(ctx context.Context, teamID uint, page common.Page) ([]InvitationEntry, int64, error)
	GetTeamInvitationsByUserID(ctx context.Context, userID string, page common.Page) ([]InvitationEntry, int64, error)

	WithTransaction(ctx context.Context, txFunc func(TeamRepository) error) error
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new instance of TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

// --- Team Operations ---

func (r *teamRepository) CreateTeam(ctx context.Context, team *Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *teamRepository) GetTeamByID(ctx context.Context, id uint) (*Team, error) {
	var team Team
	if err := r.db.WithContext(ctx).First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) GetTeamByName(ctx context.Context, name string) (*Team, error) {
	var team Team
	if err := r.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

const memberCountSelect = "teams.*, (SELECT COUNT(*) FROM team_memberships tm WHERE tm.team_id = teams.id) AS member_count"

func (r *teamRepository) GetTeamWithCount(ctx context.Context, id uint) (*TeamWithCount, error) {
	var teams []TeamWithCount
	err := r.db.WithContext(ctx).Model(&Team{}).Select(memberCountSelect).
		Where("teams.id = ?", id).Limit(1).Scan(&teams).Error
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, nil
	}
	return &teams[0], nil
}

func (r *teamRepository) GetAllTeams(ctx context.Context, filter TeamFilter, page common.Page) ([]TeamWithCount, int64, error) {
	var total int64
	apply := func(q *gorm.DB) *gorm.DB {
		if filter.Name != "" {
			q = q.Where("LOWER(teams.name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
		}
		if filter.Open != nil {
			q = q.Where("teams.open = ?", *filter.Open)
		}
		return q
	}

	if err := apply(r.db.WithContext(ctx).Model(&Team{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	teams := []TeamWithCount{}
	err := apply(r.db.WithContext(ctx).Model(&Team{}).Select(memberCountSelect)).
		Order("teams.created_at DESC").Order("teams.id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Scan(&teams).Error
	if err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

func (r *teamRepository) GetTeamsByUserID(ctx context.Context, userID string, page common.Page) ([]UserTeam, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&TeamMembership{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	teams := []UserTeam{}
	err := r.db.WithContext(ctx).Model(&Team{}).
		Select("teams.*, team_memberships.role, team_memberships.joined_at").
		Joins("JOIN team_memberships ON team_memberships.team_id = teams.id").
		Where("team_memberships.user_id = ?", userID).
		Order("team_memberships.joined_at DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Scan(&teams).Error
	if err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

func (r *teamRepository) UpdateTeam(ctx context.Context, id uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&Team{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteTeam removes the team and everything keyed by it. Callers wrap it in
// WithTransaction.
func (r *teamRepository) DeleteTeam(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	for _, table := range teamCascadeTables {
		if err := db.Exec("DELETE FROM "+table+" WHERE team_id = ?", id).Error; err != nil {
			return err
		}
	}
	return db.Delete(&Team{}, id).Error
}

func (r *teamRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}

// --- TeamMembership Operations ---

func (r *teamRepository) AddTeamMember(ctx context.Context, member *TeamMembership) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *teamRepository) GetTeamMember(ctx context.Context, teamID uint, userID string) (*TeamMembership, error) {
	var member TeamMembership
	if err := r.db.WithContext(ctx).Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// GetTeamMembers lists the roster owners first, then managers, then
// participants, each group by join time.
func (r *teamRepository) GetTeamMembers(ctx context.Context, teamID uint, page common.Page) ([]MemberEntry, int64, error) {
	total, err := r.CountTeamMembers(ctx, teamID)
	if err != nil {
		return nil, 0, err
	}

	members := []MemberEntry{}
	err = r.db.WithContext(ctx).Model(&TeamMembership{}).
		Select("users.id, users.username, users.first_name, users.last_name, users.image_url, team_memberships.role, team_memberships.joined_at").
		Joins("JOIN users ON users.id = team_memberships.user_id").
		Where("team_memberships.team_id = ?", teamID).
		Order(common.RoleOrderSQL).
		Order("team_memberships.joined_at ASC").
		Offset(page.Offset()).Limit(page.Limit).
		Scan(&members).Error
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (r *teamRepository) CountTeamMembers(ctx context.Context, teamID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&TeamMembership{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}

func (r *teamRepository) CountTeamMembersByRole(ctx context.Context, teamID uint, role common.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&TeamMembership{}).Where("team_id = ? AND role = ?", teamID, role).Count(&count).Error
	return count, err
}

func (r *teamRepository) UpdateTeamMemberRole(ctx context.Context, teamID uint, userID string, role common.Role) (bool, error) {
	res := r.db.WithContext(ctx).Model(&TeamMembership{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("role", role)
	return res.RowsAffected > 0, res.Error
}

func (r *teamRepository) RemoveTeamMember(ctx context.Context, teamID uint, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&TeamMembership{})
	return res.RowsAffected > 0, res.Error
}

// --- TeamInvitation Operations ---

func (r *teamRepository) CreateTeamInvitation(ctx context.Context, invitation *TeamInvitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *teamRepository) GetPendingInvitation(ctx context.Context, teamID uint, invitedID string) (*TeamInvitation, error) {
	var invitation TeamInvitation
	err := r.db.WithContext(ctx).Where("team_id = ? AND invited_id = ?", teamID, invitedID).First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invitation, nil
}

// DeleteInvitation reports whether this call removed the invitation. Of two
// concurrent callers only one sees true.
func (r *teamRepository) DeleteInvitation(ctx context.Context, teamID uint, invitedID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("team_id = ? AND invited_id = ?", teamID, invitedID).Delete(&TeamInvitation{})
	return res.RowsAffected > 0, res.Error
}

func (r *teamRepository) DeleteInvitationFrom(ctx context.Context, teamID uint, invitedID, inviterID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("team_id = ? AND invited_id = ? AND inviter_id = ?", teamID, invitedID, inviterID).
		Delete(&TeamInvitation{})
	return res.RowsAffected > 0, res.Error
}

func (r *teamRepository) GetTeamInvitationsByTeamID(ctx context.Context, teamID uint, page common.Page) ([]InvitationEntry, int64, error) {
	return r.listInvitations(ctx, "team_invitations.team_id = ?", teamID, page)
}

func (r *teamRepository) GetTeamInvitationsByUserID(ctx context.Context, userID string, page common.Page) ([]InvitationEntry, int64, error) {
	return r.listInvitations(ctx, "team_invitations.invited_id = ?", userID, page)
}

func (r *teamRepository) listInvitations(ctx context.Context, where string, arg interface{}, page common.Page) ([]InvitationEntry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&TeamInvitation{}).Where(where, arg).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	invitations := []InvitationEntry{}
	err := r.db.WithContext(ctx).Model(&TeamInvitation{}).
		Select("team_invitations.*, teams.name AS team_name").
		Joins("JOIN teams ON teams.id = team_invitations.team_id").
		Where(where, arg).
		Order("team_invitations.created_at DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Scan(&invitations).Error
	if err != nil {
		return nil, 0, err
	}
	return invitations, total, nil
}

func (r *teamRepository) WithTransaction(ctx context.Context, txFunc func(TeamRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return txFunc(&teamRepository{db: tx})
	})
}
