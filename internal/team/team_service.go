package team

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/internal/metrics"
)

// TeamService implements team membership and the invitation workflow. Every
// compound operation runs in one transaction.
type TeamService struct {
	repo   TeamRepository
	logger logrus.FieldLogger
}

func NewTeamService(repo TeamRepository, logger logrus.FieldLogger) *TeamService {
	return &TeamService{repo: repo, logger: logger}
}

func now() time.Time { return time.Now().UTC() }

// --- Teams ---

// CreateTeam inserts the team and makes actorID its owner.
func (s *TeamService) CreateTeam(ctx context.Context, actorID string, in CreateTeamInput) (*Team, error) {
	name, err := common.NormalizeName("team", in.Name)
	if err != nil {
		return nil, metrics.Observe("team_create", err)
	}
	team := &Team{
		Name:        name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Open:        in.Open,
		CreatedByID: actorID,
	}
	err = s.repo.WithTransaction(ctx, func(tx TeamRepository) error {
		if err := requireUser(ctx, tx, actorID); err != nil {
			return err
		}
		existing, err := tx.GetTeamByName(ctx, team.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return common.Conflict("team name %q is already taken", team.Name)
		}
		if err := tx.CreateTeam(ctx, team); err != nil {
			return common.TranslateWriteError(err, "team name "+team.Name+" is already taken")
		}
		return tx.AddTeamMember(ctx, &TeamMembership{
			TeamID:   team.ID,
			UserID:   actorID,
			Role:     common.RoleOwner,
			JoinedAt: now(),
		})
	})
	if err := metrics.Observe("team_create", common.StorageError(err)); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"team_id": team.ID, "owner_id": actorID}).Info("team created")
	return team, nil
}

// UpdateTeam applies patch; the actor must be at least a manager.
func (s *TeamService) UpdateTeam(ctx context.Context, teamID uint, actorID string, patch TeamPatch) (*Team, error) {
	var updated *Team
	err := s.repo.WithTransaction(ctx, func(tx TeamRepository) error {
		if _, err := requireTeam(ctx, tx, teamID); err != nil {
			return err
		}
		if err := requireRole(ctx, tx, teamID, actorID, common.RoleManager); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.Name != nil {
			name, err := common.NormalizeName("team", *patch.Name)
			if err != nil {
				return err
			}
			existing, err := tx.GetTeamByName(ctx, name)
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != teamID {
				return common.Conflict("team name %q is already taken", name)
			}
			updates["name"] = name
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.ImageURL != nil {
			updates["image_url"] = *patch.ImageURL
		}
		if patch.Open != nil {
			updates["open"] = *patch.Open
		}
		if len(updates) > 0 {
			if err := tx.UpdateTeam(ctx, teamID, updates); err != nil {
				return common.TranslateWriteError(err, "team name is already taken")
			}
		}

		var err error
		updated, err = tx.GetTeamByID(ctx, teamID)
		return err
	})
	if err := metrics.Observe("team_update", common.StorageError(err)); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTeam removes the team with its memberships, invitations, tournament
// registrations and the tournament places entered through it. Owner only.
func (s *TeamService) DeleteTeam(ctx context.Context, teamID uint, actorID string) error {
	err := s.repo.WithTransaction(ctx, func(tx TeamRepository) error {
		if _, err := requireTeam(ctx, tx, teamID); err != nil {
			return err
		}
		if err := requireRole(ctx, tx, teamID, actorID, common.RoleOwner); err != nil {
			return err
		}
		return tx.DeleteTeam(ctx, teamID)
	})
	if err := metrics.Observe("team_delete", common.StorageError(err)); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"team_id": teamID, "actor_id": actorID}).Info("team deleted")
	return nil
}

func (s *TeamService) GetTeam(ctx context.Context, teamID uint) (*TeamWithCount, error) {
	team, err := s.repo.GetTeamWithCount(ctx, teamID)
	if err != nil {
		return nil, common.StorageError(err)
	}
	if team == nil {
		return nil, common.NotFound("team %d not found", teamID)
	}
	return team, nil
}

func (s *TeamService) ListTeams(ctx context.Context, filter TeamFilter, page common.Page) ([]TeamWithCount, int64, error) {
	teams, total, err := s.repo.GetAllTeams(ctx, filter, page)
	return teams, total, common.StorageError(err)
}

func (s *TeamService) ListUserTeams(ctx context.Context, userID string, page common.Page) ([]UserTeam, int64, error) {
	if err := requireUser(ctx, s.repo, userID); err != nil {
		return nil, 0, common.StorageError(err)
	}
	teams, total, err := s.repo.GetTeamsByUserID(ctx, userID, page)
	return teams, total, common.StorageError(err)
}

// --- Membership ---

// JoinTeam adds userID to an open team as a participant. A pending invitation
// for the same pair is consumed in the same transaction.
func (s *TeamService) JoinTeam(ctx context.Context, teamID uint, userID string) (*TeamMembership, error) {
	member := &TeamMembership{TeamID: teamID, UserID: userID, Role: common.RoleParticipant}
	err := s.repo.WithTransaction(ctx, func(tx TeamRepository) error {
		team, err := requireTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		if err := requireUser(ctx, tx, userID); err != nil {
			return err
		}
		existing, err := tx.GetTeamMember(ctx, teamID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return common.Conflict("user %s is already a member of team %d", userID, teamID)
		}
		if !team.Open {
			return common.Forbidden("team %d is invite-only", teamID)
		}

		member.JoinedAt = now()
		if err := tx.AddTeamMember(ctx, member); err != nil {
			return common.TranslateWriteError(err, "already a member of this team")
		}
		_, err = tx.DeleteInvitation(ctx, teamID, userID)
		return err
	})
	if err := metrics.Observe("team_join", common.StorageError(err)); err != nil {
		return nil, err
	}
	return member, nil
}

// LeaveTeam removes userID's own membership. The sole owner cannot leave.
func (s *TeamService) LeaveTeam(ctx context.Context, teamID uint, userID string) error {
	err := s.repo.WithTransaction(ctx, func(tx TeamRepository) error {
		member, err := tx.GetTeamMember(ctx, teamID, userID)
		if err != nil {
			return err
		}
		if member == nil {
			return common.NotFound("user %s is not a member of team %d", userID, teamID)
		}
		if err := guardLastOwner(ctx, tx, member, "leave"); err != nil {
			return err
		}
		_, err = tx.RemoveTeamMember(ctx, teamID, userID)
		return err
	})
	return metrics.Observe("team_leave", common.StorageError(err))
}

// RemoveMember lets a manager or owner remove another member. Non-owners may
// only remove members they strictly outrank.
func (s *TeamService) RemoveMember(ctx context.Context, teamID uint, actorID, targetID string) error {
	err := s.removeMember(ctx, teamID, actorID, targetID)
	return metrics.Observe("team_remove_member", common.StorageError(err))
}

func (s *TeamService) removeMember(ctx context.Context, teamID uint, actorID, targetID string) error {
	if actorID == targetID {
		return common.InvalidOperation("use leave to remove yourself from a team")
	}
	return s.repo.WithTransaction(ctx, func(tx TeamRepository) error {
		if _, err := requireTeam(ctx, tx, teamID); err != nil {
			return err
		}
		actor, err := tx.GetTeamMember(ctx, teamID, actorID)
		if err != nil {
			return err
		}
		if actor == nil || !actor.Role.AtLeast(common.RoleManager) {
			return common.Forbidden("only team managers and owners can remove members")
		}
		target, err := tx.GetTeamMember(ctx, teamID, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return common.NotFound("user %s is not a member of team %d", targetID, teamID)
		}
		if actor.Role != common.RoleOwner && !actor.Role.Outranks(target.Role) {
			return common.Forbidden("a %s cannot remove a %s", actor.Role, target.Role)
		}
		if err := guardLastOwner(ctx, tx, target, "be removed"); err != nil {
			return err
		}
		_, err = tx.RemoveTeamMember(ctx, teamID, targetID)
		return err
	})
}

// UpdateMemberRole changes targetID's role. Only owners may do this, and the
// last owner cannot be demoted.
func (s *TeamService) UpdateMemberRole(ctx context.Context, teamID uint, actorID, targetID, roleName string) (*TeamMembership, error) {
	role, err := common.ParseRole(roleName)
	if err != nil {
		return nil, metrics.Observe("team_update_role", common.InvalidOperation("%v", err))
	}

	var target *TeamMembership
	err = s.repo.WithTransaction(ctx, func(tx TeamRepository) error {
		if _, err := requireTeam(ctx, tx, teamID); err != nil {
			return err
		}
		if err := requireRole(ctx, tx, teamID, actorID, common.RoleOwner); err != nil {
			return err
		}
		var err error
		target, err = tx.GetTeamMember(ctx, teamID, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return common.NotFound("user %s is not a member of team %d", targetID, teamID)
		}
		if role != common.RoleOwner {
			if err := guardLastOwner(ctx, tx, target, "be demoted"); err != nil {
				return err
			}
		}
		if _, err := tx.UpdateTeamMemberRole(ctx, teamID, targetID, role); err != nil {
			return err
		}
		target.Role = role
		return nil
	})
	if err := metrics.Observe("team_update_role", common.StorageError(err)); err != nil {
		return nil, err
	}
	return target, nil
}

// ListMembers returns the roster ordered owner, manager, participant.
func (s *TeamService) ListMembers(ctx context.Context, teamID uint, page common.Page) ([]MemberEntry, int64, error) {
	if _, err := requireTeam(ctx, s.repo, teamID); err != nil {
		return nil, 0, common.StorageError(err)
	}
	members, total, err := s.repo.GetTeamMembers(ctx, teamID, page)
	return members, total, common.StorageError(err)
}

func (s *TeamService) CountMembers(ctx context.Context, teamID uint) (int64, error) {
	if _, err := requireTeam(ctx, s.repo, teamID); err != nil {
		return 0, common.StorageError(err)
	}
	count, err := s.repo.CountTeamMembers(ctx, teamID)
	return count, common.StorageError(err)
}

// RoleOf returns userID's role in the team, or NotFound if they hold none.
func (s *TeamService) RoleOf(ctx context.Context, teamID uint, userID string) (common.Role, error) {
	member, err := s.repo.GetTeamMember(ctx, teamID, userID)
	if err != nil {
		return "", common.StorageError(err)
	}
	if member == nil {
		return "", common.NotFound("user %s is not a member of team %d", userID, teamID)
	}
	return member.Role, nil
}

// --- helpers ---

func requireTeam(ctx context.Context, repo TeamRepository, teamID uint) (*Team, error) {
	team, err := repo.GetTeamByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, common.NotFound("team %d not found", teamID)
	}
	return team, nil
}

func requireUser(ctx context.Context, repo TeamRepository, userID string) error {
	exists, err := repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return common.NotFound("user %s not found", userID)
	}
	return nil
}

func requireRole(ctx context.Context, repo TeamRepository, teamID uint, userID string, min common.Role) error {
	member, err := repo.GetTeamMember(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if member == nil || !member.Role.AtLeast(min) {
		return common.Forbidden("requires %s role in team %d", min, teamID)
	}
	return nil
}

// guardLastOwner refuses to take the owner role away from the team's only owner.
func guardLastOwner(ctx context.Context, repo TeamRepository, member *TeamMembership, action string) error {
	if member.Role != common.RoleOwner {
		return nil
	}
	owners, err := repo.CountTeamMembersByRole(ctx, member.TeamID, common.RoleOwner)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return common.Forbidden("the only owner of team %d cannot %s", member.TeamID, action)
	}
	return nil
}
