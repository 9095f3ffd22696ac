package team

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/internal/metrics"
)

// An invitation is either pending (a row exists) or gone. Accept, reject and
// cancel each delete the row, and the delete's row count picks the single
// winner among concurrent callers.

// SendInvitation creates a pending invitation for inviteeID. The inviter must
// be at least a manager of the team.
func (s *TeamService) SendInvitation(ctx context.Context, teamID uint, inviteeID, inviterID, message string) (*TeamInvitation, error) {
	invitation := &TeamInvitation{
		TeamID:    teamID,
		InvitedID: inviteeID,
		InviterID: inviterID,
		Message:   strings.TrimSpace(message),
	}
	err := s.repo.WithTransaction(ctx, func(tx TeamRepository) error {
		if _, err := requireTeam(ctx, tx, teamID); err != nil {
			return err
		}
		if inviteeID == inviterID {
			return common.InvalidOperation("you cannot invite yourself")
		}
		if err := requireRole(ctx, tx, teamID, inviterID, common.RoleManager); err != nil {
			return err
		}
		if err := requireUser(ctx, tx, inviteeID); err != nil {
			return err
		}
		member, err := tx.GetTeamMember(ctx, teamID, inviteeID)
		if err != nil {
			return err
		}
		if member != nil {
			return common.Conflict("user %s is already a member of team %d", inviteeID, teamID)
		}
		pending, err := tx.GetPendingInvitation(ctx, teamID, inviteeID)
		if err != nil {
			return err
		}
		if pending != nil {
			return common.Conflict("user %s already has a pending invitation to team %d", inviteeID, teamID)
		}

		invitation.CreatedAt = now()
		if err := tx.CreateTeamInvitation(ctx, invitation); err != nil {
			return common.TranslateWriteError(err, "an invitation is already pending for this user")
		}
		return nil
	})
	if err := metrics.Observe("invitation_send", common.StorageError(err)); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"team_id": teamID, "invited_id": inviteeID, "inviter_id": inviterID}).Info("invitation sent")
	return invitation, nil
}

// AcceptInvitation consumes the invitation and adds inviteeID as a
// participant. If the invitee is already a member the stale invitation is
// still removed and Conflict is returned; any other failure leaves the
// invitation in place.
func (s *TeamService) AcceptInvitation(ctx context.Context, teamID uint, inviteeID string) (*TeamMembership, error) {
	var member *TeamMembership
	var alreadyMember error
	err := s.repo.WithTransaction(ctx, func(tx TeamRepository) error {
		deleted, err := tx.DeleteInvitation(ctx, teamID, inviteeID)
		if err != nil {
			return err
		}
		if !deleted {
			return common.NotFound("no pending invitation to team %d", teamID)
		}

		existing, err := tx.GetTeamMember(ctx, teamID, inviteeID)
		if err != nil {
			return err
		}
		if existing != nil {
			alreadyMember = common.Conflict("user %s is already a member of team %d", inviteeID, teamID)
			return nil
		}

		member = &TeamMembership{TeamID: teamID, UserID: inviteeID, Role: common.RoleParticipant, JoinedAt: now()}
		if err := tx.AddTeamMember(ctx, member); err != nil {
			return common.TranslateWriteError(err, "already a member of this team")
		}
		return nil
	})
	if err == nil {
		err = alreadyMember
	}
	if err := metrics.Observe("invitation_accept", common.StorageError(err)); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"team_id": teamID, "user_id": inviteeID}).Info("invitation accepted")
	return member, nil
}

// RejectInvitation discards the invitation addressed to inviteeID.
func (s *TeamService) RejectInvitation(ctx context.Context, teamID uint, inviteeID string) error {
	deleted, err := s.repo.DeleteInvitation(ctx, teamID, inviteeID)
	if err == nil && !deleted {
		err = common.NotFound("no pending invitation to team %d", teamID)
	}
	return metrics.Observe("invitation_reject", common.StorageError(err))
}

// CancelInvitation withdraws an invitation. Only the inviter can cancel it;
// any other caller sees NotFound.
func (s *TeamService) CancelInvitation(ctx context.Context, teamID uint, inviteeID, inviterID string) error {
	deleted, err := s.repo.DeleteInvitationFrom(ctx, teamID, inviteeID, inviterID)
	if err == nil && !deleted {
		err = common.NotFound("no pending invitation from you to user %s", inviteeID)
	}
	return metrics.Observe("invitation_cancel", common.StorageError(err))
}

// ListTeamInvitations lists the team's pending invitations for a manager or owner.
func (s *TeamService) ListTeamInvitations(ctx context.Context, teamID uint, actorID string, page common.Page) ([]InvitationEntry, int64, error) {
	if _, err := requireTeam(ctx, s.repo, teamID); err != nil {
		return nil, 0, common.StorageError(err)
	}
	if err := requireRole(ctx, s.repo, teamID, actorID, common.RoleManager); err != nil {
		return nil, 0, common.StorageError(err)
	}
	invitations, total, err := s.repo.GetTeamInvitationsByTeamID(ctx, teamID, page)
	return invitations, total, common.StorageError(err)
}

func (s *TeamService) ListUserInvitations(ctx context.Context, userID string, page common.Page) ([]InvitationEntry, int64, error) {
	invitations, total, err := s.repo.GetTeamInvitationsByUserID(ctx, userID, page)
	return invitations, total, common.StorageError(err)
}
