package tournament

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/internal/metrics"
)

// TournamentService manages tournaments, team registrations and the
// participants entered through registered teams.
type TournamentService struct {
	repo   TournamentRepository
	logger logrus.FieldLogger
}

func NewTournamentService(repo TournamentRepository, logger logrus.FieldLogger) *TournamentService {
	return &TournamentService{repo: repo, logger: logger}
}

func now() time.Time { return time.Now().UTC() }

func validateSizes(maxTeams, maxTeamSize, minTeamSize int) error {
	if maxTeams < 0 || maxTeamSize < 0 || minTeamSize < 0 {
		return common.InvalidOperation("team limits cannot be negative")
	}
	if maxTeamSize > 0 && minTeamSize > maxTeamSize {
		return common.InvalidOperation("min_team_size %d exceeds max_team_size %d", minTeamSize, maxTeamSize)
	}
	return nil
}

// CreateTournament inserts the tournament and makes actorID its owner.
func (s *TournamentService) CreateTournament(ctx context.Context, actorID string, in CreateTournamentInput) (*Tournament, error) {
	t, err := s.createTournament(ctx, actorID, in)
	if err := metrics.Observe("tournament_create", common.StorageError(err)); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"tournament_id": t.ID, "owner_id": actorID}).Info("tournament created")
	return t, nil
}

func (s *TournamentService) createTournament(ctx context.Context, actorID string, in CreateTournamentInput) (*Tournament, error) {
	format := Format(strings.ToLower(in.Format))
	if !format.Valid() {
		return nil, common.InvalidOperation("unknown tournament format %q", in.Format)
	}
	if err := validateSizes(in.MaxTeams, in.MaxTeamSize, in.MinTeamSize); err != nil {
		return nil, err
	}
	name, err := common.NormalizeName("tournament", in.Name)
	if err != nil {
		return nil, err
	}

	t := &Tournament{
		Name:        name,
		Description: in.Description,
		GameID:      in.GameID,
		Format:      format,
		MaxTeams:    in.MaxTeams,
		MaxTeamSize: in.MaxTeamSize,
		MinTeamSize: in.MinTeamSize,
		Open:        in.Open,
		Status:      StatusUpcoming,
		StartsAt:    in.StartsAt,
		CreatedByID: actorID,
	}
	err = s.repo.WithTransaction(ctx, func(tx TournamentRepository) error {
		exists, err := tx.GameExists(ctx, in.GameID)
		if err != nil {
			return err
		}
		if !exists {
			return common.NotFound("game %d not found", in.GameID)
		}
		existing, err := tx.GetTournamentByName(ctx, t.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return common.Conflict("tournament name %q is already taken", t.Name)
		}
		if err := tx.CreateTournament(ctx, t); err != nil {
			return common.TranslateWriteError(err, "tournament name "+t.Name+" is already taken")
		}
		return tx.AddMember(ctx, &TournamentMembership{
			TournamentID: t.ID,
			UserID:       actorID,
			Role:         common.RoleOwner,
			JoinedAt:     now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTournament applies patch. The actor must be at least a manager and
// max_teams cannot drop below the number of registered teams.
func (s *TournamentService) UpdateTournament(ctx context.Context, tournamentID uint, actorID string, patch TournamentPatch) (*Tournament, error) {
	var updated *Tournament
	err := s.repo.WithTransaction(ctx, func(tx TournamentRepository) error {
		t, err := tx.LockTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if t == nil {
			return common.NotFound("tournament %d not found", tournamentID)
		}
		if err := requireRole(ctx, tx, tournamentID, actorID, common.RoleManager); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.Name != nil {
			name, err := common.NormalizeName("tournament", *patch.Name)
			if err != nil {
				return err
			}
			existing, err := tx.GetTournamentByName(ctx, name)
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != tournamentID {
				return common.Conflict("tournament name %q is already taken", name)
			}
			updates["name"] = name
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.Format != nil {
			format := Format(strings.ToLower(*patch.Format))
			if !format.Valid() {
				return common.InvalidOperation("unknown tournament format %q", *patch.Format)
			}
			updates["format"] = format
		}
		if patch.Status != nil {
			status := Status(strings.ToLower(*patch.Status))
			if !status.Valid() {
				return common.InvalidOperation("unknown tournament status %q", *patch.Status)
			}
			updates["status"] = status
		}
		if patch.Open != nil {
			updates["open"] = *patch.Open
		}
		if patch.StartsAt != nil {
			updates["starts_at"] = *patch.StartsAt
		}

		maxTeams, maxTeamSize, minTeamSize := t.MaxTeams, t.MaxTeamSize, t.MinTeamSize
		if patch.MaxTeams != nil {
			maxTeams = *patch.MaxTeams
			updates["max_teams"] = maxTeams
		}
		if patch.MaxTeamSize != nil {
			maxTeamSize = *patch.MaxTeamSize
			updates["max_team_size"] = maxTeamSize
		}
		if patch.MinTeamSize != nil {
			minTeamSize = *patch.MinTeamSize
			updates["min_team_size"] = minTeamSize
		}
		if err := validateSizes(maxTeams, maxTeamSize, minTeamSize); err != nil {
			return err
		}
		if patch.MaxTeams != nil && maxTeams > 0 {
			registered, err := tx.CountRegistrations(ctx, tournamentID)
			if err != nil {
				return err
			}
			if registered > int64(maxTeams) {
				return common.CapacityExceeded("%d teams are already registered", registered)
			}
		}

		if len(updates) > 0 {
			if err := tx.UpdateTournament(ctx, tournamentID, updates); err != nil {
				return common.TranslateWriteError(err, "tournament name is already taken")
			}
		}
		updated, err = tx.GetTournamentByID(ctx, tournamentID)
		return err
	})
	if err := metrics.Observe("tournament_update", common.StorageError(err)); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTournament removes the tournament, its registrations and its
// memberships. Owner only.
func (s *TournamentService) DeleteTournament(ctx context.Context, tournamentID uint, actorID string) error {
	err := s.repo.WithTransaction(ctx, func(tx TournamentRepository) error {
		t, err := tx.LockTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if t == nil {
			return common.NotFound("tournament %d not found", tournamentID)
		}
		if err := requireRole(ctx, tx, tournamentID, actorID, common.RoleOwner); err != nil {
			return err
		}
		return tx.DeleteTournament(ctx, tournamentID)
	})
	if err := metrics.Observe("tournament_delete", common.StorageError(err)); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"tournament_id": tournamentID, "actor_id": actorID}).Info("tournament deleted")
	return nil
}

// --- Registrations ---

// RegisterTeam enters teamID in the tournament. The tournament row stays
// locked until commit so concurrent registrations cannot overshoot max_teams.
func (s *TournamentService) RegisterTeam(ctx context.Context, tournamentID, teamID uint) (*TeamRegistration, error) {
	reg := &TeamRegistration{TournamentID: tournamentID, TeamID: teamID}
	err := s.repo.WithTransaction(ctx, func(tx TournamentRepository) error {
		t, err := tx.LockTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if t == nil {
			return common.NotFound("tournament %d not found", tournamentID)
		}
		tm, err := tx.GetTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if tm == nil {
			return common.NotFound("team %d not found", teamID)
		}
		if !t.Open {
			return common.Forbidden("tournament %d is not open for registration", tournamentID)
		}
		existing, err := tx.GetRegistration(ctx, tournamentID, teamID)
		if err != nil {
			return err
		}
		if existing != nil {
			return common.Conflict("team %d is already registered in tournament %d", teamID, tournamentID)
		}
		if t.MaxTeams > 0 {
			registered, err := tx.CountRegistrations(ctx, tournamentID)
			if err != nil {
				return err
			}
			if registered >= int64(t.MaxTeams) {
				return common.CapacityExceeded("tournament %d already has %d of %d teams", tournamentID, registered, t.MaxTeams)
			}
		}

		reg.RegisteredAt = now()
		if err := tx.CreateRegistration(ctx, reg); err != nil {
			return common.TranslateWriteError(err, "team is already registered in this tournament")
		}
		return nil
	})
	if err := metrics.Observe("tournament_register_team", common.StorageError(err)); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"tournament_id": tournamentID, "team_id": teamID}).Info("team registered")
	return reg, nil
}

// UnregisterTeam withdraws the team together with every participant who
// entered through it.
func (s *TournamentService) UnregisterTeam(ctx context.Context, tournamentID, teamID uint) error {
	err := s.repo.WithTransaction(ctx, func(tx TournamentRepository) error {
		deleted, err := tx.DeleteRegistration(ctx, tournamentID, teamID)
		if err != nil {
			return err
		}
		if !deleted {
			return common.NotFound("team %d is not registered in tournament %d", teamID, tournamentID)
		}
		removed, err := tx.DeleteTeamParticipants(ctx, tournamentID, teamID)
		if err != nil {
			return err
		}
		s.logger.WithFields(logrus.Fields{"tournament_id": tournamentID, "team_id": teamID, "participants_removed": removed}).Info("team unregistered")
		return nil
	})
	return metrics.Observe("tournament_unregister_team", common.StorageError(err))
}

// RegisterUser enters userID as a participant through a registered team the
// user belongs to.
func (s *TournamentService) RegisterUser(ctx context.Context, tournamentID, teamID uint, userID string) (*TournamentMembership, error) {
	var member *TournamentMembership
	err := s.repo.WithTransaction(ctx, func(tx TournamentRepository) error {
		t, err := tx.LockTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if t == nil {
			return common.NotFound("tournament %d not found", tournamentID)
		}
		reg, err := tx.GetRegistration(ctx, tournamentID, teamID)
		if err != nil {
			return err
		}
		if reg == nil {
			return common.NotFound("team %d is not registered in tournament %d", teamID, tournamentID)
		}
		isMember, err := tx.IsTeamMember(ctx, teamID, userID)
		if err != nil {
			return err
		}
		if !isMember {
			return common.Forbidden("user %s is not a member of team %d", userID, teamID)
		}
		existing, err := tx.GetMember(ctx, tournamentID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return common.Conflict("user %s is already in tournament %d", userID, tournamentID)
		}
		if t.MaxTeamSize > 0 {
			fielded, err := tx.CountTeamParticipants(ctx, tournamentID, teamID)
			if err != nil {
				return err
			}
			if fielded >= int64(t.MaxTeamSize) {
				return common.CapacityExceeded("team %d already fields %d of %d players", teamID, fielded, t.MaxTeamSize)
			}
		}

		team := teamID
		member = &TournamentMembership{
			TournamentID: tournamentID,
			UserID:       userID,
			Role:         common.RoleParticipant,
			TeamID:       &team,
			JoinedAt:     now(),
		}
		if err := tx.AddMember(ctx, member); err != nil {
			return common.TranslateWriteError(err, "already in this tournament")
		}
		return nil
	})
	if err := metrics.Observe("tournament_register_user", common.StorageError(err)); err != nil {
		return nil, err
	}
	return member, nil
}

// UnregisterUser removes a participant entered through teamID.
func (s *TournamentService) UnregisterUser(ctx context.Context, tournamentID, teamID uint, userID string) error {
	deleted, err := s.repo.DeleteTeamParticipant(ctx, tournamentID, teamID, userID)
	if err == nil && !deleted {
		err = common.NotFound("user %s is not playing for team %d in tournament %d", userID, teamID, tournamentID)
	}
	return metrics.Observe("tournament_unregister_user", common.StorageError(err))
}

// --- Reads ---

func (s *TournamentService) GetTournament(ctx context.Context, tournamentID uint) (*TournamentWithCount, error) {
	t, err := s.repo.GetTournamentWithCount(ctx, tournamentID)
	if err != nil {
		return nil, common.StorageError(err)
	}
	if t == nil {
		return nil, common.NotFound("tournament %d not found", tournamentID)
	}
	return t, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context, filter TournamentFilter, page common.Page) ([]TournamentWithCount, int64, error) {
	tournaments, total, err := s.repo.GetTournaments(ctx, filter, page)
	return tournaments, total, common.StorageError(err)
}

func (s *TournamentService) ListRegisteredTeams(ctx context.Context, tournamentID uint, page common.Page) ([]RegisteredTeam, int64, error) {
	if err := s.requireTournament(ctx, tournamentID); err != nil {
		return nil, 0, err
	}
	teams, total, err := s.repo.GetRegisteredTeams(ctx, tournamentID, page)
	return teams, total, common.StorageError(err)
}

func (s *TournamentService) ListParticipants(ctx context.Context, tournamentID uint, page common.Page) ([]Participant, int64, error) {
	if err := s.requireTournament(ctx, tournamentID); err != nil {
		return nil, 0, err
	}
	participants, total, err := s.repo.GetParticipants(ctx, tournamentID, page)
	return participants, total, common.StorageError(err)
}

// RoleOf returns userID's role in the tournament, or NotFound.
func (s *TournamentService) RoleOf(ctx context.Context, tournamentID uint, userID string) (common.Role, error) {
	member, err := s.repo.GetMember(ctx, tournamentID, userID)
	if err != nil {
		return "", common.StorageError(err)
	}
	if member == nil {
		return "", common.NotFound("user %s is not in tournament %d", userID, tournamentID)
	}
	return member.Role, nil
}

func (s *TournamentService) requireTournament(ctx context.Context, tournamentID uint) error {
	t, err := s.repo.GetTournamentByID(ctx, tournamentID)
	if err != nil {
		return common.StorageError(err)
	}
	if t == nil {
		return common.NotFound("tournament %d not found", tournamentID)
	}
	return nil
}

func requireRole(ctx context.Context, repo TournamentRepository, tournamentID uint, userID string, min common.Role) error {
	member, err := repo.GetMember(ctx, tournamentID, userID)
	if err != nil {
		return err
	}
	if member == nil || !member.Role.AtLeast(min) {
		return common.Forbidden("requires %s role in tournament %d", min, tournamentID)
	}
	return nil
}
