package tournament

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/internal/game"
	"github.com/DhavalSuthar-24/squadup/internal/team"
)

// TournamentRepository defines the data operations for tournaments,
// registrations and participants.
type TournamentRepository interface {
	// Tournament operations
	CreateTournament(ctx context.Context, tournament *Tournament) error
	GetTournamentByID(ctx context.Context, id uint) (*Tournament, error)
	LockTournament(ctx context.Context, id uint) (*Tournament, error)
	GetTournamentByName(ctx context.Context, name string) (*Tournament, error)
	GetTournamentWithCount(ctx context.Context, id uint) (*TournamentWithCount, error)
	GetTournaments(ctx context.Context, filter TournamentFilter, page common.Page) ([]TournamentWithCount, int64, error)
	UpdateTournament(ctx context.Context, id uint, updates map[string]interface{}) error
	DeleteTournament(ctx context.Context, id uint) error

	// Lookups into the game and team catalogues
	GameExists(ctx context.Context, id uint) (bool, error)
	GetTeam(ctx context.Context, id uint) (*team.Team, error)
	IsTeamMember(ctx context.Context, teamID uint, userID string) (bool, error)

	// Registrations
	CreateRegistration(ctx context.Context, reg *TeamRegistration) error
	GetRegistration(ctx context.Context, tournamentID, teamID uint) (*TeamRegistration, error)
	DeleteRegistration(ctx context.Context, tournamentID, teamID uint) (bool, error)
	CountRegistrations(ctx context.Context, tournamentID uint) (int64, error)
	GetRegisteredTeams(ctx context.Context, tournamentID uint, page common.Page) ([]RegisteredTeam, int64, error)

	// Memberships
	AddMember(ctx context.Context, member *TournamentMembership) error
	GetMember(ctx context.Context, tournamentID uint, userID string) (*TournamentMembership, error)
	DeleteTeamParticipant(ctx context.Context, tournamentID, teamID uint, userID string) (bool, error)
	DeleteTeamParticipants(ctx context.Context, tournamentID, teamID uint) (int64, error)
	CountTeamParticipants(ctx context.Context, tournamentID, teamID uint) (int64, error)
	GetParticipants(ctx context.Context, tournamentID uint, page common.Page) ([]Participant, int64, error)

	WithTransaction(ctx context.Context, txFunc func(TournamentRepository) error) error
}

type tournamentRepository struct {
	db *gorm.DB
}

func NewTournamentRepository(db *gorm.DB) TournamentRepository {
	return &tournamentRepository{db: db}
}

func (r *tournamentRepository) WithTransaction(ctx context.Context, txFunc func(TournamentRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return txFunc(&tournamentRepository{db: tx})
	})
}

// --- Tournament Operations ---

func (r *tournamentRepository) CreateTournament(ctx context.Context, tournament *Tournament) error {
	return r.db.WithContext(ctx).Create(tournament).Error
}

func (r *tournamentRepository) GetTournamentByID(ctx context.Context, id uint) (*Tournament, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// LockTournament reads the tournament with SELECT ... FOR UPDATE so capacity
// checks against it serialize until the surrounding transaction ends.
func (r *tournamentRepository) LockTournament(ctx context.Context, id uint) (*Tournament, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *tournamentRepository) first(db *gorm.DB, id uint) (*Tournament, error) {
	var tournament Tournament
	if err := db.First(&tournament, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tournament, nil
}

func (r *tournamentRepository) GetTournamentByName(ctx context.Context, name string) (*Tournament, error) {
	var tournament Tournament
	err := r.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).First(&tournament).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tournament, nil
}

const teamCountSelect = "tournaments.*, (SELECT COUNT(*) FROM tournament_registrations tr WHERE tr.tournament_id = tournaments.id) AS team_count"

func (r *tournamentRepository) GetTournamentWithCount(ctx context.Context, id uint) (*TournamentWithCount, error) {
	var rows []TournamentWithCount
	err := r.db.WithContext(ctx).Model(&Tournament{}).Select(teamCountSelect).
		Where("tournaments.id = ?", id).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *tournamentRepository) GetTournaments(ctx context.Context, filter TournamentFilter, page common.Page) ([]TournamentWithCount, int64, error) {
	var total int64
	apply := func(q *gorm.DB) *gorm.DB {
		if filter.Name != "" {
			q = q.Where("LOWER(tournaments.name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
		}
		if filter.GameID != nil {
			q = q.Where("tournaments.game_id = ?", *filter.GameID)
		}
		if filter.Status != "" {
			q = q.Where("tournaments.status = ?", filter.Status)
		}
		if filter.Open != nil {
			q = q.Where("tournaments.open = ?", *filter.Open)
		}
		return q
	}

	if err := apply(r.db.WithContext(ctx).Model(&Tournament{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tournaments := []TournamentWithCount{}
	err := apply(r.db.WithContext(ctx).Model(&Tournament{}).Select(teamCountSelect)).
		Order("tournaments.created_at DESC").Order("tournaments.id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Scan(&tournaments).Error
	if err != nil {
		return nil, 0, err
	}
	return tournaments, total, nil
}

func (r *tournamentRepository) UpdateTournament(ctx context.Context, id uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&Tournament{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteTournament removes the tournament with its registrations and
// memberships. Callers wrap it in WithTransaction.
func (r *tournamentRepository) DeleteTournament(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("tournament_id = ?", id).Delete(&TournamentMembership{}).Error; err != nil {
		return err
	}
	if err := db.Where("tournament_id = ?", id).Delete(&TeamRegistration{}).Error; err != nil {
		return err
	}
	return db.Delete(&Tournament{}, id).Error
}

// --- Lookups ---

func (r *tournamentRepository) GameExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&game.Game{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *tournamentRepository) GetTeam(ctx context.Context, id uint) (*team.Team, error) {
	var t team.Team
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *tournamentRepository) IsTeamMember(ctx context.Context, teamID uint, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&team.TeamMembership{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	return count > 0, err
}

// --- Registrations ---

func (r *tournamentRepository) CreateRegistration(ctx context.Context, reg *TeamRegistration) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *tournamentRepository) GetRegistration(ctx context.Context, tournamentID, teamID uint) (*TeamRegistration, error) {
	var reg TeamRegistration
	err := r.db.WithContext(ctx).Where("tournament_id = ? AND team_id = ?", tournamentID, teamID).First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (r *tournamentRepository) DeleteRegistration(ctx context.Context, tournamentID, teamID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("tournament_id = ? AND team_id = ?", tournamentID, teamID).Delete(&TeamRegistration{})
	return res.RowsAffected > 0, res.Error
}

func (r *tournamentRepository) CountRegistrations(ctx context.Context, tournamentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&TeamRegistration{}).Where("tournament_id = ?", tournamentID).Count(&count).Error
	return count, err
}

func (r *tournamentRepository) GetRegisteredTeams(ctx context.Context, tournamentID uint, page common.Page) ([]RegisteredTeam, int64, error) {
	total, err := r.CountRegistrations(ctx, tournamentID)
	if err != nil {
		return nil, 0, err
	}

	teams := []RegisteredTeam{}
	err = r.db.WithContext(ctx).Model(&TeamRegistration{}).
		Select("teams.id AS team_id, teams.name, teams.image_url, tournament_registrations.registered_at, "+
			"(SELECT COUNT(*) FROM tournament_memberships tm WHERE tm.tournament_id = tournament_registrations.tournament_id AND tm.team_id = teams.id) AS participant_count").
		Joins("JOIN teams ON teams.id = tournament_registrations.team_id").
		Where("tournament_registrations.tournament_id = ?", tournamentID).
		Order("tournament_registrations.registered_at ASC").
		Offset(page.Offset()).Limit(page.Limit).
		Scan(&teams).Error
	if err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

// --- Memberships ---

func (r *tournamentRepository) AddMember(ctx context.Context, member *TournamentMembership) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *tournamentRepository) GetMember(ctx context.Context, tournamentID uint, userID string) (*TournamentMembership, error) {
	var member TournamentMembership
	err := r.db.WithContext(ctx).Where("tournament_id = ? AND user_id = ?", tournamentID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *tournamentRepository) DeleteTeamParticipant(ctx context.Context, tournamentID, teamID uint, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("tournament_id = ? AND team_id = ? AND user_id = ?", tournamentID, teamID, userID).
		Delete(&TournamentMembership{})
	return res.RowsAffected > 0, res.Error
}

func (r *tournamentRepository) DeleteTeamParticipants(ctx context.Context, tournamentID, teamID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("tournament_id = ? AND team_id = ?", tournamentID, teamID).
		Delete(&TournamentMembership{})
	return res.RowsAffected, res.Error
}

func (r *tournamentRepository) CountTeamParticipants(ctx context.Context, tournamentID, teamID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&TournamentMembership{}).
		Where("tournament_id = ? AND team_id = ?", tournamentID, teamID).
		Count(&count).Error
	return count, err
}

// GetParticipants lists owners first, then managers, then participants.
func (r *tournamentRepository) GetParticipants(ctx context.Context, tournamentID uint, page common.Page) ([]Participant, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&TournamentMembership{}).Where("tournament_id = ?", tournamentID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	participants := []Participant{}
	err := r.db.WithContext(ctx).Model(&TournamentMembership{}).
		Select("users.id, users.username, users.first_name, users.last_name, users.image_url, "+
			"tournament_memberships.role, tournament_memberships.team_id, tournament_memberships.joined_at").
		Joins("JOIN users ON users.id = tournament_memberships.user_id").
		Where("tournament_memberships.tournament_id = ?", tournamentID).
		Order(common.RoleOrderSQL).
		Order("tournament_memberships.joined_at ASC").
		Offset(page.Offset()).Limit(page.Limit).
		Scan(&participants).Error
	if err != nil {
		return nil, 0, err
	}
	return participants, total, nil
}
