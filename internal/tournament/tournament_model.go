package tournament

import (
	"time"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/internal/user"
)

type Format string

const (
	FormatSingleElimination Format = "single_elimination"
	FormatDoubleElimination Format = "double_elimination"
	FormatRoundRobin        Format = "round_robin"
)

func (f Format) Valid() bool {
	switch f {
	case FormatSingleElimination, FormatDoubleElimination, FormatRoundRobin:
		return true
	}
	return false
}

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Tournament is a competition teams register for. A zero MaxTeams or
// MaxTeamSize means no limit.
type Tournament struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"not null;size:100;index:idx_tournaments_name_lower,unique,expression:lower(name)" json:"name"`
	Description string     `json:"description"`
	GameID      uint       `gorm:"index;not null" json:"game_id"`
	Format      Format     `gorm:"size:32;not null" json:"format"`
	MaxTeams    int        `gorm:"not null" json:"max_teams"`
	MaxTeamSize int        `gorm:"not null" json:"max_team_size"`
	MinTeamSize int        `gorm:"not null" json:"min_team_size"`
	Open        bool       `gorm:"not null" json:"open"`
	Status      Status     `gorm:"size:20;not null;index" json:"status"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	CreatedByID string     `gorm:"size:191;index" json:"created_by_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TournamentMembership is keyed by (tournament_id, user_id). Participants
// carry the team they entered through; owners and managers have none.
type TournamentMembership struct {
	TournamentID uint        `gorm:"primaryKey;autoIncrement:false" json:"tournament_id"`
	UserID       string      `gorm:"primaryKey;size:191;index" json:"user_id"`
	Role         common.Role `gorm:"size:20;not null" json:"role"`
	TeamID       *uint       `gorm:"index" json:"team_id,omitempty"`
	JoinedAt     time.Time   `gorm:"not null" json:"joined_at"`
}

func (TournamentMembership) TableName() string { return "tournament_memberships" }

// TeamRegistration records a team entered in a tournament.
type TeamRegistration struct {
	TournamentID uint      `gorm:"primaryKey;autoIncrement:false" json:"tournament_id"`
	TeamID       uint      `gorm:"primaryKey;autoIncrement:false;index" json:"team_id"`
	RegisteredAt time.Time `gorm:"not null" json:"registered_at"`
}

func (TeamRegistration) TableName() string { return "tournament_registrations" }

type TournamentWithCount struct {
	Tournament
	TeamCount int64 `json:"team_count"`
}

// RegisteredTeam is one entry of a tournament's team list.
type RegisteredTeam struct {
	TeamID           uint      `json:"team_id"`
	Name             string    `json:"name"`
	ImageURL         string    `json:"image_url"`
	RegisteredAt     time.Time `json:"registered_at"`
	ParticipantCount int64     `json:"participant_count"`
}

type Participant struct {
	user.Summary
	Role     common.Role `json:"role"`
	TeamID   *uint       `json:"team_id,omitempty"`
	JoinedAt time.Time   `json:"joined_at"`
}

// TournamentFilter narrows ListTournaments. Zero values mean no filter.
type TournamentFilter struct {
	Name   string
	GameID *uint
	Status Status
	Open   *bool
}

type CreateTournamentInput struct {
	Name        string
	Description string
	GameID      uint
	Format      string
	MaxTeams    int
	MaxTeamSize int
	MinTeamSize int
	Open        bool
	StartsAt    *time.Time
}

// TournamentPatch carries the fields of an update; nil fields are left unchanged.
type TournamentPatch struct {
	Name        *string
	Description *string
	Format      *string
	Status      *string
	MaxTeams    *int
	MaxTeamSize *int
	MinTeamSize *int
	Open        *bool
	StartsAt    *time.Time
}
