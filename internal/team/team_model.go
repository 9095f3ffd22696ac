package team

import (
	"time"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/internal/user"
)

// Team is a group of users. Open teams accept anyone through JoinTeam;
// closed teams are entered by invitation only. Names are unique ignoring case.
type Team struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:100;index:idx_teams_name_lower,unique,expression:lower(name)" json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Open        bool      `gorm:"not null" json:"open"`
	CreatedByID string    `gorm:"size:191;index" json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TeamMembership is keyed by (team_id, user_id): a user holds one role per team.
type TeamMembership struct {
	TeamID   uint        `gorm:"primaryKey;autoIncrement:false" json:"team_id"`
	UserID   string      `gorm:"primaryKey;size:191;index" json:"user_id"`
	Role     common.Role `gorm:"size:20;not null" json:"role"`
	JoinedAt time.Time   `gorm:"not null" json:"joined_at"`
}

func (TeamMembership) TableName() string { return "team_memberships" }

// TeamInvitation is a pending invitation. Accepting, rejecting or cancelling
// deletes the row, so at most one exists per (team, invitee).
type TeamInvitation struct {
	TeamID    uint      `gorm:"primaryKey;autoIncrement:false" json:"team_id"`
	InvitedID string    `gorm:"primaryKey;size:191;index" json:"invited_id"`
	InviterID string    `gorm:"size:191;index;not null" json:"inviter_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (TeamInvitation) TableName() string { return "team_invitations" }

// TeamWithCount is a team plus its current member count.
type TeamWithCount struct {
	Team
	MemberCount int64 `json:"member_count"`
}

// UserTeam is a team seen from one of its members.
type UserTeam struct {
	Team
	Role     common.Role `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
}

// MemberEntry is one row of a team roster.
type MemberEntry struct {
	user.Summary
	Role     common.Role `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
}

// InvitationEntry is a pending invitation with the team name attached.
type InvitationEntry struct {
	TeamInvitation
	TeamName string `json:"team_name"`
}

// TeamFilter narrows ListTeams. Zero values mean no filter.
type TeamFilter struct {
	Name string
	Open *bool
}

type CreateTeamInput struct {
	Name        string
	Description string
	ImageURL    string
	Open        bool
}

// TeamPatch carries the fields of an update; nil fields are left unchanged.
type TeamPatch struct {
	Name        *string
	Description *string
	ImageURL    *string
	Open        *bool
}
