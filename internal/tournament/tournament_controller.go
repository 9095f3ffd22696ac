package tournament

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	mw "github.com/DhavalSuthar-24/squadup/internal/middleware"
	"github.com/DhavalSuthar-24/squadup/pkg/responses"
	"github.com/DhavalSuthar-24/squadup/pkg/validator"
)

// TeamRoleLookup resolves a user's role within a team.
type TeamRoleLookup interface {
	RoleOf(ctx context.Context, teamID uint, userID string) (common.Role, error)
}

type TournamentController struct {
	service *TournamentService
	teams   TeamRoleLookup
}

func NewTournamentController(service *TournamentService, teams TeamRoleLookup) *TournamentController {
	return &TournamentController{service: service, teams: teams}
}

// --- DTOs ---

type CreateTournamentRequest struct {
	Name        string     `json:"name" binding:"required,min=3,max=100"`
	Description string     `json:"description" binding:"max=5000"`
	GameID      uint       `json:"game_id" binding:"required"`
	Format      string     `json:"format" binding:"required,oneof=single_elimination double_elimination round_robin"`
	MaxTeams    int        `json:"max_teams" binding:"gte=0"`
	MaxTeamSize int        `json:"max_team_size" binding:"gte=0"`
	MinTeamSize int        `json:"min_team_size" binding:"gte=0"`
	Open        *bool      `json:"open"`
	StartsAt    *time.Time `json:"starts_at"`
}

type UpdateTournamentRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=3,max=100"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	Format      *string    `json:"format" binding:"omitempty,oneof=single_elimination double_elimination round_robin"`
	Status      *string    `json:"status" binding:"omitempty,oneof=upcoming ongoing completed cancelled"`
	MaxTeams    *int       `json:"max_teams" binding:"omitempty,gte=0"`
	MaxTeamSize *int       `json:"max_team_size" binding:"omitempty,gte=0"`
	MinTeamSize *int       `json:"min_team_size" binding:"omitempty,gte=0"`
	Open        *bool      `json:"open"`
	StartsAt    *time.Time `json:"starts_at"`
}

func uintParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := common.ParseUintParam(c, name)
	if err != nil {
		responses.BadRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

// authorizeTeam writes a 403 unless userID holds at least min in teamID.
func (tc *TournamentController) authorizeTeam(c *gin.Context, teamID uint, userID string, min common.Role) bool {
	role, err := tc.teams.RoleOf(c.Request.Context(), teamID, userID)
	if err != nil && !common.IsKind(err, common.KindNotFound) {
		responses.SendAppError(c, err)
		return false
	}
	if !role.AtLeast(min) {
		responses.Forbidden(c, "Requires the "+min.String()+" role in the team")
		return false
	}
	return true
}

// --- Tournament Handlers ---

// CreateTournament godoc
// @Summary Create a tournament
// @Description The caller becomes the tournament owner. Tournaments are open for registration unless "open" is false.
// @Tags Tournaments
// @Accept json
// @Produce json
// @Param tournament body CreateTournamentRequest true "Tournament"
// @Success 201 {object} responses.SuccessResponse{data=Tournament}
// @Failure 400 {object} responses.ErrorResponse "Invalid input"
// @Failure 404 {object} responses.ErrorResponse "Game not found"
// @Failure 409 {object} responses.ErrorResponse "Name taken"
// @Security ApiKeyAuth
// @Router /tournaments [post]
func (tc *TournamentController) CreateTournament(c *gin.Context) {
	userID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	var req CreateTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}
	open := true
	if req.Open != nil {
		open = *req.Open
	}

	t, err := tc.service.CreateTournament(c.Request.Context(), userID, CreateTournamentInput{
		Name:        req.Name,
		Description: req.Description,
		GameID:      req.GameID,
		Format:      req.Format,
		MaxTeams:    req.MaxTeams,
		MaxTeamSize: req.MaxTeamSize,
		MinTeamSize: req.MinTeamSize,
		Open:        open,
		StartsAt:    req.StartsAt,
	})
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Tournament created successfully", t)
}

// GetTournaments godoc
// @Summary List tournaments
// @Tags Tournaments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param name query string false "Name substring"
// @Param game_id query int false "Game ID"
// @Param status query string false "upcoming, ongoing, completed or cancelled"
// @Param open query bool false "Open for registration"
// @Success 200 {object} responses.PaginatedResponse{data=[]TournamentWithCount}
// @Router /tournaments [get]
func (tc *TournamentController) GetTournaments(c *gin.Context) {
	page := common.ParsePage(c)
	filter := TournamentFilter{Name: c.Query("name"), Status: Status(c.Query("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		responses.BadRequest(c, "Invalid status filter")
		return
	}
	if raw := c.Query("game_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			responses.BadRequest(c, "Invalid game_id filter")
			return
		}
		gameID := uint(id)
		filter.GameID = &gameID
	}
	if raw := c.Query("open"); raw != "" {
		open, err := strconv.ParseBool(raw)
		if err != nil {
			responses.BadRequest(c, "Invalid open filter")
			return
		}
		filter.Open = &open
	}

	tournaments, total, err := tc.service.ListTournaments(c.Request.Context(), filter, page)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Tournaments retrieved successfully", tournaments, total, page.Page, page.Limit)
}

// GetTournamentByID godoc
// @Summary Get a tournament
// @Tags Tournaments
// @Produce json
// @Param tournament_id path int true "Tournament ID"
// @Success 200 {object} responses.SuccessResponse{data=TournamentWithCount}
// @Failure 404 {object} responses.ErrorResponse
// @Router /tournaments/{tournament_id} [get]
func (tc *TournamentController) GetTournamentByID(c *gin.Context) {
	id, ok := uintParam(c, "tournament_id", "tournament")
	if !ok {
		return
	}
	t, err := tc.service.GetTournament(c.Request.Context(), id)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Tournament retrieved successfully", t)
}

// UpdateTournament godoc
// @Summary Update a tournament
// @Description Tournament managers and owners only. max_teams cannot drop below the registered team count.
// @Tags Tournaments
// @Accept json
// @Produce json
// @Param tournament_id path int true "Tournament ID"
// @Param tournament body UpdateTournamentRequest true "Fields to change"
// @Success 200 {object} responses.SuccessResponse{data=Tournament}
// @Failure 403 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse "Name taken or capacity below registrations"
// @Security ApiKeyAuth
// @Router /tournaments/{tournament_id} [put]
func (tc *TournamentController) UpdateTournament(c *gin.Context) {
	userID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "tournament_id", "tournament")
	if !ok {
		return
	}
	var req UpdateTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	t, err := tc.service.UpdateTournament(c.Request.Context(), id, userID, TournamentPatch{
		Name:        req.Name,
		Description: req.Description,
		Format:      req.Format,
		Status:      req.Status,
		MaxTeams:    req.MaxTeams,
		MaxTeamSize: req.MaxTeamSize,
		MinTeamSize: req.MinTeamSize,
		Open:        req.Open,
		StartsAt:    req.StartsAt,
	})
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Tournament updated successfully", t)
}

// DeleteTournament godoc
// @Summary Delete a tournament
// @Description Owner only. Removes registrations and memberships with it.
// @Tags Tournaments
// @Produce json
// @Param tournament_id path int true "Tournament ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Security ApiKeyAuth
// @Router /tournaments/{tournament_id} [delete]
func (tc *TournamentController) DeleteTournament(c *gin.Context) {
	userID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "tournament_id", "tournament")
	if !ok {
		return
	}
	if err := tc.service.DeleteTournament(c.Request.Context(), id, userID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Tournament deleted successfully", nil)
}

// --- Registration Handlers ---

// GetRegisteredTeams godoc
// @Summary List teams registered in a tournament
// @Tags Tournament Registration
// @Produce json
// @Param tournament_id path int true "Tournament ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]RegisteredTeam}
// @Failure 404 {object} responses.ErrorResponse
// @Router /tournaments/{tournament_id}/teams [get]
func (tc *TournamentController) GetRegisteredTeams(c *gin.Context) {
	id, ok := uintParam(c, "tournament_id", "tournament")
	if !ok {
		return
	}
	page := common.ParsePage(c)
	teams, total, err := tc.service.ListRegisteredTeams(c.Request.Context(), id, page)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Registered teams retrieved successfully", teams, total, page.Page, page.Limit)
}

// GetParticipants godoc
// @Summary List tournament members
// @Description Owners first, then managers, then participants.
// @Tags Tournament Registration
// @Produce json
// @Param tournament_id path int true "Tournament ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]Participant}
// @Failure 404 {object} responses.ErrorResponse
// @Router /tournaments/{tournament_id}/participants [get]
func (tc *TournamentController) GetParticipants(c *gin.Context) {
	id, ok := uintParam(c, "tournament_id", "tournament")
	if !ok {
		return
	}
	page := common.ParsePage(c)
	participants, total, err := tc.service.ListParticipants(c.Request.Context(), id, page)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Participants retrieved successfully", participants, total, page.Page, page.Limit)
}

// RegisterTeam godoc
// @Summary Register a team in a tournament
// @Description The caller must be a manager or owner of the team.
// @Tags Tournament Registration
// @Produce json
// @Param tournament_id path int true "Tournament ID"
// @Param team_id path int true "Team ID"
// @Success 201 {object} responses.SuccessResponse{data=TeamRegistration}
// @Failure 403 {object} responses.ErrorResponse "Not a team manager, or registration closed"
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse "Already registered or tournament full"
// @Security ApiKeyAuth
// @Router /tournaments/{tournament_id}/teams/{team_id} [post]
func (tc *TournamentController) RegisterTeam(c *gin.Context) {
	userID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	tournamentID, ok := uintParam(c, "tournament_id", "tournament")
	if !ok {
		return
	}
	teamID, ok := uintParam(c, "team_id", "team")
	if !ok {
		return
	}
	if !tc.authorizeTeam(c, teamID, userID, common.RoleManager) {
		return
	}
	reg, err := tc.service.RegisterTeam(c.Request.Context(), tournamentID, teamID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Team registered successfully", reg)
}

// UnregisterTeam godoc
// @Summary Withdraw a team from a tournament
// @Description The caller must be a manager or owner of the team. Participants entered through the team are removed too.
// @Tags Tournament Registration
// @Produce json
// @Param tournament_id path int true "Tournament ID"
// @Param team_id path int true "Team ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse "Not registered"
// @Security ApiKeyAuth
// @Router /tournaments/{tournament_id}/teams/{team_id} [delete]
func (tc *TournamentController) UnregisterTeam(c *gin.Context) {
	userID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	tournamentID, ok := uintParam(c, "tournament_id", "tournament")
	if !ok {
		return
	}
	teamID, ok := uintParam(c, "team_id", "team")
	if !ok {
		return
	}
	if !tc.authorizeTeam(c, teamID, userID, common.RoleManager) {
		return
	}
	if err := tc.service.UnregisterTeam(c.Request.Context(), tournamentID, teamID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team unregistered successfully", nil)
}

// RegisterUser godoc
// @Summary Enter a team member into a tournament
// @Description Callers may register themselves, or any member of a team they manage.
// @Tags Tournament Registration
// @Produce json
// @Param tournament_id path int true "Tournament ID"
// @Param team_id path int true "Team ID"
// @Param user_id path string true "User ID"
// @Success 201 {object} responses.SuccessResponse{data=TournamentMembership}
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse "Already entered or team full"
// @Security ApiKeyAuth
// @Router /tournaments/{tournament_id}/teams/{team_id}/users/{user_id} [post]
func (tc *TournamentController) RegisterUser(c *gin.Context) {
	callerID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	tournamentID, ok := uintParam(c, "tournament_id", "tournament")
	if !ok {
		return
	}
	teamID, ok := uintParam(c, "team_id", "team")
	if !ok {
		return
	}
	userID := c.Param("user_id")
	if userID != callerID && !tc.authorizeTeam(c, teamID, callerID, common.RoleManager) {
		return
	}
	member, err := tc.service.RegisterUser(c.Request.Context(), tournamentID, teamID, userID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "User registered successfully", member)
}

// UnregisterUser godoc
// @Summary Remove a participant from a tournament
// @Tags Tournament Registration
// @Produce json
// @Param tournament_id path int true "Tournament ID"
// @Param team_id path int true "Team ID"
// @Param user_id path string true "User ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Security ApiKeyAuth
// @Router /tournaments/{tournament_id}/teams/{team_id}/users/{user_id} [delete]
func (tc *TournamentController) UnregisterUser(c *gin.Context) {
	callerID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	tournamentID, ok := uintParam(c, "tournament_id", "tournament")
	if !ok {
		return
	}
	teamID, ok := uintParam(c, "team_id", "team")
	if !ok {
		return
	}
	userID := c.Param("user_id")
	if userID != callerID && !tc.authorizeTeam(c, teamID, callerID, common.RoleManager) {
		return
	}
	if err := tc.service.UnregisterUser(c.Request.Context(), tournamentID, teamID, userID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "User unregistered successfully", nil)
}
