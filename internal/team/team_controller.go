package team

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	mw "github.com/DhavalSuthar-24/squadup/internal/middleware"
	"github.com/DhavalSuthar-24/squadup/pkg/responses"
	"github.com/DhavalSuthar-24/squadup/pkg/validator"
)

// TeamController handles team-related HTTP requests
type TeamController struct {
	service *TeamService
}

// NewTeamController creates a new team controller
func NewTeamController(service *TeamService) *TeamController {
	return &TeamController{service: service}
}

// --- DTOs for requests ---

type CreateTeamRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"max=1000"`
	ImageURL    string `json:"image_url" binding:"omitempty,url,max=2048"`
	Open        *bool  `json:"open"`
}

type UpdateTeamRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	ImageURL    *string `json:"image_url" binding:"omitempty,url,max=2048"`
	Open        *bool   `json:"open"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=owner manager participant"`
}

type SendInvitationRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Message string `json:"message" binding:"max=500"`
}

func teamIDParam(c *gin.Context) (uint, bool) {
	id, err := common.ParseUintParam(c, "team_id")
	if err != nil {
		responses.BadRequest(c, "Invalid team ID")
		return 0, false
	}
	return id, true
}

// --- Team Handlers ---

// CreateTeam godoc
// @Summary Create a new team
// @Description Creates a new team with the authenticated user as its owner. Teams are open unless "open" is false.
// @Tags Teams
// @Accept json
// @Produce json
// @Param team body CreateTeamRequest true "Team Creation Data"
// @Success 201 {object} responses.SuccessResponse{data=Team} "Team created successfully"
// @Failure 400 {object} responses.ErrorResponse "Invalid input"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized"
// @Failure 409 {object} responses.ErrorResponse "Team name taken"
// @Security ApiKeyAuth
// @Router /teams [post]
func (tc *TeamController) CreateTeam(c *gin.Context) {
	userID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	open := true
	if req.Open != nil {
		open = *req.Open
	}
	team, err := tc.service.CreateTeam(c.Request.Context(), userID, CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Open:        open,
	})
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Team created successfully", team)
}

// GetTeamByID godoc
// @Summary Get a team by its ID
// @Tags Teams
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 200 {object} responses.SuccessResponse{data=TeamWithCount} "Team details"
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Router /teams/{team_id} [get]
func (tc *TeamController) GetTeamByID(c *gin.Context) {
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	team, err := tc.service.GetTeam(c.Request.Context(), teamID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team retrieved successfully", team)
}

// GetAllTeams godoc
// @Summary Get all teams
// @Description Retrieves teams, newest first, with optional filters and pagination.
// @Tags Teams
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param name query string false "Search by team name (case-insensitive, partial match)"
// @Param open query bool false "Filter by open/invite-only"
// @Success 200 {object} responses.PaginatedResponse{data=[]TeamWithCount} "List of teams"
// @Router /teams [get]
func (tc *TeamController) GetAllTeams(c *gin.Context) {
	page := common.ParsePage(c)
	filter := TeamFilter{Name: c.Query("name")}
	if raw := c.Query("open"); raw != "" {
		open, err := strconv.ParseBool(raw)
		if err != nil {
			responses.BadRequest(c, "Invalid open filter")
			return
		}
		filter.Open = &open
	}

	teams, total, err := tc.service.ListTeams(c.Request.Context(), filter, page)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Teams retrieved successfully", teams, total, page.Page, page.Limit)
}

// UpdateTeam godoc
// @Summary Update a team
// @Description Only team managers and owners can update.
// @Tags Teams
// @Accept json
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param team body UpdateTeamRequest true "Team Update Data"
// @Success 200 {object} responses.SuccessResponse{data=Team} "Team updated successfully"
// @Failure 403 {object} responses.ErrorResponse "Not a team manager"
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Failure 409 {object} responses.ErrorResponse "Team name taken"
// @Security ApiKeyAuth
// @Router /teams/{team_id} [put]
func (tc *TeamController) UpdateTeam(c *gin.Context) {
	userID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	team, err := tc.service.UpdateTeam(c.Request.Context(), teamID, userID, TeamPatch{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Open:        req.Open,
	})
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team updated successfully", team)
}

// DeleteTeam godoc
// @Summary Delete a team
// @Description Owner only. Removes memberships, invitations and tournament registrations with it.
// @Tags Teams
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 200 {object} responses.SuccessResponse "Team deleted successfully"
// @Failure 403 {object} responses.ErrorResponse "Not the team owner"
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Security ApiKeyAuth
// @Router /teams/{team_id} [delete]
func (tc *TeamController) DeleteTeam(c *gin.Context) {
	userID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	if err := tc.service.DeleteTeam(c.Request.Context(), teamID, userID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team deleted successfully", nil)
}

// GetUserTeams godoc
// @Summary Get the teams a user belongs to
// @Tags Teams
// @Produce json
// @Param user_id path string true "User ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]UserTeam}
// @Failure 404 {object} responses.ErrorResponse "User not found"
// @Router /users/{user_id}/teams [get]
func (tc *TeamController) GetUserTeams(c *gin.Context) {
	page := common.ParsePage(c)
	teams, total, err := tc.service.ListUserTeams(c.Request.Context(), c.Param("user_id"), page)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "User teams retrieved successfully", teams, total, page.Page, page.Limit)
}

// --- Membership Handlers ---

// GetTeamMembers godoc
// @Summary List team members
// @Description Owners first, then managers, then participants, each by join time.
// @Tags Team Members
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]MemberEntry}
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Router /teams/{team_id}/members [get]
func (tc *TeamController) GetTeamMembers(c *gin.Context) {
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	page := common.ParsePage(c)
	members, total, err := tc.service.ListMembers(c.Request.Context(), teamID, page)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Team members retrieved successfully", members, total, page.Page, page.Limit)
}

// JoinTeam godoc
// @Summary Join an open team
// @Tags Team Members
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 201 {object} responses.SuccessResponse{data=TeamMembership}
// @Failure 403 {object} responses.ErrorResponse "Team is invite-only"
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Failure 409 {object} responses.ErrorResponse "Already a member"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/join [post]
func (tc *TeamController) JoinTeam(c *gin.Context) {
	userID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	member, err := tc.service.JoinTeam(c.Request.Context(), teamID, userID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Joined team successfully", member)
}

// LeaveTeam godoc
// @Summary Leave a team
// @Description The only owner of a team cannot leave it.
// @Tags Team Members
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse "Sole owner"
// @Failure 404 {object} responses.ErrorResponse "Not a member"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/leave [post]
func (tc *TeamController) LeaveTeam(c *gin.Context) {
	userID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	if err := tc.service.LeaveTeam(c.Request.Context(), teamID, userID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Left team successfully", nil)
}

// RemoveTeamMember godoc
// @Summary Remove a member from a team
// @Tags Team Members
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param user_id path string true "User to remove"
// @Success 200 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse "Cannot remove yourself"
// @Failure 403 {object} responses.ErrorResponse "Insufficient role"
// @Failure 404 {object} responses.ErrorResponse "Not a member"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/members/{user_id} [delete]
func (tc *TeamController) RemoveTeamMember(c *gin.Context) {
	actorID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	if err := tc.service.RemoveMember(c.Request.Context(), teamID, actorID, c.Param("user_id")); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Member removed successfully", nil)
}

// UpdateTeamMemberRole godoc
// @Summary Change a member's role
// @Description Owner only. The last owner cannot be demoted.
// @Tags Team Members
// @Accept json
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param user_id path string true "Member"
// @Param role body UpdateMemberRoleRequest true "New role"
// @Success 200 {object} responses.SuccessResponse{data=TeamMembership}
// @Failure 403 {object} responses.ErrorResponse "Not the owner, or last owner"
// @Failure 404 {object} responses.ErrorResponse "Not a member"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/members/{user_id}/role [put]
func (tc *TeamController) UpdateTeamMemberRole(c *gin.Context) {
	actorID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	var req UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}
	member, err := tc.service.UpdateMemberRole(c.Request.Context(), teamID, actorID, c.Param("user_id"), req.Role)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Member role updated successfully", member)
}

// --- Invitation Handlers ---

// SendInvitation godoc
// @Summary Invite a user to a team
// @Tags Team Invitations
// @Accept json
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param invitation body SendInvitationRequest true "Invitee"
// @Success 201 {object} responses.SuccessResponse{data=TeamInvitation}
// @Failure 400 {object} responses.ErrorResponse "Self invitation"
// @Failure 403 {object} responses.ErrorResponse "Not a team manager"
// @Failure 404 {object} responses.ErrorResponse "Team or user not found"
// @Failure 409 {object} responses.ErrorResponse "Already a member or already invited"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/invitations [post]
func (tc *TeamController) SendInvitation(c *gin.Context) {
	inviterID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	var req SendInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}
	invitation, err := tc.service.SendInvitation(c.Request.Context(), teamID, req.UserID, inviterID, req.Message)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Invitation sent successfully", invitation)
}

// GetTeamInvitations godoc
// @Summary List a team's pending invitations
// @Tags Team Invitations
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]InvitationEntry}
// @Failure 403 {object} responses.ErrorResponse "Not a team manager"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/invitations [get]
func (tc *TeamController) GetTeamInvitations(c *gin.Context) {
	actorID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	page := common.ParsePage(c)
	invitations, total, err := tc.service.ListTeamInvitations(c.Request.Context(), teamID, actorID, page)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Invitations retrieved successfully", invitations, total, page.Page, page.Limit)
}

// GetMyInvitations godoc
// @Summary List invitations addressed to the current user
// @Tags Team Invitations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]InvitationEntry}
// @Security ApiKeyAuth
// @Router /users/me/invitations [get]
func (tc *TeamController) GetMyInvitations(c *gin.Context) {
	userID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	page := common.ParsePage(c)
	invitations, total, err := tc.service.ListUserInvitations(c.Request.Context(), userID, page)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Invitations retrieved successfully", invitations, total, page.Page, page.Limit)
}

// AcceptInvitation godoc
// @Summary Accept an invitation to a team
// @Tags Team Invitations
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 201 {object} responses.SuccessResponse{data=TeamMembership}
// @Failure 404 {object} responses.ErrorResponse "No pending invitation"
// @Failure 409 {object} responses.ErrorResponse "Already a member"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/invitations/accept [post]
func (tc *TeamController) AcceptInvitation(c *gin.Context) {
	userID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	member, err := tc.service.AcceptInvitation(c.Request.Context(), teamID, userID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Invitation accepted", member)
}

// RejectInvitation godoc
// @Summary Reject an invitation to a team
// @Tags Team Invitations
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse "No pending invitation"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/invitations/reject [post]
func (tc *TeamController) RejectInvitation(c *gin.Context) {
	userID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	if err := tc.service.RejectInvitation(c.Request.Context(), teamID, userID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Invitation rejected", nil)
}

// CancelInvitation godoc
// @Summary Cancel an invitation you sent
// @Tags Team Invitations
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param user_id path string true "Invitee"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse "No pending invitation from the caller"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/invitations/{user_id} [delete]
func (tc *TeamController) CancelInvitation(c *gin.Context) {
	inviterID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	if err := tc.service.CancelInvitation(c.Request.Context(), teamID, c.Param("user_id"), inviterID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Invitation cancelled", nil)
}
