package team

import (
	"github.com/gin-gonic/gin"
)

// TeamRoutes sets up all team, membership and invitation routes
func TeamRoutes(router *gin.RouterGroup, service *TeamService, authRequired gin.HandlerFunc) {
	teamController := NewTeamController(service)

	// Public team routes
	router.GET("/teams", teamController.GetAllTeams)
	router.GET("/teams/:team_id", teamController.GetTeamByID)
	router.GET("/teams/:team_id/members", teamController.GetTeamMembers)
	router.GET("/users/:user_id/teams", teamController.GetUserTeams)

	// Authorization beyond authentication is decided by TeamService
	authRoutes := router.Group("/")
	authRoutes.Use(authRequired)
	{
		authRoutes.POST("/teams", teamController.CreateTeam)
		authRoutes.PUT("/teams/:team_id", teamController.UpdateTeam)
		authRoutes.DELETE("/teams/:team_id", teamController.DeleteTeam)

		// Membership
		authRoutes.POST("/teams/:team_id/join", teamController.JoinTeam)
		authRoutes.POST("/teams/:team_id/leave", teamController.LeaveTeam)
		authRoutes.DELETE("/teams/:team_id/members/:user_id", teamController.RemoveTeamMember)
		authRoutes.PUT("/teams/:team_id/members/:user_id/role", teamController.UpdateTeamMemberRole)

		// Invitations
		authRoutes.POST("/teams/:team_id/invitations", teamController.SendInvitation)
		authRoutes.GET("/teams/:team_id/invitations", teamController.GetTeamInvitations)
		authRoutes.DELETE("/teams/:team_id/invitations/:user_id", teamController.CancelInvitation)
		authRoutes.POST("/teams/:team_id/invitations/accept", teamController.AcceptInvitation)
		authRoutes.POST("/teams/:team_id/invitations/reject", teamController.RejectInvitation)
		authRoutes.GET("/users/me/invitations", teamController.GetMyInvitations)
	}
}
