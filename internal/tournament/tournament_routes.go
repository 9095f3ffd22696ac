package tournament

import (
	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/squadup/pkg/rmiddleware"
)

func RegisterTournamentRoutes(router *gin.RouterGroup, service *TournamentService, teams TeamRoleLookup, authRequired gin.HandlerFunc) {
	tournamentController := NewTournamentController(service, teams)

	publicTournaments := router.Group("/tournaments")
	{
		publicTournaments.GET("", tournamentController.GetTournaments)
		publicTournaments.GET("/:tournament_id", tournamentController.GetTournamentByID)
		publicTournaments.GET("/:tournament_id/teams", tournamentController.GetRegisteredTeams)
		publicTournaments.GET("/:tournament_id/participants", tournamentController.GetParticipants)
	}

	authenticated := router.Group("/tournaments")
	authenticated.Use(authRequired)
	{
		authenticated.POST("", tournamentController.CreateTournament)
		authenticated.PUT("/:tournament_id",
			rmiddleware.ManagerMiddleware(service.RoleOf, "tournament_id"),
			tournamentController.UpdateTournament)
		authenticated.DELETE("/:tournament_id",
			rmiddleware.OwnerMiddleware(service.RoleOf, "tournament_id"),
			tournamentController.DeleteTournament)

		// Team managers act on their own team's entries
		authenticated.POST("/:tournament_id/teams/:team_id", tournamentController.RegisterTeam)
		authenticated.DELETE("/:tournament_id/teams/:team_id", tournamentController.UnregisterTeam)
		authenticated.POST("/:tournament_id/teams/:team_id/users/:user_id", tournamentController.RegisterUser)
		authenticated.DELETE("/:tournament_id/teams/:team_id/users/:user_id", tournamentController.UnregisterUser)
	}
}
