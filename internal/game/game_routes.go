package game

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func RegisterGameRoutes(router *gin.RouterGroup, repo GameRepository, authRequired gin.HandlerFunc, logger logrus.FieldLogger) {
	gameController := NewGameController(repo, logger)

	games := router.Group("/games")
	{
		games.GET("", gameController.GetAllGames)
		games.GET("/:game_id", gameController.GetGameByID)
		games.POST("", authRequired, gameController.CreateGame)
	}
}
