package main

import (
	"github.com/sirupsen/logrus"

	"github.com/DhavalSuthar-24/squadup/config"
	_ "github.com/DhavalSuthar-24/squadup/docs"
	"github.com/DhavalSuthar-24/squadup/internal/game"
	"github.com/DhavalSuthar-24/squadup/internal/relation"
	"github.com/DhavalSuthar-24/squadup/internal/team"
	"github.com/DhavalSuthar-24/squadup/internal/tournament"
	"github.com/DhavalSuthar-24/squadup/internal/user"
	"github.com/DhavalSuthar-24/squadup/routes"
)

// @title SquadUp REST API
// @version 1.0
// @description Teams, tournaments and the social graph around them.
// @host localhost:8088
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()
	log := logrus.StandardLogger()

	err := config.DB.AutoMigrate(
		&user.User{}, &relation.Follow{}, &game.Game{},
		&team.Team{}, &team.TeamMembership{}, &team.TeamInvitation{},
		&tournament.Tournament{}, &tournament.TournamentMembership{}, &tournament.TeamRegistration{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Info("AutoMigrate successful")

	r, err := routes.SetupRoutes(cfg, config.DB, log)
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	log.WithFields(logrus.Fields{"port": cfg.App.Port, "env": cfg.App.Env}).Info("starting server")
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
