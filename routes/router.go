package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/squadup/config"
	"github.com/DhavalSuthar-24/squadup/internal/game"
	mw "github.com/DhavalSuthar-24/squadup/internal/middleware"
	"github.com/DhavalSuthar-24/squadup/internal/relation"
	"github.com/DhavalSuthar-24/squadup/internal/team"
	"github.com/DhavalSuthar-24/squadup/internal/tournament"
	"github.com/DhavalSuthar-24/squadup/internal/user"
	"github.com/DhavalSuthar-24/squadup/internal/webhook"
)

// SetupRoutes wires every service onto a fresh engine.
func SetupRoutes(cfg *config.Config, db *gorm.DB, logger *logrus.Logger) (*gin.Engine, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", mw.RequestIDHeader},
		ExposeHeaders:    []string{mw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Repositories and services
	userRepo := user.NewUserRepository(db)
	teamService := team.NewTeamService(team.NewTeamRepository(db), logger)
	tournamentService := tournament.NewTournamentService(tournament.NewTournamentRepository(db), logger)
	followService := relation.NewFollowService(relation.NewFollowRepository(db), userRepo, logger)

	webhookController, err := webhook.NewWebhookController(cfg.Webhook.SigningSecret, userRepo, logger)
	if err != nil {
		return nil, err
	}

	authRequired := mw.AuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.Issuer, db)

	// API routes
	api := r.Group("/api")
	user.RegisterUserRoutes(api, userRepo, authRequired, logger)
	relation.RegisterFollowRoutes(api, followService, authRequired)
	game.RegisterGameRoutes(api, game.NewGameRepository(db), authRequired, logger)
	team.TeamRoutes(api, teamService, authRequired)
	tournament.RegisterTournamentRoutes(api, tournamentService, teamService, authRequired)
	webhook.RegisterWebhookRoutes(api, webhookController)

	return r, nil
}
