package user

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RegisterUserRoutes mounts the user read endpoints. authRequired guards /users/me.
func RegisterUserRoutes(router *gin.RouterGroup, repo UserRepository, authRequired gin.HandlerFunc, logger logrus.FieldLogger) {
	userController := NewUserController(repo, logger)

	router.GET("/users", userController.GetUsers)
	router.GET("/users/me", authRequired, userController.GetMe)
	router.GET("/users/by-username/:username", userController.GetUserByUsername)
	router.GET("/users/:user_id", userController.GetUserByID)
}
