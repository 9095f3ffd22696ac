package relation

import (
	"github.com/gin-gonic/gin"
)

func RegisterFollowRoutes(router *gin.RouterGroup, service *FollowService, authRequired gin.HandlerFunc) {
	followController := NewFollowController(service)

	router.GET("/users/:user_id/followers", followController.GetFollowers)
	router.GET("/users/:user_id/following", followController.GetFollowing)

	follow := router.Group("/users/:user_id/follow", authRequired)
	{
		follow.GET("", followController.GetFollowStatus)
		follow.POST("", followController.FollowUser)
		follow.DELETE("", followController.UnfollowUser)
	}
}
