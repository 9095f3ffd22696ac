package webhook

import "github.com/gin-gonic/gin"

// RegisterWebhookRoutes mounts the provider callbacks. They authenticate by
// signature, not bearer token.
func RegisterWebhookRoutes(router *gin.RouterGroup, controller *WebhookController) {
	hooks := router.Group("/webhooks")
	{
		hooks.POST("/identity", controller.HandleIdentityEvent)
	}
}
