package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/pkg/responses"
	"github.com/DhavalSuthar-24/squadup/pkg/token"
)

// AuthMiddleware accepts "Authorization: Bearer <jwt>" tokens issued by the
// identity provider and requires the subject to exist locally.
func AuthMiddleware(jwtSecret, issuer string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			responses.Unauthorized(c, "Authorization header is required")
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			responses.Unauthorized(c, "Invalid Authorization header format. Expected: Bearer <token>")
			return
		}

		claims, err := token.ValidateJWT(bearerToken[1], jwtSecret, issuer)
		if err != nil {
			responses.Unauthorized(c, "Invalid or expired token: "+err.Error())
			return
		}

		var count int64
		if err := db.WithContext(c.Request.Context()).Table("users").Where("id = ?", claims.UserID()).Count(&count).Error; err != nil {
			logrus.WithError(err).Error("auth: user lookup failed")
			responses.InternalServerError(c, "")
			return
		}
		if count == 0 {
			// The webhook may not have delivered user.created yet.
			responses.Unauthorized(c, "User not found")
			return
		}

		c.Set(common.ContextUserIDKey, claims.UserID())
		c.Next()
	}
}

// CurrentUserID is a convenience for handlers behind AuthMiddleware. It
// writes a 401 and returns false when no user is present.
func CurrentUserID(c *gin.Context) (string, bool) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return "", false
	}
	return userID, true
}
