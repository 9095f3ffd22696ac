package rmiddleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/pkg/responses"
)

// ContextRoleKey holds the caller's role on the guarded resource.
const ContextRoleKey = "resourceRole"

// RoleLookup returns userID's role on the resource identified by resourceID.
// A NotFound error means the user holds no role there.
type RoleLookup func(ctx context.Context, resourceID uint, userID string) (common.Role, error)

// RequireRole lets a request through only when the authenticated user holds at
// least min on the resource named by the path parameter param. It must run
// after the authentication middleware.
func RequireRole(lookup RoleLookup, param string, min common.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := common.GetUserIDFromContext(c)
		if err != nil {
			responses.SendError(c, http.StatusUnauthorized, "Unauthorized: "+err.Error())
			return
		}

		resourceID, err := common.ParseUintParam(c, param)
		if err != nil {
			responses.BadRequest(c, "Invalid "+param)
			return
		}

		role, err := lookup(c.Request.Context(), resourceID, userID)
		if err != nil {
			if common.IsKind(err, common.KindNotFound) {
				responses.Forbidden(c, "You don't have permission to access this resource")
				return
			}
			responses.SendAppError(c, err)
			return
		}

		if !role.AtLeast(min) {
			responses.Forbidden(c, "Requires the "+min.String()+" role")
			return
		}

		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// ManagerMiddleware is a convenience for "manager or owner".
func ManagerMiddleware(lookup RoleLookup, param string) gin.HandlerFunc {
	return RequireRole(lookup, param, common.RoleManager)
}

// OwnerMiddleware is a convenience for owner-only routes.
func OwnerMiddleware(lookup RoleLookup, param string) gin.HandlerFunc {
	return RequireRole(lookup, param, common.RoleOwner)
}
