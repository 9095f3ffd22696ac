package relation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	mw "github.com/DhavalSuthar-24/squadup/internal/middleware"
	"github.com/DhavalSuthar-24/squadup/pkg/responses"
)

type FollowController struct {
	service *FollowService
}

func NewFollowController(service *FollowService) *FollowController {
	return &FollowController{service: service}
}

// FollowUser godoc
// @Summary Follow a user
// @Tags Follows
// @Produce json
// @Param user_id path string true "User to follow"
// @Success 201 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/{user_id}/follow [post]
func (fc *FollowController) FollowUser(c *gin.Context) {
	followerID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	if err := fc.service.Follow(c.Request.Context(), followerID, c.Param("user_id")); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "User followed successfully", nil)
}

// UnfollowUser godoc
// @Summary Unfollow a user
// @Tags Follows
// @Produce json
// @Param user_id path string true "User to unfollow"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/{user_id}/follow [delete]
func (fc *FollowController) UnfollowUser(c *gin.Context) {
	followerID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	if err := fc.service.Unfollow(c.Request.Context(), followerID, c.Param("user_id")); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "User unfollowed successfully", nil)
}

// GetFollowStatus godoc
// @Summary Whether the caller follows a user
// @Tags Follows
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} responses.SuccessResponse
// @Security ApiKeyAuth
// @Router /users/{user_id}/follow [get]
func (fc *FollowController) GetFollowStatus(c *gin.Context) {
	followerID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	following, err := fc.service.IsFollowing(c.Request.Context(), followerID, c.Param("user_id"))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Follow status retrieved successfully", gin.H{"following": following})
}

// GetFollowers godoc
// @Summary List followers of a user
// @Description Newest follower first.
// @Tags Follows
// @Produce json
// @Param user_id path string true "User ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]FollowEntry}
// @Failure 404 {object} responses.ErrorResponse
// @Router /users/{user_id}/followers [get]
func (fc *FollowController) GetFollowers(c *gin.Context) {
	page := common.ParsePage(c)
	entries, total, err := fc.service.ListFollowers(c.Request.Context(), c.Param("user_id"), page)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Followers retrieved successfully", entries, total, page.Page, page.Limit)
}

// GetFollowing godoc
// @Summary List users a user follows
// @Tags Follows
// @Produce json
// @Param user_id path string true "User ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]FollowEntry}
// @Failure 404 {object} responses.ErrorResponse
// @Router /users/{user_id}/following [get]
func (fc *FollowController) GetFollowing(c *gin.Context) {
	page := common.ParsePage(c)
	entries, total, err := fc.service.ListFollowing(c.Request.Context(), c.Param("user_id"), page)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Following retrieved successfully", entries, total, page.Page, page.Limit)
}
