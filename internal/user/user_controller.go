package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	mw "github.com/DhavalSuthar-24/squadup/internal/middleware"
	"github.com/DhavalSuthar-24/squadup/pkg/responses"
)

// UserController serves read projections over users.
type UserController struct {
	repo   UserRepository
	logger logrus.FieldLogger
}

func NewUserController(repo UserRepository, logger logrus.FieldLogger) *UserController {
	return &UserController{repo: repo, logger: logger}
}

// GetUsers godoc
// @Summary List users
// @Description Lists users ordered by username, optionally filtered by a case-insensitive substring of username or name.
// @Tags Users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Substring of username, first or last name"
// @Success 200 {object} responses.PaginatedResponse{data=[]Profile}
// @Failure 500 {object} responses.ErrorResponse
// @Router /users [get]
func (uc *UserController) GetUsers(c *gin.Context) {
	page := common.ParsePage(c)
	users, total, err := uc.repo.ListUsers(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		responses.SendAppError(c, common.StorageError(err))
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Users retrieved successfully", users, total, page.Page, page.Limit)
}

// GetUserByID godoc
// @Summary Get a user
// @Tags Users
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} responses.SuccessResponse{data=Profile}
// @Failure 404 {object} responses.ErrorResponse
// @Router /users/{user_id} [get]
func (uc *UserController) GetUserByID(c *gin.Context) {
	uc.sendProfile(c, c.Param("user_id"))
}

// GetUserByUsername godoc
// @Summary Get a user by username
// @Tags Users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} responses.SuccessResponse{data=Profile}
// @Failure 404 {object} responses.ErrorResponse
// @Router /users/by-username/{username} [get]
func (uc *UserController) GetUserByUsername(c *gin.Context) {
	u, err := uc.repo.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		responses.SendAppError(c, common.StorageError(err))
		return
	}
	if u == nil {
		responses.NotFound(c, "User")
		return
	}
	uc.sendProfile(c, u.ID)
}

// GetMe godoc
// @Summary Get the authenticated user
// @Tags Users
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=Profile}
// @Failure 401 {object} responses.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/me [get]
func (uc *UserController) GetMe(c *gin.Context) {
	userID, ok := mw.CurrentUserID(c)
	if !ok {
		return
	}
	uc.sendProfile(c, userID)
}

func (uc *UserController) sendProfile(c *gin.Context, id string) {
	profile, err := uc.repo.GetProfile(c.Request.Context(), id)
	if err != nil {
		responses.SendAppError(c, common.StorageError(err))
		return
	}
	if profile == nil {
		responses.NotFound(c, "User")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "User retrieved successfully", profile)
}
