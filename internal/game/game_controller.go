package game

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/pkg/responses"
	"github.com/DhavalSuthar-24/squadup/pkg/validator"
)

// GameController handles API requests related to the game catalogue.
type GameController struct {
	repo   GameRepository
	logger logrus.FieldLogger
}

func NewGameController(repo GameRepository, logger logrus.FieldLogger) *GameController {
	return &GameController{repo: repo, logger: logger}
}

type CreateGameRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	ImageURL    string `json:"image_url" binding:"omitempty,url,max=2048"`
}

// CreateGame godoc
// @Summary Create a game
// @Tags Games
// @Accept json
// @Produce json
// @Param game body CreateGameRequest true "Game creation request"
// @Success 201 {object} responses.SuccessResponse{data=Game}
// @Failure 400 {object} responses.ErrorResponse "Validation error"
// @Failure 409 {object} responses.ErrorResponse "Game with this name already exists"
// @Security ApiKeyAuth
// @Router /games [post]
func (gc *GameController) CreateGame(c *gin.Context) {
	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	ctx := c.Request.Context()
	existing, err := gc.repo.FindGameByName(ctx, req.Name)
	if err != nil {
		responses.SendAppError(c, common.StorageError(err))
		return
	}
	if existing != nil {
		responses.SendAppError(c, common.Conflict("game %q already exists", req.Name))
		return
	}

	game := Game{Name: req.Name, Description: req.Description, ImageURL: req.ImageURL}
	if err := gc.repo.CreateGame(ctx, &game); err != nil {
		responses.SendAppError(c, common.TranslateWriteError(err, "game "+req.Name+" already exists"))
		return
	}
	gc.logger.WithField("game_id", game.ID).Info("game created")
	responses.SendSuccess(c, http.StatusCreated, "Game created successfully", game)
}

// GetAllGames godoc
// @Summary List games
// @Tags Games
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Search term for name or description"
// @Success 200 {object} responses.PaginatedResponse{data=[]Game}
// @Router /games [get]
func (gc *GameController) GetAllGames(c *gin.Context) {
	page := common.ParsePage(c)
	games, total, err := gc.repo.GetAllGames(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		responses.SendAppError(c, common.StorageError(err))
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Games retrieved successfully", games, total, page.Page, page.Limit)
}

// GetGameByID godoc
// @Summary Get a game
// @Tags Games
// @Produce json
// @Param game_id path int true "Game ID"
// @Success 200 {object} responses.SuccessResponse{data=Game}
// @Failure 404 {object} responses.ErrorResponse
// @Router /games/{game_id} [get]
func (gc *GameController) GetGameByID(c *gin.Context) {
	id, err := common.ParseUintParam(c, "game_id")
	if err != nil {
		responses.BadRequest(c, "Invalid game ID")
		return
	}
	game, err := gc.repo.GetGameByID(c.Request.Context(), id)
	if err != nil {
		responses.SendAppError(c, common.StorageError(err))
		return
	}
	if game == nil {
		responses.NotFound(c, "Game")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Game retrieved successfully", game)
}
