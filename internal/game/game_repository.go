package game

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/squadup/internal/common"
)

type GameRepository interface {
	CreateGame(ctx context.Context, game *Game) error
	GetGameByID(ctx context.Context, id uint) (*Game, error)
	FindGameByName(ctx context.Context, name string) (*Game, error)
	GetAllGames(ctx context.Context, search string, page common.Page) ([]Game, int64, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type gameRepository struct {
	db *gorm.DB
}

// NewGameRepository creates a new instance of GameRepository.
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) CreateGame(ctx context.Context, game *Game) error {
	return r.db.WithContext(ctx).Create(game).Error
}

func (r *gameRepository) GetGameByID(ctx context.Context, id uint) (*Game, error) {
	var game Game
	if err := r.db.WithContext(ctx).First(&game, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) FindGameByName(ctx context.Context, name string) (*Game, error) {
	var game Game
	if err := r.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) GetAllGames(ctx context.Context, search string, page common.Page) ([]Game, int64, error) {
	var total int64
	games := []Game{}

	query := r.db.WithContext(ctx).Model(&Game{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("name ASC").Offset(page.Offset()).Limit(page.Limit).Find(&games).Error; err != nil {
		return nil, 0, err
	}
	return games, total, nil
}

func (r *gameRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Game{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
