package relation

import (
	"context"

	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/squadup/internal/common"
)

// FollowRepository defines the data operations on the follow graph
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *Follow) error
	DeleteFollow(ctx context.Context, followerID, followedID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followedID string) (bool, error)
	ListFollowers(ctx context.Context, userID string, page common.Page) ([]FollowEntry, int64, error)
	ListFollowing(ctx context.Context, userID string, page common.Page) ([]FollowEntry, int64, error)
	CountFollows(ctx context.Context, userID string) (FollowCounts, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) CreateFollow(ctx context.Context, follow *Follow) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

// DeleteFollow reports whether an edge was removed.
func (r *followRepository) DeleteFollow(ctx context.Context, followerID, followedID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&Follow{})
	return res.RowsAffected > 0, res.Error
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) ListFollowers(ctx context.Context, userID string, page common.Page) ([]FollowEntry, int64, error) {
	return r.list(ctx, "follows.followed_id = ?", "follows.follower_id", userID, page)
}

func (r *followRepository) ListFollowing(ctx context.Context, userID string, page common.Page) ([]FollowEntry, int64, error) {
	return r.list(ctx, "follows.follower_id = ?", "follows.followed_id", userID, page)
}

// list joins the far end of each edge onto users, newest edge first.
func (r *followRepository) list(ctx context.Context, where, joinColumn, userID string, page common.Page) ([]FollowEntry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Follow{}).Where(where, userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	entries := []FollowEntry{}
	err := r.db.WithContext(ctx).Model(&Follow{}).
		Select("users.id, users.username, users.first_name, users.last_name, users.image_url, follows.created_at AS followed_at").
		Joins("JOIN users ON users.id = "+joinColumn).
		Where(where, userID).
		Order("follows.created_at DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Scan(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *followRepository) CountFollows(ctx context.Context, userID string) (FollowCounts, error) {
	var counts FollowCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&Follow{}).Where("followed_id = ?", userID).Count(&counts.Followers).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&Follow{}).Where("follower_id = ?", userID).Count(&counts.Following).Error; err != nil {
		return counts, err
	}
	return counts, nil
}
