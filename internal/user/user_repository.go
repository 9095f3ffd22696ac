package user

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DhavalSuthar-24/squadup/internal/common"
)

// Tables holding rows keyed by a user id, with the columns that may hold
// it. Deleting a user clears them in the same transaction.
var cascadeDeletes = []struct {
	table   string
	columns []string
}{
	{"follows", []string{"follower_id", "followed_id"}},
	{"team_invitations", []string{"invited_id", "inviter_id"}},
	{"team_memberships", []string{"user_id"}},
	{"tournament_memberships", []string{"user_id"}},
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetProfile(ctx context.Context, id string) (*Profile, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListUsers(ctx context.Context, search string, page common.Page) ([]Profile, int64, error)
	GetSummaries(ctx context.Context, ids []string) (map[string]Summary, error)

	// Provisioning, driven by the identity webhook.
	UpsertUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id string) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("LOWER(username) = ?", strings.ToLower(username)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// profileQuery selects users with follower/following counts computed from the
// follows table.
func (r *userRepository) profileQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&User{}).Select(
		"users.*, " +
			"(SELECT COUNT(*) FROM follows f WHERE f.followed_id = users.id) AS follower_count, " +
			"(SELECT COUNT(*) FROM follows f WHERE f.follower_id = users.id) AS following_count")
}

func (r *userRepository) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var profiles []Profile
	if err := r.profileQuery(ctx).Where("users.id = ?", id).Limit(1).Scan(&profiles).Error; err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

func (r *userRepository) ListUsers(ctx context.Context, search string, page common.Page) ([]Profile, int64, error) {
	var total int64
	filter := func(q *gorm.DB) *gorm.DB {
		if search == "" {
			return q
		}
		like := "%" + strings.ToLower(search) + "%"
		return q.Where("LOWER(users.username) LIKE ? OR LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ?", like, like, like)
	}

	if err := filter(r.db.WithContext(ctx).Model(&User{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	profiles := []Profile{}
	err := filter(r.profileQuery(ctx)).
		Order("users.username ASC").
		Offset(page.Offset()).Limit(page.Limit).
		Scan(&profiles).Error
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *userRepository) GetSummaries(ctx context.Context, ids []string) (map[string]Summary, error) {
	out := make(map[string]Summary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []Summary
	err := r.db.WithContext(ctx).Model(&User{}).
		Select("id, username, first_name, last_name, image_url").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, s := range rows {
		out[s.ID] = s
	}
	return out, nil
}

func (r *userRepository) UpsertUser(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "email", "first_name", "last_name", "image_url", "metadata", "updated_at"}),
	}).Create(u).Error
}

// DeleteUser removes the user and every edge pointing at it. It reports
// whether a user row was deleted.
func (r *userRepository) DeleteUser(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range cascadeDeletes {
			conds := make([]string, len(c.columns))
			args := make([]interface{}, len(c.columns))
			for i, col := range c.columns {
				conds[i] = col + " = ?"
				args[i] = id
			}
			if err := tx.Exec("DELETE FROM "+c.table+" WHERE "+strings.Join(conds, " OR "), args...).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&User{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}
