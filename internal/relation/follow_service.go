package relation

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/internal/metrics"
	"github.com/DhavalSuthar-24/squadup/internal/user"
)

// FollowService maintains the follow graph.
type FollowService struct {
	repo   FollowRepository
	users  user.UserRepository
	logger logrus.FieldLogger
}

func NewFollowService(repo FollowRepository, users user.UserRepository, logger logrus.FieldLogger) *FollowService {
	return &FollowService{repo: repo, users: users, logger: logger}
}

// Follow adds the edge followerID -> followedID.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID string) error {
	return metrics.Observe("follow", s.follow(ctx, followerID, followedID))
}

func (s *FollowService) follow(ctx context.Context, followerID, followedID string) error {
	if followerID == followedID {
		return common.InvalidOperation("users cannot follow themselves")
	}
	for _, id := range []string{followerID, followedID} {
		exists, err := s.users.Exists(ctx, id)
		if err != nil {
			return common.StorageError(err)
		}
		if !exists {
			return common.NotFound("user %s not found", id)
		}
	}

	following, err := s.repo.IsFollowing(ctx, followerID, followedID)
	if err != nil {
		return common.StorageError(err)
	}
	if following {
		return common.Conflict("already following user %s", followedID)
	}

	follow := &Follow{FollowerID: followerID, FollowedID: followedID, CreatedAt: time.Now().UTC()}
	if err := s.repo.CreateFollow(ctx, follow); err != nil {
		return common.TranslateWriteError(err, "already following user "+followedID)
	}
	s.logger.WithFields(logrus.Fields{"follower_id": followerID, "followed_id": followedID}).Debug("follow created")
	return nil
}

// Unfollow removes the edge; a missing edge is NotFound.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID string) error {
	return metrics.Observe("unfollow", s.unfollow(ctx, followerID, followedID))
}

func (s *FollowService) unfollow(ctx context.Context, followerID, followedID string) error {
	deleted, err := s.repo.DeleteFollow(ctx, followerID, followedID)
	if err != nil {
		return common.StorageError(err)
	}
	if !deleted {
		return common.NotFound("not following user %s", followedID)
	}
	return nil
}

func (s *FollowService) ListFollowers(ctx context.Context, userID string, page common.Page) ([]FollowEntry, int64, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, 0, err
	}
	entries, total, err := s.repo.ListFollowers(ctx, userID, page)
	return entries, total, common.StorageError(err)
}

func (s *FollowService) ListFollowing(ctx context.Context, userID string, page common.Page) ([]FollowEntry, int64, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, 0, err
	}
	entries, total, err := s.repo.ListFollowing(ctx, userID, page)
	return entries, total, common.StorageError(err)
}

func (s *FollowService) Counts(ctx context.Context, userID string) (FollowCounts, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return FollowCounts{}, err
	}
	counts, err := s.repo.CountFollows(ctx, userID)
	return counts, common.StorageError(err)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	ok, err := s.repo.IsFollowing(ctx, followerID, followedID)
	return ok, common.StorageError(err)
}

func (s *FollowService) requireUser(ctx context.Context, userID string) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return common.StorageError(err)
	}
	if !exists {
		return common.NotFound("user %s not found", userID)
	}
	return nil
}
