// internal/relation/follow_model.go
package relation

import (
	"time"

	"github.com/DhavalSuthar-24/squadup/internal/user"
)

// Follow is a directed edge: FollowerID follows FollowedID.
type Follow struct {
	FollowerID string    `json:"follower_id" gorm:"primaryKey;size:191"`
	FollowedID string    `json:"followed_id" gorm:"primaryKey;size:191;index"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Follow) TableName() string { return "follows" }

// FollowCounts are derived on read, never stored.
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// FollowEntry is one row of a followers/following listing.
type FollowEntry struct {
	user.Summary
	FollowedAt time.Time `json:"followed_at"`
}
