package user

import (
	"time"

	"gorm.io/datatypes"
)

// User mirrors an identity-provider account. Rows are written only by the
// identity webhook.
type User struct {
	ID        string            `gorm:"primaryKey;size:191" json:"id"`
	Username  string            `gorm:"uniqueIndex;not null;size:100" json:"username"`
	Email     string            `gorm:"uniqueIndex;not null;size:320" json:"email"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	ImageURL  string            `json:"image_url"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Profile is a user with derived follow counts.
type Profile struct {
	User
	FollowerCount  int64 `json:"follower_count"`
	FollowingCount int64 `json:"following_count"`
}

// Summary is the compact user shape embedded in membership listings.
type Summary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}
