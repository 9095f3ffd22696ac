package webhook

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"github.com/DhavalSuthar-24/squadup/internal/user"
)

const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Event is the envelope every identity webhook delivers.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// UserData is the user object carried by user.created and user.updated.
type UserData struct {
	ID                    string                 `json:"id"`
	Username              *string                `json:"username"`
	FirstName             *string                `json:"first_name"`
	LastName              *string                `json:"last_name"`
	ImageURL              string                 `json:"image_url"`
	EmailAddresses        []EmailAddress         `json:"email_addresses"`
	PrimaryEmailAddressID *string                `json:"primary_email_address_id"`
	PublicMetadata        map[string]interface{} `json:"public_metadata"`
}

// DeletedData is the payload of user.deleted.
type DeletedData struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// PrimaryEmail returns the address marked primary, falling back to the first
// one listed.
func (d UserData) PrimaryEmail() string {
	if d.PrimaryEmailAddressID != nil {
		for _, e := range d.EmailAddresses {
			if e.ID == *d.PrimaryEmailAddressID {
				return e.EmailAddress
			}
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

// ToUser maps the payload onto the local user row. Accounts without a
// username are stored under their id.
func (d UserData) ToUser() *user.User {
	u := &user.User{
		ID:        d.ID,
		Username:  d.ID,
		Email:     strings.ToLower(d.PrimaryEmail()),
		FirstName: deref(d.FirstName),
		LastName:  deref(d.LastName),
		ImageURL:  d.ImageURL,
	}
	if name := strings.TrimSpace(deref(d.Username)); name != "" {
		u.Username = name
	}
	if len(d.PublicMetadata) > 0 {
		u.Metadata = datatypes.JSONMap(d.PublicMetadata)
	}
	return u
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
