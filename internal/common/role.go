package common

import (
	"fmt"
	"strings"
)

// Role is the permission level a user holds within a team or tournament.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleManager     Role = "manager"
	RoleParticipant Role = "participant"
)

// Rank orders roles owner > manager > participant. Unknown roles rank 0.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleManager:
		return 2
	case RoleParticipant:
		return 1
	}
	return 0
}

// AtLeast reports whether r is min or higher.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}

// Outranks reports whether r is strictly above other.
func (r Role) Outranks(other Role) bool {
	return r.Rank() > other.Rank()
}

func (r Role) Valid() bool {
	return r.Rank() > 0
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts the lowercase role names, ignoring surrounding whitespace and case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// RoleOrderSQL sorts rows by role rank, highest first.
const RoleOrderSQL = "CASE role WHEN 'owner' THEN 0 WHEN 'manager' THEN 1 ELSE 2 END"
