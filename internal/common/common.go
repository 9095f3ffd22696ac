package common

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

const (
	// Context keys
	ContextUserIDKey    = "userID"    // Key to store the authenticated user ID in context
	ContextRequestIDKey = "requestID" // Key to store the request ID in context

	DefaultPageSize = 10
	MaxPageSize     = 100

	// Bounds for team and tournament names, counted in runes after trimming.
	MinNameLength = 3
	MaxNameLength = 100
)

// GetUserIDFromContext retrieves the authenticated user's ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userIDInterface, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	userID, ok := userIDInterface.(string)
	if !ok || userID == "" {
		return "", errors.New("user ID in context is not a non-empty string")
	}
	return userID, nil
}

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePage reads ?page= and ?limit= with the usual clamping.
func ParsePage(c *gin.Context) Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	return NewPage(page, limit)
}

func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Page{Page: page, Limit: limit}
}

// ParseUintParam parses a numeric path parameter such as :team_id.
func ParseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

// NormalizeName trims a team or tournament name and checks its length.
// Binding validates the raw input, so padding must not carry a name past it.
func NormalizeName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < MinNameLength || n > MaxNameLength {
		return "", InvalidOperation("%s name must be %d to %d characters", kind, MinNameLength, MaxNameLength)
	}
	return name, nil
}
