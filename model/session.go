package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Session is the dashboard's server-side replacement for the browser's
// localStorage token and user entries.
type Session struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SealedToken string         `json:"-" gorm:"type:text;not null"`
	User        datatypes.JSON `json:"user" gorm:"column:cached_user"`
	ExpiresAt   time.Time      `json:"expires_at" gorm:"not null;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// CachedUser decodes the cached profile. A session without a cached profile yields nil.
func (s *Session) CachedUser() (*User, error) {
	if len(s.User) == 0 || string(s.User) == "null" {
		return nil, nil
	}

	var u User
	if err := json.Unmarshal(s.User, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// EncodeUser serializes a profile for the session's user column.
func EncodeUser(u *User) (datatypes.JSON, error) {
	if u == nil {
		return nil, nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
