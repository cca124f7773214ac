package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	ID                 uuid.UUID                      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username           string                         `json:"username" gorm:"uniqueIndex;not null"`
	Email              string                         `json:"email" gorm:"uniqueIndex;not null"`
	FullName           string                         `json:"fullName" gorm:"not null;index"`
	PasswordHash       string                         `json:"-" gorm:"not null"`
	AvatarURL          string                         `json:"avatar" gorm:"not null"`
	AvatarPublicID     string                         `json:"-"`
	CoverImageURL      string                         `json:"coverImage"`
	CoverImagePublicID string                         `json:"-"`
	RefreshToken       *string                        `json:"-"`
	WatchHistory       datatypes.JSONSlice[uuid.UUID] `json:"watchHistory"`
	CreatedAt          time.Time                      `json:"createdAt"`
	UpdatedAt          time.Time                      `json:"updatedAt"`
}

// NormalizeUsername lowercases and trims a username the way it is stored.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeEmail lowercases and trims an email the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasRefreshToken reports whether a refresh token is currently stored.
func (u *User) HasRefreshToken() bool {
	return u.RefreshToken != nil && *u.RefreshToken != ""
}

// Sanitized returns a copy of the user with credential material removed.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	c.RefreshToken = nil
	if u.WatchHistory != nil {
		c.WatchHistory = append(datatypes.JSONSlice[uuid.UUID]{}, u.WatchHistory...)
	}
	return &c
}

// Subscription is an existence-only edge: Subscriber follows Channel.
type Subscription struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SubscriberID uuid.UUID `json:"subscriber" gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_channel;index"`
	ChannelID    uuid.UUID `json:"channel" gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_channel;index"`
	CreatedAt    time.Time `json:"createdAt"`
}
