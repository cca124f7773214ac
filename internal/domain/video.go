package domain

import (
	"time"

	"github.com/google/uuid"
)

// Video is owned by the video catalogue; this service only reads it.
type Video struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID     uuid.UUID `json:"-" gorm:"type:uuid;index"`
	VideoFile   string    `json:"videoFile" gorm:"not null"`
	Thumbnail   string    `json:"thumbnail" gorm:"not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	Duration    float64   `json:"duration" gorm:"not null"`
	Views       int64     `json:"views" gorm:"not null;default:0"`
	IsPublished bool      `json:"isPublished" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VideoOwner is the reduced user projection attached to watch-history entries.
type VideoOwner struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar"`
}

// WatchedVideo is a watch-history entry with its owner resolved.
type WatchedVideo struct {
	Video
	Owner *VideoOwner `json:"owner"`
}

// ChannelProfile is the public view of a user's channel.
type ChannelProfile struct {
	ID                       uuid.UUID `json:"id"`
	FullName                 string    `json:"fullName"`
	Username                 string    `json:"username"`
	SubscribersCount         int64     `json:"subscribersCount"`
	ChannelSubscribedToCount int64     `json:"channelSubscribedToCount"`
	IsSubscribed             bool      `json:"isSubscribed"`
	Avatar                   string    `json:"avatar"`
	CoverImage               string    `json:"coverImage"`
	Email                    string    `json:"email"`
	CreatedAt                time.Time `json:"createdAt"`
}
