package model

import (
	"time"
)

const (
	DefaultBio          = "Hi, I'm excited to share my travel stories."
	DefaultProfileImage = "https://yourteachingmentor.com/wp-content/uploads/2020/12/istockphoto-1223671392-612x612-1.jpg"
)

// User field names follow the reference client's camelCase payloads.
type User struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	HashedPassword   string    `json:"-"` // Not exposed
	SecurityQuestion string    `json:"securityQuestion"`
	SecurityAnswer   string    `json:"-"` // Fallback credential, never serialized
	Bio              string    `json:"bio"`
	ProfileImage     string    `json:"profileImage"`
	IsAdmin          bool      `json:"isAdmin"`
	PostCount        int       `json:"postCount"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
