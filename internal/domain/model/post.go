package model

import (
	"time"
)

// PostImage is one stored image of a post. Position preserves upload order.
type PostImage struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Position int    `json:"-"`
}

// Post references exactly one owning user; the reference is set at creation
// and immutable thereafter.
type Post struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user"`
	Location    string      `json:"location"`
	SubLocation string      `json:"subLocation"`
	Description string      `json:"description"`
	LocationURL string      `json:"locationUrl,omitempty"`
	Date        time.Time   `json:"date"`
	Images      []PostImage `json:"images"` // 1..3, enforced at creation
	CreatedAt   time.Time   `json:"createdAt"`
}
