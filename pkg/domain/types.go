package domain

import "time"

// ContentType tags a saved item. The tag is optional; the filter engine
// also classifies by link substrings, so untagged items still land in a
// category.
type ContentType string

const (
	TypeYouTube ContentType = "youtube"
	TypeTwitter ContentType = "twitter"
	TypeURL     ContentType = "url"
	// TypeLink is a legacy alias for TypeURL still present in stored data.
	TypeLink ContentType = "link"
)

// FilterCategory selects a slice of the collection in list/search calls.
type FilterCategory string

const (
	FilterAll     FilterCategory = "all"
	FilterYouTube FilterCategory = "youtube"
	FilterTwitter FilterCategory = "twitter"
	FilterURL     FilterCategory = "url"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Owner is the minimal user projection attached to listed content.
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Content struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"-"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Link        string      `json:"link"`
	Type        ContentType `json:"type,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	User        *Owner      `json:"user,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// ShareLink publishes a user's collection under an unguessable hash.
// A user holds at most one link at a time.
type ShareLink struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContentCounts reports per-category totals over the full collection.
// Categories overlap (an item can match several heuristics), so the three
// category counts need not sum to All.
type ContentCounts struct {
	All     int `json:"all"`
	YouTube int `json:"youtube"`
	Twitter int `json:"twitter"`
	URL     int `json:"url"`
}
