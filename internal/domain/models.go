package domain

import (
	"time"
)

// Link represents a shortcut and the URL it resolves to
type Link struct {
	ID          int64     `json:"id"`
	Shortcut    string    `json:"shortcut"`
	URL         string    `json:"url"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ClickCount  int64     `json:"click_count"`
}

// DescriptionOrEmpty returns the description, or "" when none was set
func (l *Link) DescriptionOrEmpty() string {
	if l.Description == nil {
		return ""
	}
	return *l.Description
}

// Stats summarizes a set of links
type Stats struct {
	TotalLinks  int   `json:"total_links"`
	TotalClicks int64 `json:"total_clicks"`
	MostClicked *Link `json:"most_clicked,omitempty"`
}

// LinkRequest is the payload for adding or updating a link
type LinkRequest struct {
	Shortcut    string  `json:"shortcut"`
	URL         string  `json:"url"`
	Description *string `json:"description,omitempty"`
}

// LinkResponse is a link together with the address that redirects to it
type LinkResponse struct {
	*Link
	ShortURL string `json:"short_url"`
}

// DeleteRequest is the payload for deleting a link
type DeleteRequest struct {
	Shortcut string `json:"shortcut"`
}

// IndexResponse is the management surface's landing document
type IndexResponse struct {
	Links []*Link `json:"links"`
	Stats Stats   `json:"stats"`
}
