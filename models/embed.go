package models

import (
	"time"
)

// StoredEmbed is a named embed template saved for a guild
type StoredEmbed struct {
	ID              int64     `db:"id"`
	GuildID         int64     `db:"guild_id"`
	Name            string    `db:"name"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	Color           *int      `db:"color"`
	AuthorName      string    `db:"author_name"`
	AuthorIconURL   string    `db:"author_icon_url"`
	FooterText      string    `db:"footer_text"`
	FooterIconURL   string    `db:"footer_icon_url"`
	FooterTimestamp bool      `db:"footer_timestamp"`
	ThumbnailURL    string    `db:"thumbnail_url"`
	ImageURL        string    `db:"image_url"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// IsBlank reports whether nothing besides the name has been set
func (e *StoredEmbed) IsBlank() bool {
	return e.Title == "" && e.Description == "" && e.Color == nil &&
		e.AuthorName == "" && e.AuthorIconURL == "" &&
		e.FooterText == "" && e.FooterIconURL == "" && !e.FooterTimestamp &&
		e.ThumbnailURL == "" && e.ImageURL == ""
}
