package embeds

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"elaina/models"

	"github.com/bwmarrin/discordgo"
)

const blankAuthor = "Empty Embed"

// Placeholders are the values substituted into stored embeds and greetings
type Placeholders struct {
	User              string
	UserTag           string
	UserAvatar        string
	ServerName        string
	ServerMemberCount int
	ServerAvatar      string
}

// PlaceholderKeys documents every placeholder, in display order
var PlaceholderKeys = []struct {
	Key         string
	Description string
}{
	{"{user}", "Mentions the member"},
	{"{user_tag}", "The member's display name"},
	{"{user_avatar}", "The member's avatar"},
	{"{server_name}", "The server's name"},
	{"{server_membercount}", "The server's member count"},
	{"{server_avatar}", "The server's icon"},
}

// NewPlaceholders builds the values for member in guild. Either may be nil.
func NewPlaceholders(member *discordgo.Member, guild *discordgo.Guild) *Placeholders {
	p := &Placeholders{}
	if member != nil && member.User != nil {
		p.User = member.User.Mention()
		p.UserTag = member.User.Username
		if member.Nick != "" {
			p.UserTag = member.Nick
		} else if member.User.GlobalName != "" {
			p.UserTag = member.User.GlobalName
		}
		p.UserAvatar = member.AvatarURL("")
	}
	if guild != nil {
		p.ServerName = guild.Name
		p.ServerMemberCount = guild.MemberCount
		if guild.Icon != "" {
			p.ServerAvatar = guild.IconURL("")
		}
	}
	return p
}

// Replace substitutes every placeholder in text
func (p *Placeholders) Replace(text string) string {
	if p == nil || text == "" {
		return text
	}
	return strings.NewReplacer(
		"{user}", p.User,
		"{user_tag}", p.UserTag,
		"{user_avatar}", p.UserAvatar,
		"{server_name}", p.ServerName,
		"{server_membercount}", strconv.Itoa(p.ServerMemberCount),
		"{server_avatar}", p.ServerAvatar,
	).Replace(text)
}

// URL substitutes placeholders in url and keeps it only if it is an http(s) link
func (p *Placeholders) URL(url string) string {
	if url == "" {
		return ""
	}
	url = strings.TrimSpace(p.Replace(url))
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return ""
}

// Render turns a stored embed into a message embed, substituting placeholders.
// A blank embed renders as a hint on how to edit it.
func Render(e *models.StoredEmbed, p *Placeholders, now time.Time) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       p.Replace(e.Title),
		Description: p.Replace(e.Description),
	}

	if e.IsBlank() {
		out.Author = &discordgo.MessageEmbedAuthor{Name: blankAuthor}
		out.Description = fmt.Sprintf("Embed %s is empty. Use the buttons below to edit it!", e.Name)
		return out
	}

	if e.AuthorName != "" {
		out.Author = &discordgo.MessageEmbedAuthor{
			Name:    p.Replace(e.AuthorName),
			IconURL: p.URL(e.AuthorIconURL),
		}
	}
	if e.Color != nil {
		out.Color = *e.Color
	}
	if e.FooterText != "" {
		out.Footer = &discordgo.MessageEmbedFooter{
			Text:    p.Replace(e.FooterText),
			IconURL: p.URL(e.FooterIconURL),
		}
	}
	if e.FooterTimestamp {
		out.Timestamp = now.Format(time.RFC3339)
	}
	if url := p.URL(e.ThumbnailURL); url != "" {
		out.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: url}
	}
	if url := p.URL(e.ImageURL); url != "" {
		out.Image = &discordgo.MessageEmbedImage{URL: url}
	}
	return out
}

// RenderAll renders every embed with the same placeholders
func RenderAll(stored []*models.StoredEmbed, p *Placeholders, now time.Time) []*discordgo.MessageEmbed {
	out := make([]*discordgo.MessageEmbed, 0, len(stored))
	for _, e := range stored {
		out = append(out, Render(e, p, now))
	}
	return out
}

// ParseHexColor parses "#FF0000" or "ff0000". Empty input clears the color.
func ParseHexColor(input string) (*int, error) {
	input = strings.TrimPrefix(strings.TrimSpace(input), "#")
	if input == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(input, 16, 32)
	if err != nil || v > 0xFFFFFF {
		return nil, fmt.Errorf("invalid hex color %q", input)
	}
	color := int(v)
	return &color, nil
}

// FormatHexColor is the inverse of ParseHexColor
func FormatHexColor(color *int) string {
	if color == nil {
		return ""
	}
	return fmt.Sprintf("#%06X", *color)
}
