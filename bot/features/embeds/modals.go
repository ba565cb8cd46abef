package embeds

import (
	"strings"

	"elaina/models"

	"github.com/bwmarrin/discordgo"
)

// Embed parts edited through modals
const (
	PartAuthor = "author"
	PartBody   = "body"
	PartFooter = "footer"
	PartImage  = "image"
)

const (
	buttonPrefix = "embed_"
	modalPrefix  = "embedmodal_"

	fieldAuthorName = "author_name"
	fieldAuthorIcon = "author_icon"
	fieldTitle      = "title"
	fieldBody       = "description"
	fieldColor      = "color"
	fieldFooterText = "footer_text"
	fieldFooterIcon = "footer_icon"
	fieldTimestamp  = "timestamp"
	fieldThumbnail  = "thumbnail"
	fieldImage      = "image"
)

var partLabels = []struct {
	part  string
	label string
}{
	{PartAuthor, "Author"},
	{PartBody, "Body (Title, Description,...)"},
	{PartFooter, "Footer"},
	{PartImage, "Image"},
}

// EditorComponents are the buttons under an embed being edited
func EditorComponents(name string) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, len(partLabels))
	for _, p := range partLabels {
		buttons = append(buttons, discordgo.Button{
			Label:    p.label,
			Style:    discordgo.SecondaryButton,
			CustomID: buttonPrefix + p.part + "_" + name,
		})
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

// ParseButtonID splits an editor button custom ID into part and embed name
func ParseButtonID(customID string) (part, name string, ok bool) {
	return splitPartID(customID, buttonPrefix)
}

// ParseModalID splits a modal custom ID into part and embed name
func ParseModalID(customID string) (part, name string, ok bool) {
	return splitPartID(customID, modalPrefix)
}

func splitPartID(customID, prefix string) (string, string, bool) {
	rest, found := strings.CutPrefix(customID, prefix)
	if !found {
		return "", "", false
	}
	part, name, found := strings.Cut(rest, "_")
	if !found || name == "" {
		return "", "", false
	}
	switch part {
	case PartAuthor, PartBody, PartFooter, PartImage:
		return part, name, true
	default:
		return "", "", false
	}
}

func textInput(id, label, placeholder, value string, style discordgo.TextInputStyle, required bool) discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    id,
				Label:       label,
				Style:       style,
				Placeholder: placeholder,
				Value:       value,
				Required:    required,
			},
		},
	}
}

// Modal builds the edit form for one part of e, prefilled with its current values
func Modal(part string, e *models.StoredEmbed) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{CustomID: modalPrefix + part + "_" + e.Name}

	switch part {
	case PartAuthor:
		data.Title = "Edit Author"
		data.Components = []discordgo.MessageComponent{
			textInput(fieldAuthorName, "Author", "Author text", e.AuthorName, discordgo.TextInputShort, true),
			textInput(fieldAuthorIcon, "Author Image", "Image URL or placeholder", e.AuthorIconURL, discordgo.TextInputShort, false),
		}
	case PartBody:
		data.Title = "Edit Body"
		data.Components = []discordgo.MessageComponent{
			textInput(fieldTitle, "Title", "Enter a title", e.Title, discordgo.TextInputShort, false),
			textInput(fieldBody, "Description", "Enter the content", e.Description, discordgo.TextInputParagraph, false),
			textInput(fieldColor, "Hex Color", "e.g. #FF0000", FormatHexColor(e.Color), discordgo.TextInputShort, false),
		}
	case PartFooter:
		timestamp := "No"
		if e.FooterTimestamp {
			timestamp = "Yes"
		}
		data.Title = "Edit Footer"
		data.Components = []discordgo.MessageComponent{
			textInput(fieldFooterText, "Footer Text", "Enter footer text", e.FooterText, discordgo.TextInputShort, false),
			textInput(fieldFooterIcon, "Footer Image", "Image URL or placeholder", e.FooterIconURL, discordgo.TextInputShort, false),
			textInput(fieldTimestamp, "Timestamp (Yes/No)", "Yes shows the time", timestamp, discordgo.TextInputShort, false),
		}
	case PartImage:
		data.Title = "Edit Images"
		data.Components = []discordgo.MessageComponent{
			textInput(fieldThumbnail, "Small Image", "Image URL or placeholder", e.ThumbnailURL, discordgo.TextInputShort, false),
			textInput(fieldImage, "Big Image", "Image URL or placeholder", e.ImageURL, discordgo.TextInputShort, false),
		}
	}
	return data
}

// Apply writes submitted modal values for part onto e.
// An unparseable color leaves the color unset.
func Apply(part string, e *models.StoredEmbed, values map[string]string) {
	v := func(key string) string { return strings.TrimSpace(values[key]) }

	switch part {
	case PartAuthor:
		e.AuthorName = v(fieldAuthorName)
		e.AuthorIconURL = v(fieldAuthorIcon)
	case PartBody:
		e.Title = v(fieldTitle)
		e.Description = v(fieldBody)
		e.Color, _ = ParseHexColor(v(fieldColor))
	case PartFooter:
		e.FooterText = v(fieldFooterText)
		e.FooterIconURL = v(fieldFooterIcon)
		e.FooterTimestamp = strings.EqualFold(v(fieldTimestamp), "yes")
	case PartImage:
		e.ThumbnailURL = v(fieldThumbnail)
		e.ImageURL = v(fieldImage)
	}
}
