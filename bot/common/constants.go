package common

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorWarning = 0xFEE75C // Yellow
	ColorInfo    = 0x3498DB // Blue
	ColorGold    = 0xF1C40F
)

// Currency is the name of the bot's money
const Currency = "ecoin"

// UI constants
const (
	MaxButtonsPerRow    = 5
	MaxAutocomplete     = 25
	MaxEmbedFieldLength = 1024
)
