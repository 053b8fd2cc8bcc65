package models

// MaxRecentChannels bounds the recently-watched queue.
const MaxRecentChannels = 10

// Preference defaults (aligned with the web client's CONFIG block).
const (
	DefaultThemeColor = "#0057b8"
	DefaultLanguage   = "English"
	DefaultFontSize   = "medium"
)
