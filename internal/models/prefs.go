package models

// ThemePrefs controls presentation colors and sizing.
type ThemePrefs struct {
	Mode     string `json:"mode"` // "light" or "dark"
	Color    string `json:"color"`
	FontSize string `json:"fontSize"`
}

// AccessibilityPrefs holds accessibility toggles.
type AccessibilityPrefs struct {
	HighContrast bool `json:"highContrast"`
	Subtitles    bool `json:"subtitles"`
}

// NotificationPrefs holds alert toggles.
type NotificationPrefs struct {
	ProgramStart    bool `json:"programStart"`
	FavoriteUpdates bool `json:"favoriteUpdates"`
}

// SavedFilter is a named, persisted filter criteria bundle.
type SavedFilter struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Search   string `json:"search,omitempty"`
	Language string `json:"language,omitempty"`
	Category string `json:"category,omitempty"`
}

// Preferences is the full user-settings object. It is persisted as a single
// JSON blob; on load, persisted top-level keys replace the defaults wholesale
// (shallow merge, no field-level deep merge of nested objects).
type Preferences struct {
	Theme         ThemePrefs         `json:"theme"`
	Language      string             `json:"language"`
	SavedFilters  []SavedFilter      `json:"savedFilters"`
	Accessibility AccessibilityPrefs `json:"accessibility"`
	Notifications NotificationPrefs  `json:"notifications"`
}

// DefaultPreferences returns the hard-coded startup defaults.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme: ThemePrefs{
			Mode:     "light",
			Color:    DefaultThemeColor,
			FontSize: DefaultFontSize,
		},
		Language:     DefaultLanguage,
		SavedFilters: []SavedFilter{},
		Accessibility: AccessibilityPrefs{
			HighContrast: false,
			Subtitles:    false,
		},
		Notifications: NotificationPrefs{
			ProgramStart:    true,
			FavoriteUpdates: true,
		},
	}
}
