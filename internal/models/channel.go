package models

import (
	"encoding/json"
	"fmt"
)

// ChannelID is the stable identifier of a channel. Feeds carry it as either
// a JSON string or a number; both normalize to the string form.
type ChannelID string

// UnmarshalJSON accepts "news-1", "42" and 42.
func (id *ChannelID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ChannelID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = ChannelID(n.String())
		return nil
	}
	return fmt.Errorf("channel id: expected string or number, got %s", data)
}

func (id ChannelID) String() string { return string(id) }

// ChannelType selects the playback mechanism for a channel.
type ChannelType string

const (
	ChannelTypeHLS     ChannelType = "hls"
	ChannelTypeYouTube ChannelType = "youtube"
)

// Channel is one entry of the directory feed. Immutable for the session once
// loaded; only the Notified flag on its schedule slots may be set afterwards.
type Channel struct {
	ID          ChannelID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Language    []string      `json:"language"`
	Category    string        `json:"category"`
	Image       string        `json:"image"`
	Type        ChannelType   `json:"type"`
	VideoLink   string        `json:"videoLink"`
	ThemeColor  string        `json:"themeColor,omitempty"`
	Schedule    []ProgramSlot `json:"schedule"`
}

// ProgramSlot is one entry of a channel's daily time table. Time is a 24-hour
// "HH:MM" local-clock string. Notified records whether a start-of-program
// alert already fired for this slot; it is the only mutable field.
type ProgramSlot struct {
	Time     string `json:"time"`
	Program  string `json:"program"`
	Notified bool   `json:"-"`
}
