package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/voyagen/telehaven/internal/models"
	"github.com/voyagen/telehaven/internal/schedule"
)

// Fetch retrieves the channel feed (a JSON array of channel records) from
// url and validates it. userAgent is optional.
func Fetch(ctx context.Context, url, userAgent string, timeout time.Duration) ([]models.Channel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("NewRequest: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ReadAll: %w", err)
	}
	var channels []models.Channel
	if err := json.Unmarshal(body, &channels); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	if err := validate(channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// validate checks feed invariants and normalizes in place: ids unique and
// non-empty, channel type known ("m3u8" is accepted as a legacy spelling of
// "hls"), schedules sorted ascending by time with parseable, distinct times.
// The resolver relies on the schedule invariant, so a violation fails the
// whole load rather than producing undefined matches later.
func validate(channels []models.Channel) error {
	seen := make(map[models.ChannelID]struct{}, len(channels))
	for i := range channels {
		ch := &channels[i]
		if ch.ID == "" {
			return fmt.Errorf("channel %d: empty id", i)
		}
		if _, dup := seen[ch.ID]; dup {
			return fmt.Errorf("channel %q: duplicate id", ch.ID)
		}
		seen[ch.ID] = struct{}{}

		switch ch.Type {
		case models.ChannelTypeHLS, models.ChannelTypeYouTube:
		case "m3u8":
			ch.Type = models.ChannelTypeHLS
		default:
			return fmt.Errorf("channel %q: unknown type %q", ch.ID, ch.Type)
		}

		starts := make(map[int]struct{}, len(ch.Schedule))
		for _, slot := range ch.Schedule {
			min, err := schedule.ParseClock(slot.Time)
			if err != nil {
				return fmt.Errorf("channel %q: %w", ch.ID, err)
			}
			if _, dup := starts[min]; dup {
				return fmt.Errorf("channel %q: duplicate slot time %s", ch.ID, slot.Time)
			}
			starts[min] = struct{}{}
		}
		sort.SliceStable(ch.Schedule, func(a, b int) bool {
			am, _ := schedule.ParseClock(ch.Schedule[a].Time)
			bm, _ := schedule.ParseClock(ch.Schedule[b].Time)
			return am < bm
		})
	}
	return nil
}
