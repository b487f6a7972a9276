// Package calendar reads the seat-calendar feed some ticket pages expose
// next to the rendered page: one JSON record per line, one line per
// performance date.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"ticketwatch-backend/lib/telemetry"
	"ticketwatch-backend/lib/timezone"

	"github.com/go-resty/resty/v2"
)

// OpenDate is a performance date with remaining seats inside its
// reservation window.
type OpenDate struct {
	// YYYYMMDD, the feed's primary key for a date
	Key string
	// YYYY-MM-DD, for humans
	Date string
	// remaining seats reported by the feed
	Seats int
	// lowest price band, yen, as the feed spells it
	MinPrice string
}

// ParseFeed filters the feed down to dates that are actually bookable at
// `now`: remaining seats and a reservation window that has opened and not
// yet closed. Blank and malformed lines are skipped, matching how the
// site itself pads the feed. The window bounds are JST YYYYMMDDHHmmss
// strings, so plain string comparison orders them correctly.
func ParseFeed(text string, now time.Time) []OpenDate {
	nowCompact := timezone.Compact(now)

	var open []OpenDate
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			continue
		}

		joenDate := asString(record["JOEN_DATE"])
		seats := asInt(record["ZANSEKI"])
		windowStart := asString(record["YOYAKU_STDATE"])
		windowEnd := asString(record["YOYAKU_EDDATE"])

		if seats <= 0 || len(joenDate) < 8 {
			continue
		}
		if windowStart > nowCompact || nowCompact > windowEnd {
			continue
		}

		open = append(open, OpenDate{
			Key:      joenDate,
			Date:     fmt.Sprintf("%s-%s-%s", joenDate[:4], joenDate[4:6], joenDate[6:8]),
			Seats:    seats,
			MinPrice: asString(record["MIN_RYOKIN"]),
		})
	}

	slices.SortFunc(open, func(a, b OpenDate) int {
		return strings.Compare(a.Key, b.Key)
	})
	return open
}

// the feed is inconsistent about whether numbers are quoted
func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return parsed
	}
	return 0
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatInt(int64(s), 10)
	}
	return ""
}

// Keys returns the sorted date keys of `dates`, the form they are
// persisted in between runs.
func Keys(dates []OpenDate) []string {
	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = d.Key
	}
	return keys
}

// Diff returns the dates in `current` whose key was not open on the
// previous run.
func Diff(current []OpenDate, previousKeys []string) []OpenDate {
	var fresh []OpenDate
	for _, d := range current {
		if !slices.Contains(previousKeys, d.Key) {
			fresh = append(fresh, d)
		}
	}
	return fresh
}

// Summary renders `dates` as the one-line diagnostic stored in the check
// history.
func Summary(dates []OpenDate) string {
	if len(dates) == 0 {
		return "no open dates"
	}
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = fmt.Sprintf("%s(%d)", d.Date, d.Seats)
	}
	return "open: " + strings.Join(parts, " ")
}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Client struct {
	http    *resty.Client
	feedURL string
}

// NewClient builds a feed client. `pageURL` is sent as the referer, the
// feed rejects requests that do not look like they came from the ticket
// page itself.
func NewClient(feedURL, pageURL string) *Client {
	client := resty.New()
	client.SetHeader("user-agent", browserUserAgent)
	if pageURL != "" {
		client.SetHeader("referer", pageURL)
	}
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "ticketwatch.calendar")

	return &Client{
		http:    client,
		feedURL: feedURL,
	}
}

func (c *Client) FetchOpenDates(ctx context.Context) ([]OpenDate, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(c.feedURL)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("calendar feed returned status %d", res.StatusCode())
	}

	return ParseFeed(res.String(), timezone.Now()), nil
}
