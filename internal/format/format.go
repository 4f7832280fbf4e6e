package format

import (
	"fmt"
	"math"
	"time"
)

// Date renders the calendar date for a Unix-epoch-seconds timestamp
// in local time. Zero and negative timestamps are valid input.
func Date(timestamp int64) string {
	return time.Unix(timestamp, 0).Format("Jan 2, 2006")
}

// LastOnline renders the whole minutes elapsed since timestamp as
// "{n}m ago", "{n}h ago" past an hour, "{n}d ago" past a day, each
// unit a floor division. Timestamps in the future go through the same
// formula and come out negative.
func LastOnline(timestamp int64) string {
	return lastOnlineAt(timestamp, time.Now())
}

func lastOnlineAt(timestamp int64, now time.Time) string {
	minutes := int64(math.Floor(now.Sub(time.Unix(timestamp, 0)).Minutes()))
	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%dh ago", minutes/60)
	default:
		return fmt.Sprintf("%dd ago", minutes/1440)
	}
}
