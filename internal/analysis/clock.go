package analysis

import (
	"time"
	_ "time/tzdata"
)

const (
	DefaultMarketTimezone = "America/Argentina/Buenos_Aires"
	marketOpenHour        = 11
	marketCloseHour       = 17
)

// MarketClock answers whether the tracked market is in its trading session
// (Mon-Fri, 11:00-17:00 local).
type MarketClock struct {
	timezone string
	now      func() time.Time
}

func NewMarketClock(timezone string, now func() time.Time) *MarketClock {
	if timezone == "" {
		timezone = DefaultMarketTimezone
	}
	if now == nil {
		now = time.Now
	}
	return &MarketClock{timezone: timezone, now: now}
}

func (c *MarketClock) Now() time.Time {
	return c.now()
}

// IsMarketHours fails open: when the timezone cannot be resolved it reports
// true together with the lookup error so the caller can log it.
func (c *MarketClock) IsMarketHours() (bool, error) {
	loc, err := time.LoadLocation(c.timezone)
	if err != nil {
		return true, err
	}
	return withinSession(c.now().In(loc)), nil
}

func withinSession(local time.Time) bool {
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hour := local.Hour()
	return hour >= marketOpenHour && hour < marketCloseHour
}
