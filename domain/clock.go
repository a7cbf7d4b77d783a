package domain

import (
	"fmt"
	"time"
)

const (
	// Canonical serialized form: ISO 8601 with an explicit numeric offset.
	// Fixed-width fields, so lexicographic order equals chronological order
	// within one zone.
	isoLayout = "2006-01-02T15:04:05-07:00"
	// Legacy entries were stored without zone information and are read as
	// local to the configured zone.
	isoNaiveLayout = "2006-01-02T15:04:05"

	humanLayout = "02.01.2006 15:04"
)

// Clock converts between the bot's fixed timezone and the serialized
// timestamp form kept in the store.
type Clock struct {
	loc *time.Location
}

func NewClock(tzName string) (*Clock, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tzName, err)
	}
	return &Clock{loc: loc}, nil
}

func (c *Clock) Location() *time.Location { return c.loc }

func (c *Clock) Now() time.Time { return time.Now().In(c.loc) }

// Parse accepts a serialized timestamp with or without zone information.
// Zone-bearing input is converted into the configured zone; zone-less input
// is interpreted as already being in it.
func (c *Clock) Parse(s string) (time.Time, error) {
	if t, err := time.Parse(isoLayout, s); err == nil {
		return t.In(c.loc), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(c.loc), nil
	}
	if t, err := time.ParseInLocation(isoNaiveLayout, s, c.loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

func (c *Clock) Format(t time.Time) string {
	return t.In(c.loc).Format(isoLayout)
}

// FormatHuman renders a timestamp the way it is shown to users.
func (c *Clock) FormatHuman(t time.Time) string {
	return t.In(c.loc).Format(humanLayout)
}
