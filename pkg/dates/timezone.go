package dates

import (
	"fmt"
	"time"
)

// MinOffset and MaxOffset bound the whole-hour offsets a file may be read in.
const (
	MinOffset = -12
	MaxOffset = 14
)

// DisplayLayout renders an instant for humans, zone name included.
const DisplayLayout = "01/02/2006 15:04:05.000 MST"

// ZoneName returns the display name of a whole-hour offset, "GMT" for zero.
func ZoneName(offsetHours int) string {
	switch {
	case offsetHours > 0:
		return fmt.Sprintf("GMT+%d", offsetHours)
	case offsetHours < 0:
		return fmt.Sprintf("GMT%d", offsetHours)
	default:
		return "GMT"
	}
}

// Zone returns a fixed location UTC+offsetHours.
func Zone(offsetHours int) *time.Location {
	if offsetHours == 0 {
		return time.UTC
	}
	return time.FixedZone(ZoneName(offsetHours), offsetHours*3600)
}

// Timezone is one entry of the offset picker.
type Timezone struct {
	Name   string `json:"name"`
	Offset int    `json:"offset"`
}

// Timezones lists GMT-12 through GMT+12.
func Timezones() []Timezone {
	zones := make([]Timezone, 0, 25)
	for h := -12; h <= 12; h++ {
		zones = append(zones, Timezone{Name: ZoneName(h), Offset: h})
	}
	return zones
}

// FormatAt renders t in the fixed zone UTC+offsetHours.
func FormatAt(t time.Time, offsetHours int) string {
	return t.In(time.FixedZone(ZoneName(offsetHours), offsetHours*3600)).Format(DisplayLayout)
}
