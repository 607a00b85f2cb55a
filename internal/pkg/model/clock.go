package model

import "time"

// Timestamp is t in UTC at microsecond precision, the finest precision every store keeps.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// Now is the clock profiles are stamped with.
func Now() time.Time {
	return Timestamp(time.Now())
}
