// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns a pointer to the current time in UTC
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// UTCNowAdd returns the current UTC time plus the given duration
func UTCNowAdd(d time.Duration) time.Time {
	return UTCNow().Add(d)
}

// IsExpired checks if the given time is in the past (expired)
func IsExpired(t time.Time) bool {
	return !UTCNow().Before(t)
}

// IsExpiredPtr checks if the given time pointer is in the past (expired)
func IsExpiredPtr(t *time.Time) bool {
	if t == nil {
		return false
	}
	return IsExpired(*t)
}

// IsValid checks if the given time is in the future (valid)
func IsValid(t time.Time) bool {
	return UTCNow().Before(t)
}

// IsValidPtr checks if the given time pointer is in the future (valid)
func IsValidPtr(t *time.Time) bool {
	if t == nil {
		return false
	}
	return IsValid(*t)
}

// TimeToUTC converts a time to UTC if it's not already
func TimeToUTC(t time.Time) time.Time {
	return t.UTC()
}
