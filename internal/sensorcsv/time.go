package sensorcsv

import "time"

// secondsToTime converts a Unix-epoch-seconds float64 timestamp (as found
// in the CSV input format) into a time.Time.
func secondsToTime(seconds float64) time.Time {
	whole := int64(seconds)
	frac := seconds - float64(whole)
	return time.Unix(whole, int64(frac*float64(time.Second)))
}
