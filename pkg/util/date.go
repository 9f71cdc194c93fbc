package util

import "time"

// UnixAuto converts a numeric unix timestamp to UTC time, detecting the
// unit from magnitude. Feed payloads disagree on this: some send seconds,
// some milliseconds.
func UnixAuto(n int64) time.Time {
	if n > 1e14 { // microseconds
		return time.UnixMicro(n).UTC()
	}
	if n > 1e11 { // milliseconds
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
