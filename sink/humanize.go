package sink

import (
	"math"
	"strconv"
	"time"
)

const (
	_MS_SECOND = 1000
	_MS_MINUTE = 60 * _MS_SECOND
	_MS_HOUR   = 60 * _MS_MINUTE
	_MS_DAY    = 24 * _MS_HOUR
)

// Humanize prints a delay in the largest whole unit it reaches, rounded:
// 850ms, 2s, 5m, 3h, 2d. Negative delays keep their sign.
func Humanize(d time.Duration) string {
	ms := d.Milliseconds()
	abs := ms
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= _MS_DAY:
		return round(ms, _MS_DAY) + "d"
	case abs >= _MS_HOUR:
		return round(ms, _MS_HOUR) + "h"
	case abs >= _MS_MINUTE:
		return round(ms, _MS_MINUTE) + "m"
	case abs >= _MS_SECOND:
		return round(ms, _MS_SECOND) + "s"
	}
	return strconv.FormatInt(ms, 10) + "ms"
}

// round halves toward +Inf: -1.5 gives -1, 1.5 gives 2.
func round(ms, unit int64) string {
	return strconv.FormatFloat(math.Floor(float64(ms)/float64(unit)+0.5), 'f', 0, 64)
}
