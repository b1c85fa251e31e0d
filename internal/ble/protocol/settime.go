package protocol

import (
	"strconv"
	"strings"
	"time"
)

const timeZoneCall = "E.setTimeZone("

// SetTime is a decoded setTime(...) command.
type SetTime struct {
	Epoch int64 // seconds since the Unix epoch, UTC
	TZ    int   // whole-hour offset from UTC
}

// DateTime holds calendar fields as written to the real-time clock.
type DateTime struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

// Time returns dt as a time.Time in loc.
func (dt DateTime) Time(loc *time.Location) time.Time {
	return time.Date(dt.Year, time.Month(dt.Month), dt.Day, dt.Hour, dt.Minute, dt.Second, 0, loc)
}

// DecodeSetTime parses the text following "setTime(". The epoch is the
// leading integer; the timezone is the integer following an embedded
// E.setTimeZone( call anywhere in the payload. Both parse leniently and
// fall back to 0.
func DecodeSetTime(payload string) SetTime {
	st := SetTime{Epoch: leadingInt(payload)}
	if i := strings.Index(payload, timeZoneCall); i >= 0 {
		st.TZ = int(leadingInt(payload[i+len(timeZoneCall):]))
	}
	return st
}

// Local returns the calendar fields the watch writes to its clock: the UTC
// breakdown of Epoch with only the hour shifted by TZ, modulo 24. The date
// is not adjusted when the shift crosses midnight.
func (st SetTime) Local() DateTime {
	t := time.Unix(st.Epoch, 0).UTC()
	hour := ((t.Hour()+24+st.TZ)%24 + 24) % 24
	return DateTime{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   hour,
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// Corrected returns the fully normalized local time for Epoch at a fixed
// UTC offset of TZ hours, date included.
func (st SetTime) Corrected() DateTime {
	t := time.Unix(st.Epoch, 0).In(time.FixedZone("", st.TZ*3600))
	return DateTime{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// leadingInt mimics atol: optional leading whitespace, an optional sign,
// then decimal digits up to the first non-digit. No digits, or a value out
// of int64 range, yields 0.
func leadingInt(s string) int64 {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
