package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// timeLayouts are the timestamp layouts the backend has been seen to emit.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// ErrBadTime is returned by [ParseTime] for strings matching no known format.
var ErrBadTime = errors.New("unrecognised time format")

// ParseTime parses a backend timestamp into a [time.Time] value.
//
// Date-time strings are tried against the known layouts. A bare number is taken as unix
// seconds with an optional fraction of up to 6 digits, e.g. "1632992395.123456".
// Layouts without a zone are read as UTC.
//
// Args:
//   - strtime: The string representation of time.
//
// Returns:
//   - time.Time: The parsed time.Time object.
//   - error: An error if the parsing fails.
func ParseTime(strtime string) (t time.Time, err error) {
	strtime = strings.TrimSpace(strtime)

	sec, nsec, _ := strings.Cut(strtime, ".")
	if IsDigit(sec) && (nsec == "" || (IsDigit(nsec) && len(nsec) <= 6)) {
		nsec = nsec + strings.Repeat("0", 6-len(nsec))

		var secInt, usecInt int64
		if secInt, err = strconv.ParseInt(sec, 10, 64); err != nil {
			return
		}
		if usecInt, err = strconv.ParseInt(nsec, 10, 64); err != nil {
			return
		}
		return time.Unix(secInt, usecInt*int64(time.Microsecond)).UTC(), nil
	}

	for _, layout := range timeLayouts {
		if t, err = time.Parse(layout, strtime); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrBadTime
}
