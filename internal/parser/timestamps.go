package parser

import (
	"regexp"
	"time"
)

// Time format patterns (ordered by specificity - most specific first)
var (
	rfc3339Regex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`) // 2006-01-02T15:04:05Z
	iso8601Regex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?([+-]\d{4})?$`)        // 2006-01-02T15:04:05, 2006-01-02T15:04:05+0100
	dateOnlyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)                                            // 2006-01-02
	dateTimeRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`)                    // 2006-01-02 15:04:05
)

type timestampFormat struct {
	regex   *regexp.Regexp
	layouts []string
}

// isoFormats carry the 'T' date/time separator
var isoFormats = []timestampFormat{
	{rfc3339Regex, []string{time.RFC3339Nano}},
	{iso8601Regex, []string{"2006-01-02T15:04:05.999999999-0700", "2006-01-02T15:04:05.999999999"}},
}

// looseFormats also match plain dates and space separated date-times
var looseFormats = append(append([]timestampFormat{}, isoFormats...),
	timestampFormat{dateOnlyRegex, []string{time.DateOnly}},
	timestampFormat{dateTimeRegex, []string{"2006-01-02 15:04:05.999999999"}},
)

// ParseTimestamp recognizes ISO 8601 date-times with a 'T' separator.
// Values without a zone are read as UTC; the result is always in UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	return matchTimestamp(s, isoFormats)
}

// ParseLooseTimestamp is ParseTimestamp plus "2006-01-02" and
// "2006-01-02 15:04:05" shapes.
func ParseLooseTimestamp(s string) (time.Time, bool) {
	return matchTimestamp(s, looseFormats)
}

func matchTimestamp(s string, formats []timestampFormat) (time.Time, bool) {
	for _, format := range formats {
		if !format.regex.MatchString(s) {
			continue
		}
		for _, layout := range format.layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		// Shaped like a date but not a real one (e.g. month 13)
		return time.Time{}, false
	}
	return time.Time{}, false
}
