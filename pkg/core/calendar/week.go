package calendar

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"time"
)

// Week is an ISO-8601 week: weeks start on Monday and week 1 contains the
// year's first Thursday. The zero value means "no week".
type Week struct {
	Year   int
	Number int
}

// FormatError is returned when a week label cannot be parsed
type FormatError struct {
	Label  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid week label %q: %s", e.Label, e.Reason)
}

var weekLabelPattern = regexp.MustCompile(`^(\d{4})-W(\d{1,2})$`)

// Parse parses a week label of the form YYYY-Www (e.g. "2024-W07").
// Single digit week numbers ("2024-W7") are accepted because older exports wrote them that way.
func Parse(label string) (Week, error) {
	match := weekLabelPattern.FindStringSubmatch(label)
	if match == nil {
		return Week{}, &FormatError{Label: label, Reason: "expected YYYY-Www"}
	}

	year, _ := strconv.Atoi(match[1])
	number, _ := strconv.Atoi(match[2])

	if number < 1 || number > 53 {
		return Week{}, &FormatError{Label: label, Reason: "week number must be between 1 and 53"}
	}
	if number > WeeksInYear(year) {
		return Week{}, &FormatError{Label: label, Reason: fmt.Sprintf("year %d has only %d weeks", year, WeeksInYear(year))}
	}

	return Week{Year: year, Number: number}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(label string) Week {
	w, err := Parse(label)
	if err != nil {
		panic(err)
	}
	return w
}

// FromTime returns the ISO week containing t
func FromTime(t time.Time) Week {
	year, number := t.ISOWeek()
	return Week{Year: year, Number: number}
}

// WeeksInYear returns 52 or 53. December 28th always falls in the last ISO week of its year.
func WeeksInYear(year int) int {
	_, last := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return last
}

// Monday returns the Monday (00:00 UTC) that starts the week
func (w Week) Monday() time.Time {
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7 // days since Monday
	firstMonday := jan4.AddDate(0, 0, -offset)
	return firstMonday.AddDate(0, 0, 7*(w.Number-1))
}

// IsZero reports whether w is the unset week
func (w Week) IsZero() bool {
	return w.Year == 0 && w.Number == 0
}

func (w Week) String() string {
	if w.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Number)
}

// Before reports whether w is chronologically before other
func (w Week) Before(other Week) bool { return Compare(w, other) < 0 }

// After reports whether w is chronologically after other
func (w Week) After(other Week) bool { return Compare(w, other) > 0 }

// Equal reports whether both weeks are the same
func (w Week) Equal(other Week) bool { return w == other }

// MarshalText encodes the week as its label so JSON and database payloads stay readable
func (w Week) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText decodes a week label. An empty label decodes to the zero week.
func (w *Week) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*w = Week{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Compare returns -1, 0 or +1 depending on the chronological order of a and b
func Compare(a, b Week) int {
	switch {
	case a.Year != b.Year:
		if a.Year < b.Year {
			return -1
		}
		return 1
	case a.Number < b.Number:
		return -1
	case a.Number > b.Number:
		return 1
	}
	return 0
}

// AddWeeks moves w by n weeks (n may be negative), crossing year boundaries
// through the calendar date rather than the week number.
func AddWeeks(w Week, n int) Week {
	return FromTime(w.Monday().AddDate(0, 0, 7*n))
}

const secondsPerWeek = 7 * 24 * 60 * 60

// Between returns the signed number of weeks from a to b. Counted in Unix seconds,
// since a time.Duration saturates after about 292 years.
func Between(a, b Week) int {
	return int((b.Monday().Unix() - a.Monday().Unix()) / secondsPerWeek)
}

// CountInclusive returns the number of weeks from a to b inclusive. Requires a <= b.
func CountInclusive(a, b Week) (int, error) {
	if a.After(b) {
		return 0, fmt.Errorf("start week %s is after end week %s", a, b)
	}
	return Between(a, b) + 1, nil
}

// Iter yields every week from a to b inclusive in chronological order.
// It yields nothing when a is after b.
func Iter(a, b Week) iter.Seq[Week] {
	return func(yield func(Week) bool) {
		if a.After(b) {
			return
		}
		for w := a; !w.After(b); w = AddWeeks(w, 1) {
			if !yield(w) {
				return
			}
		}
	}
}

// RangeInclusive returns every week from a to b inclusive
func RangeInclusive(a, b Week) []Week {
	if a.After(b) {
		return nil
	}
	weeks := make([]Week, 0, Between(a, b)+1)
	for w := range Iter(a, b) {
		weeks = append(weeks, w)
	}
	return weeks
}

// YearSpan groups consecutive weeks of the same ISO year, used for board headers
type YearSpan struct {
	Year  int
	Count int
}

// YearSpans collapses a chronological week sequence into per-year runs
func YearSpans(weeks []Week) []YearSpan {
	var spans []YearSpan
	for _, w := range weeks {
		if len(spans) > 0 && spans[len(spans)-1].Year == w.Year {
			spans[len(spans)-1].Count++
			continue
		}
		spans = append(spans, YearSpan{Year: w.Year, Count: 1})
	}
	return spans
}
