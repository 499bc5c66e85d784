package event

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// DateLayout is the wire format of every date in the dataset
const DateLayout = "2006-01-02"

// Zone is the fixed reference offset all date arithmetic is performed in.
// It never depends on the system timezone.
var Zone = time.FixedZone("UTC+9", 9*60*60)

// Date is a calendar date anchored at midnight UTC+9
type Date struct {
	t time.Time
}

// MalformedDateError reports a date string that is not YYYY-MM-DD
type MalformedDateError struct {
	Value string
	Err   error
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed date %q: %v", e.Value, e.Err)
}

func (e *MalformedDateError) Unwrap() error {
	return e.Err
}

// ParseDate parses a YYYY-MM-DD string at midnight UTC+9
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, s, Zone)
	if err != nil {
		return Date{}, &MalformedDateError{Value: s, Err: err}
	}
	return Date{t: t}, nil
}

// MustParseDate is like ParseDate but panics on malformed input.
// It is intended for literals in tests and fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDate returns the date of t as observed in UTC+9
func NewDate(t time.Time) Date {
	t = t.In(Zone)
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Zone)}
}

// DateOf builds a date from its calendar components
func DateOf(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, Zone)}
}

// IsZero reports whether d was never set
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns midnight UTC+9 of d
func (d Date) Time() time.Time {
	return d.t
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// AddDays returns d shifted by n calendar days
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DiffDays returns the number of days from a to b, negative when b is earlier
func DiffDays(a, b Date) int {
	return int(math.Round(b.t.Sub(a.t).Hours() / 24))
}

// MarshalJSON encodes d as "YYYY-MM-DD"
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes "YYYY-MM-DD", returning a *MalformedDateError otherwise
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &MalformedDateError{Value: string(data), Err: err}
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
