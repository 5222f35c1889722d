package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownMonth = errors.New("unknown month")

// Month is a calendar month that serializes as its English name ("April").
type Month time.Month

// ParseMonth accepts full English month names and three-letter abbreviations,
// case-insensitively.
func ParseMonth(s string) (Month, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if name == full || (len(name) == 3 && name == full[:3]) {
			return Month(m), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMonth, s)
}

func (m Month) Valid() bool {
	return time.Month(m) >= time.January && time.Month(m) <= time.December
}

func (m Month) String() string {
	return time.Month(m).String()
}

// Abbrev returns the three-letter month name ("Apr").
func (m Month) Abbrev() string {
	return m.String()[:3]
}

func (m Month) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMonth, int(m))
	}
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("month must be a string: %w", err)
	}
	parsed, err := ParseMonth(name)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
