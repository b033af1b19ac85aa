package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Cents is an amount of money in minor units. Values are stored as
// numeric(12,2) and rendered with two decimals.
type Cents int64

// MaxCents is the largest amount a numeric(12,2) column holds: 9,999,999,999.99.
const MaxCents Cents = 999_999_999_999

// ParseCents parses "100", "100.5" or "100.50". More than two decimals is an error.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimals", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w > int64(MaxCents)/100 {
		return 0, fmt.Errorf("amount %q is out of range", s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	c := Cents(w*100 + f)
	if neg {
		c = -c
	}
	return c, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal.
func (c *Cents) UnmarshalJSON(data []byte) error {
	v, err := ParseCents(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c *Cents) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	case int64:
		*c = Cents(v * 100)
		return nil
	case float64:
		s = strconv.FormatFloat(v, 'f', 2, 64)
	case nil:
		*c = 0
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Cents", src)
	}
	v, err := ParseCents(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c Cents) Value() (driver.Value, error) {
	return c.String(), nil
}
