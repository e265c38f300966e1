package api

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency amount that always serializes as a JSON number with two decimals.
// Decoding accepts numbers, quoted numbers and null.
type Money struct {
	value decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{value: d}
}

func MoneyFromFloat(f float64) Money {
	return Money{value: decimal.NewFromFloat(f)}
}

func (m Money) Decimal() decimal.Decimal {
	return m.value
}

func (m Money) String() string {
	return m.value.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	if raw == "null" || raw == `""` {
		m.value = decimal.Zero
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", string(data), err)
	}
	m.value = d
	return nil
}

// Flag is a boolean that the remote side may encode as bool, 0/1, a string or null.
// It always serializes as 0 or 1.
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	raw := strings.ToLower(string(bytes.TrimSpace(data)))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	switch raw {
	case "true", "1", "yes", "y", "open", "on":
		*f = true
	case "false", "0", "no", "n", "closed", "off", "null", "":
		*f = false
	default:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid flag %s", string(data))
		}
		*f = n != 0
	}
	return nil
}
