package model

import (
    "database/sql/driver"
    "errors"
    "fmt"
    "math"
    "strconv"
    "strings"
)

// Amount is a monetary value in minor currency units (paise, cents).  It is
// stored as DECIMAL(10,2) and travels over JSON as a decimal number with two
// fraction digits.
type Amount int64

// ErrInvalidAmount is returned for values that cannot be represented as a
// finite amount.
var ErrInvalidAmount = errors.New("invalid amount")

// AmountFromMajor converts a major-unit value (e.g. rupees) to an Amount,
// rounding to the nearest minor unit.
func AmountFromMajor(v float64) (Amount, error) {
    if math.IsNaN(v) || math.IsInf(v, 0) {
        return 0, ErrInvalidAmount
    }
    minor := math.Round(v * 100)
    if math.Abs(minor) > math.MaxInt64/2 {
        return 0, ErrInvalidAmount
    }
    return Amount(minor), nil
}

// ParseAmount parses a decimal string such as "500", "499.5" or "12.25".
// Extra fraction digits are rounded half away from zero.
func ParseAmount(s string) (Amount, error) {
    s = strings.TrimSpace(s)
    if s == "" {
        return 0, ErrInvalidAmount
    }
    if strings.ContainsAny(s, "eE") {
        f, err := strconv.ParseFloat(s, 64)
        if err != nil {
            return 0, ErrInvalidAmount
        }
        return AmountFromMajor(f)
    }
    neg := false
    switch s[0] {
    case '-':
        neg = true
        s = s[1:]
    case '+':
        s = s[1:]
    }
    whole, frac, _ := strings.Cut(s, ".")
    if whole == "" && frac == "" {
        return 0, ErrInvalidAmount
    }
    if whole == "" {
        whole = "0"
    }
    if !digits(whole) || !digits(frac) {
        return 0, ErrInvalidAmount
    }
    w, err := strconv.ParseInt(whole, 10, 64)
    if err != nil || w > maxWhole {
        return 0, ErrInvalidAmount
    }
    var cents int64
    switch {
    case len(frac) == 0:
    case len(frac) == 1:
        cents = int64(frac[0]-'0') * 10
    default:
        cents = int64(frac[0]-'0')*10 + int64(frac[1]-'0')
        if len(frac) > 2 && frac[2] >= '5' {
            cents++
        }
    }
    v := w*100 + cents
    if neg {
        v = -v
    }
    return Amount(v), nil
}

// maxWhole is the largest whole part whose minor-unit value, plus a
// rounded-up fraction, still fits in an int64.
const maxWhole = (math.MaxInt64 - 100) / 100

func digits(s string) bool {
    for i := 0; i < len(s); i++ {
        if s[i] < '0' || s[i] > '9' {
            return false
        }
    }
    return true
}

// Major returns the amount in major units.
func (a Amount) Major() float64 { return float64(a) / 100 }

// String formats the amount with exactly two fraction digits.
func (a Amount) String() string {
    v := int64(a)
    sign := ""
    if v < 0 {
        sign = "-"
        v = -v
    }
    return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON writes the amount as a JSON number, e.g. 500.00.
func (a Amount) MarshalJSON() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(b []byte) error {
    v, err := ParseAmount(strings.Trim(string(b), `"`))
    if err != nil {
        return err
    }
    *a = v
    return nil
}

// Scan implements sql.Scanner.  MySQL returns DECIMAL columns as text while
// SQLite hands back integers or floats depending on the stored value.
func (a *Amount) Scan(src any) error {
    switch v := src.(type) {
    case nil:
        *a = 0
        return nil
    case int64:
        *a = Amount(v * 100)
        return nil
    case float64:
        out, err := AmountFromMajor(v)
        if err != nil {
            return err
        }
        *a = out
        return nil
    case []byte:
        return a.scanString(string(v))
    case string:
        return a.scanString(v)
    }
    return fmt.Errorf("amount: unsupported scan type %T", src)
}

func (a *Amount) scanString(s string) error {
    out, err := ParseAmount(s)
    if err != nil {
        return fmt.Errorf("amount: %q: %w", s, err)
    }
    *a = out
    return nil
}

// Value implements driver.Valuer, sending the decimal text form so the
// database never sees a binary float.
func (a Amount) Value() (driver.Value, error) { return a.String(), nil }
