package dataprocessing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// SharePlaces is the number of decimal places shares are rounded to.
const SharePlaces = 2

var daysPerWeek = decimal.NewFromInt(WeekLength)

// Apportion splits value between the first and second part of a week.
//
// The first share is value*firstPartDays/7 rounded half away from zero to two places.
// The second share is the remainder of the rounded total, so first+second always equals
// value rounded to two places.
func Apportion(value decimal.Decimal, firstPartDays int) (first, second decimal.Decimal) {
	total := value.Round(SharePlaces)
	if firstPartDays > 0 {
		first = value.Mul(decimal.NewFromInt(int64(firstPartDays))).Div(daysPerWeek).Round(SharePlaces)
	}
	return first, total.Sub(first)
}

// ParseValue interprets a cell as a finite number.
// Strings may carry thousands separators and surrounding whitespace.
func ParseValue(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, errors.New("empty value cell")
	case decimal.Decimal:
		return x, nil
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		if s == "" {
			return decimal.Zero, errors.New("empty value cell")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse %q: %w", x, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported value cell type %T", v)
	}
}

func fromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("non-finite value %v", f)
	}
	return decimal.NewFromFloat(f), nil
}
