package dataprocessing

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApportion(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		firstDays  int
		wantFirst  string
		wantSecond string
	}{
		{name: "even split", value: "70", firstDays: 4, wantFirst: "40", wantSecond: "30"},
		{name: "year boundary example", value: "7", firstDays: 3, wantFirst: "3", wantSecond: "4"},
		{name: "repeating fraction", value: "100", firstDays: 1, wantFirst: "14.29", wantSecond: "85.71"},
		{name: "remainder absorbs rounding", value: "10.01", firstDays: 3, wantFirst: "4.29", wantSecond: "5.72"},
		{name: "negative credit", value: "-70", firstDays: 4, wantFirst: "-40", wantSecond: "-30"},
		{name: "negative repeating", value: "-100", firstDays: 1, wantFirst: "-14.29", wantSecond: "-85.71"},
		{name: "half cent rounds away from zero", value: "0.035", firstDays: 7, wantFirst: "0.04", wantSecond: "0"},
		{name: "value with many places", value: "12.3456", firstDays: 2, wantFirst: "3.53", wantSecond: "8.82"},
		{name: "zero value", value: "0", firstDays: 5, wantFirst: "0", wantSecond: "0"},
		{name: "no first part days", value: "49", firstDays: 0, wantFirst: "0", wantSecond: "49"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, second := Apportion(decimal.RequireFromString(tt.value), tt.firstDays)

			assert.True(t, decimal.RequireFromString(tt.wantFirst).Equal(first), "first share: got %s", first)
			assert.True(t, decimal.RequireFromString(tt.wantSecond).Equal(second), "second share: got %s", second)
		})
	}
}

func TestApportion_Conservation(t *testing.T) {
	values := []string{"0.01", "1", "9.99", "10.01", "33.33", "70", "100", "123456.789", "-0.05", "-17.17", "2.675"}
	for _, v := range values {
		value := decimal.RequireFromString(v)
		for days := 1; days < WeekLength; days++ {
			first, second := Apportion(value, days)
			assert.True(t, first.Add(second).Equal(value.Round(2)),
				"value %s days %d: %s + %s != %s", v, days, first, second, value.Round(2))
			assert.True(t, first.Equal(first.Round(SharePlaces)))
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    string
		wantErr bool
	}{
		{name: "float", in: 70.0, want: "70"},
		{name: "fractional float", in: 12.34, want: "12.34"},
		{name: "int", in: 49, want: "49"},
		{name: "int64", in: int64(-5), want: "-5"},
		{name: "plain string", in: "1234.5", want: "1234.5"},
		{name: "thousands separators", in: " 1,234,567.89 ", want: "1234567.89"},
		{name: "decimal passthrough", in: decimal.RequireFromString("3.14"), want: "3.14"},
		{name: "nil", in: nil, wantErr: true},
		{name: "blank string", in: "   ", wantErr: true},
		{name: "text", in: "n/a", wantErr: true},
		{name: "nan", in: math.NaN(), wantErr: true},
		{name: "infinity", in: math.Inf(1), wantErr: true},
		{name: "bool", in: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}
