package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// DefaultCurrency is assigned to every new profile.
const DefaultCurrency = "USD"

type currencySpec struct {
	symbol  string
	divisor decimal.Decimal
	places  int32
}

// Display scaling only: stored amounts stay in canonical units, selection of
// a currency never rescales the balance itself.
var specs = map[string]currencySpec{
	"USD": {"$", decimal.NewFromInt(1), 2},
	"GBP": {"£", decimal.NewFromInt(1), 2},
	"EUR": {"€", decimal.NewFromInt(1), 2},
	"BTC": {"₿", decimal.NewFromInt(100000), 8},
	"ETH": {"Ξ", decimal.NewFromInt(4000), 6},
	"LTC": {"Ł", decimal.NewFromInt(100), 4},
}

// Codes lists the supported currency codes in display order.
var Codes = []string{"USD", "GBP", "EUR", "BTC", "ETH", "LTC"}

func Supported(code string) bool {
	_, ok := specs[code]
	return ok
}

// Format renders a canonical amount for the given currency code. Unknown
// codes fall back to USD.
func Format(amount decimal.Decimal, code string) string {
	spec, ok := specs[code]
	if !ok {
		spec = specs[DefaultCurrency]
	}
	return spec.symbol + amount.Div(spec.divisor).StringFixed(spec.places)
}

// FormatFloat renders a float amount, treating NaN and infinities as zero.
func FormatFloat(value float64, code string) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	return Format(decimal.NewFromFloat(value), code)
}

// Parse converts a decimal string into an amount, rejecting blanks and
// malformed input.
func Parse(input string) (decimal.Decimal, error) {
	if input == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	value, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return value, nil
}
