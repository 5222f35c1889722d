package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BritishEnglish)

// Format renders an amount with the symbol of the given ISO currency code,
// rounded to the currency's standard scale. Unknown codes fall back to the
// code itself.
func Format(amount decimal.Decimal, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code + " " + amount.StringFixed(2)
	}
	scale, _ := currency.Standard.Rounding(unit)
	f, _ := amount.Round(int32(scale)).Float64()
	return printer.Sprint(currency.Symbol(unit.Amount(f)))
}

// Percent renders a percentage with one decimal place.
func Percent(p decimal.Decimal) string {
	return p.StringFixed(1) + "%"
}

// Ratio renders a ratio with one decimal place.
func Ratio(r decimal.Decimal) string {
	return r.StringFixed(1)
}

// ValidCode reports whether code is a known ISO 4217 currency.
func ValidCode(code string) bool {
	_, err := currency.ParseISO(code)
	return err == nil
}
