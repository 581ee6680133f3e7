package document

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DefaultCurrencySymbol is used when an invoice carries no currency code.
const DefaultCurrencySymbol = "$"

var defaultSymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
	"JPY": "¥",
	"CNY": "¥",
	"AUD": "A$",
	"CAD": "C$",
	"NZD": "NZ$",
	"CHF": "CHF ",
	"SGD": "S$",
	"HKD": "HK$",
	"MXN": "MX$",
	"BRL": "R$",
	"ZAR": "R",
	"KRW": "₩",
	"NGN": "₦",
	"PHP": "₱",
}

// CurrencyTable maps ISO currency codes to display symbols. It is read-only
// once built.
type CurrencyTable struct {
	symbols map[string]string
}

// NewCurrencyTable returns the built-in table with overrides applied on top.
func NewCurrencyTable(overrides map[string]string) *CurrencyTable {
	t := &CurrencyTable{symbols: make(map[string]string, len(defaultSymbols)+len(overrides))}
	for code, sym := range defaultSymbols {
		t.symbols[code] = sym
	}
	for code, sym := range overrides {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		t.symbols[code] = sym
	}
	return t
}

// LoadCurrencyTable reads a YAML file with a top-level "currencies" map and
// merges it over the built-in table. An empty path yields the built-in table.
func LoadCurrencyTable(path string) (*CurrencyTable, error) {
	if path == "" {
		return NewCurrencyTable(nil), nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read currency table: %w", err)
	}
	return NewCurrencyTable(v.GetStringMapString("currencies")), nil
}

// With returns a copy of the table with overrides applied on top.
func (t *CurrencyTable) With(overrides map[string]string) *CurrencyTable {
	if len(overrides) == 0 {
		return t
	}
	merged := make(map[string]string, len(t.symbols)+len(overrides))
	for code, sym := range t.symbols {
		merged[code] = sym
	}
	for code, sym := range overrides {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			merged[code] = sym
		}
	}
	return &CurrencyTable{symbols: merged}
}

// Symbol returns the display symbol for code. An empty code maps to "$"; an
// unknown code is shown as the code followed by a space.
func (t *CurrencyTable) Symbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrencySymbol
	}
	if t != nil {
		if sym, ok := t.symbols[code]; ok {
			return sym
		}
	}
	return code + " "
}

// Known reports whether code has an entry in the table.
func (t *CurrencyTable) Known(code string) bool {
	_, ok := t.symbols[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// FormatMoney renders v with two decimal places after symbol. Negative values
// keep their sign after the symbol ("$-5.00").
func FormatMoney(symbol string, v decimal.Decimal) string {
	return symbol + v.StringFixed(2)
}
