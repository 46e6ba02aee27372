package models

// SymbolPlacement puts the currency symbol before or after the number
type SymbolPlacement string

const (
	SymbolBefore SymbolPlacement = "before"
	SymbolAfter  SymbolPlacement = "after"
)

// Grouping is the digit grouping style of formatted amounts
type Grouping string

const (
	GroupingStandard Grouping = "standard" // 1,234,567
	GroupingIndian   Grouping = "indian"   // 12,34,567
	GroupingNone     Grouping = "none"
)

// CurrencyFormat configures how amounts are displayed
type CurrencyFormat struct {
	Code              string          `json:"code"`
	Symbol            string          `json:"symbol"`
	Placement         SymbolPlacement `json:"placement"`
	Decimals          int             `json:"decimals"`
	Grouping          Grouping        `json:"grouping"`
	ThousandSeparator string          `json:"thousand_separator"`
	DecimalSeparator  string          `json:"decimal_separator"`
}

// Preferences are per-user display settings
type Preferences struct {
	Currency CurrencyFormat `json:"currency"`
	Language string         `json:"language"`
}

// DefaultPreferences returns USD formatting in English
func DefaultPreferences() Preferences {
	return Preferences{
		Currency: CurrencyFormat{
			Code:              "USD",
			Symbol:            "$",
			Placement:         SymbolBefore,
			Decimals:          2,
			Grouping:          GroupingStandard,
			ThousandSeparator: ",",
			DecimalSeparator:  ".",
		},
		Language: "en",
	}
}
