package currency

import (
	"fmt"
	"strings"
)

// Unknown is shown for codes missing from the name table.
const Unknown = "Unknown"

var names = map[string]string{
	"USD": "United States",
	"EUR": "Eurozone",
	"JPY": "Japan",
	"MYR": "Malaysia",
	"INR": "India",
	"SGD": "Singapore",
	"GBP": "United Kingdom",
	"AUD": "Australia",
	"CAD": "Canada",
	"CHF": "Switzerland",
	"CNY": "China",
	"HKD": "Hong Kong",
}

// Name returns the country or region that issues code.
func Name(code string) string {
	if n, ok := names[strings.ToUpper(code)]; ok {
		return n
	}
	return Unknown
}

// Label formats code for a picker, e.g. "USD (United States)".
func Label(code string) string {
	code = strings.ToUpper(code)
	return fmt.Sprintf("%s (%s)", code, Name(code))
}
