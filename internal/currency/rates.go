// Package currency looks up exchange rates and formats amounts for display.
//
// Rates come from a public JSON endpoint quoted against USD. Any failure to
// fetch them is absorbed: callers always get a usable table, falling back to
// a small built-in set of common currencies.
package currency

import (
	"sort"
	"strings"
	"time"
)

// Base is the currency every rate is quoted against.
const Base = "USD"

// Rates maps a three-letter currency code to units per one Base.
type Rates map[string]float64

// Source tells where a rate table came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

var fallbackRates = Rates{
	"USD": 1.0,
	"EUR": 0.91,
	"JPY": 148.5,
	"MYR": 4.6,
	"INR": 83.5,
	"SGD": 1.35,
}

// Fallback returns the built-in table used when live rates are unavailable.
func Fallback() Rates {
	return fallbackRates.Clone()
}

// Clone returns a copy of r.
func (r Rates) Clone() Rates {
	out := make(Rates, len(r))
	for code, v := range r {
		out[code] = v
	}
	return out
}

// Rate returns the rate for code, ignoring case.
func (r Rates) Rate(code string) (float64, bool) {
	v, ok := r[strings.ToUpper(code)]
	return v, ok
}

// Codes returns the known currency codes in sorted order.
func (r Rates) Codes() []string {
	codes := make([]string, 0, len(r))
	for code := range r {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Table is a rate snapshot with its provenance.
type Table struct {
	Rates     Rates
	Source    Source
	FetchedAt time.Time
}
