// Package ticker recovers a validated ticker symbol from heterogeneous
// spread payloads or, failing that, from the navigation location the
// browser reported. Resolution is an ordered list of independent
// strategies; the first one producing a valid symbol wins.
package ticker

import (
	"net/url"
	"regexp"
	"strings"

	"spreadview/internal/domain"
)

// Location is the navigation state passed in by the caller. It is an
// explicit parameter so resolution stays pure: nothing here reads ambient
// request or process state.
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation builds a Location from a raw URL or path string. A bad
// string yields an empty Location, which simply resolves nothing.
func ParseLocation(raw string) Location {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}
	}
	return Location{Path: u.Path, Query: u.Query()}
}

// Record carries the fields resolution may inspect, in strategy order:
// the saved-format symbol, the live top-level ticker, then the option
// contract symbols.
type Record struct {
	Symbol             string
	Ticker             string
	SellContractSymbol string
	BuyContractSymbol  string
}

var (
	// Leading run of 1-5 uppercase letters, as found at the head of an OCC
	// option contract symbol.
	contractPrefix = regexp.MustCompile(`^[A-Z]{1,5}`)

	// A full path segment or query value that is itself a symbol.
	segmentSymbol = regexp.MustCompile(`^[A-Z]{1,5}$`)

	// Post-strategy validation: 1-5 letters, case-insensitive.
	validSymbol = regexp.MustCompile(`^[A-Za-z]{1,5}$`)
)

// A strategy proposes a candidate symbol, or reports that it has none.
type strategy func(Record, Location) (string, bool)

var strategies = []strategy{
	fromSavedSymbol,
	fromLiveTicker,
	fromContractSymbols,
	fromLocation,
}

// Resolve runs the strategies in order and returns the first candidate that
// validates, normalized to upper case. When every strategy fails it returns
// a ResolutionError carrying the last candidate tried, so the caller can
// render an explicit unavailable state instead of guessing.
func Resolve(rec Record, loc Location) (string, error) {
	lastCandidate := ""
	for _, s := range strategies {
		candidate, ok := s(rec, loc)
		if !ok {
			continue
		}
		lastCandidate = candidate
		if sym, ok := Validate(candidate); ok {
			return sym, nil
		}
	}
	return "", &domain.ResolutionError{Candidate: lastCandidate}
}

// Validate trims and checks a candidate (1-5 letters, any case) and returns
// its upper-cased form.
func Validate(candidate string) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	if !validSymbol.MatchString(candidate) {
		return "", false
	}
	return strings.ToUpper(candidate), true
}

func fromSavedSymbol(rec Record, _ Location) (string, bool) {
	if rec.Symbol == "" {
		return "", false
	}
	return rec.Symbol, true
}

func fromLiveTicker(rec Record, _ Location) (string, bool) {
	if rec.Ticker == "" {
		return "", false
	}
	return rec.Ticker, true
}

// fromContractSymbols extracts the underlying from an option contract
// symbol, sell leg first. "TSLA250725C00290000" → "TSLA".
func fromContractSymbols(rec Record, _ Location) (string, bool) {
	for _, cs := range []string{rec.SellContractSymbol, rec.BuyContractSymbol} {
		if m := contractPrefix.FindString(strings.TrimSpace(cs)); m != "" {
			return m, true
		}
	}
	return "", false
}

// fromLocation scans the navigation location: the symbol/ticker query
// params first, then path segments left to right, then the remaining query
// values. Only exact 1-5 uppercase-letter matches count.
func fromLocation(_ Record, loc Location) (string, bool) {
	for _, key := range []string{"symbol", "ticker"} {
		if v := loc.Query.Get(key); segmentSymbol.MatchString(v) {
			return v, true
		}
	}
	for _, seg := range strings.Split(loc.Path, "/") {
		if segmentSymbol.MatchString(seg) {
			return seg, true
		}
	}
	for _, vals := range loc.Query {
		for _, v := range vals {
			if segmentSymbol.MatchString(v) {
				return v, true
			}
		}
	}
	return "", false
}
