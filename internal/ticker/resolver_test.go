package ticker

import (
	"errors"
	"testing"

	"spreadview/internal/domain"
)

func TestResolveSavedSymbol(t *testing.T) {
	got, err := Resolve(Record{Symbol: "spy"}, Location{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "SPY" {
		t.Errorf("Resolve = %q, want %q", got, "SPY")
	}
}

func TestResolveLiveTicker(t *testing.T) {
	got, err := Resolve(Record{Ticker: "aapl"}, Location{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "AAPL" {
		t.Errorf("Resolve = %q, want %q", got, "AAPL")
	}
}

func TestResolveContractSymbol(t *testing.T) {
	got, err := Resolve(Record{SellContractSymbol: "TSLA250725C00290000"}, Location{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "TSLA" {
		t.Errorf("Resolve = %q, want %q", got, "TSLA")
	}
}

func TestResolveBuyContractFallback(t *testing.T) {
	rec := Record{BuyContractSymbol: "NVDA250801P00120000"}
	got, err := Resolve(rec, Location{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "NVDA" {
		t.Errorf("Resolve = %q, want %q", got, "NVDA")
	}
}

func TestResolveFromLocationPath(t *testing.T) {
	loc := ParseLocation("/credit-spread/AAPL?foo=1")
	got, err := Resolve(Record{}, loc)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "AAPL" {
		t.Errorf("Resolve = %q, want %q", got, "AAPL")
	}
}

func TestResolveFromLocationQuery(t *testing.T) {
	loc := ParseLocation("/spreads?symbol=MSFT&trend=uptrend")
	got, err := Resolve(Record{}, loc)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "MSFT" {
		t.Errorf("Resolve = %q, want %q", got, "MSFT")
	}
}

func TestResolveFailure(t *testing.T) {
	_, err := Resolve(Record{}, ParseLocation("/x"))
	if err == nil {
		t.Fatal("Resolve should fail with no usable source")
	}
	var re *domain.ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want ResolutionError", err)
	}
}

func TestResolveFailureKeepsCandidate(t *testing.T) {
	// An invalid direct field is the attempted candidate shown for diagnosis.
	_, err := Resolve(Record{Symbol: "TOOLONG1"}, Location{})
	var re *domain.ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want ResolutionError", err)
	}
	if re.Candidate != "TOOLONG1" {
		t.Errorf("Candidate = %q, want %q", re.Candidate, "TOOLONG1")
	}
}

func TestResolveOrderPrefersRecordOverLocation(t *testing.T) {
	loc := ParseLocation("/credit-spread/AAPL")
	got, err := Resolve(Record{Symbol: "TSLA"}, loc)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "TSLA" {
		t.Errorf("Resolve = %q, want record field to win over location", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		valid bool
	}{
		{" qqq ", "QQQ", true},
		{"BRK", "BRK", true},
		{"", "", false},
		{"SPX500", "", false},
		{"AB1", "", false},
		{"-", "", false},
	}
	for _, c := range cases {
		got, ok := Validate(c.in)
		if ok != c.valid || got != c.want {
			t.Errorf("Validate(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.valid)
		}
	}
}
