package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestContractTypeSuffix(t *testing.T) {
	if got := ContractCall.Suffix(); got != "C" {
		t.Errorf("ContractCall.Suffix() = %q, want %q", got, "C")
	}
	if got := ContractPut.Suffix(); got != "P" {
		t.Errorf("ContractPut.Suffix() = %q, want %q", got, "P")
	}
}

func TestParseContractType(t *testing.T) {
	cases := []struct {
		in   string
		want ContractType
	}{
		{"put", ContractPut},
		{"call", ContractCall},
		{"", ContractCall},
		{"debit", ContractCall},
	}
	for _, c := range cases {
		if got := ParseContractType(c.in); got != c.want {
			t.Errorf("ParseContractType(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolutionError(t *testing.T) {
	err := &ResolutionError{Candidate: "credit-spread"}
	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatal("errors.As failed to match ResolutionError")
	}
	if re.Candidate != "credit-spread" {
		t.Errorf("Candidate = %q, want %q", re.Candidate, "credit-spread")
	}

	// The empty-candidate message must still be descriptive.
	if (&ResolutionError{}).Error() == "" {
		t.Error("empty ResolutionError produced empty message")
	}
}

func TestFetchErrorUnwrap(t *testing.T) {
	inner := ErrNotFound
	err := &FetchError{Ticker: "SPY", Status: 404, Err: fmt.Errorf("wrapped: %w", inner)}
	if !errors.Is(err, ErrNotFound) {
		t.Error("FetchError should unwrap to ErrNotFound")
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatal("errors.As failed to match FetchError")
	}
	if fe.Ticker != "SPY" || fe.Status != 404 {
		t.Errorf("FetchError fields = %q/%d, want SPY/404", fe.Ticker, fe.Status)
	}
}
