package taxonomy

import (
	"errors"
	"testing"
)

func TestFromCode_RoundTrip(t *testing.T) {
	for _, ct := range ClaimTypes {
		code := ct.Code()
		if code <= 0 {
			t.Fatalf("claim type %q has invalid code %d", ct, code)
		}

		got, err := FromCode(code)
		if err != nil {
			t.Fatalf("FromCode(%d) failed: %v", code, err)
		}
		if got != ct {
			t.Errorf("FromCode(%d) = %q, want %q", code, got, ct)
		}

		// Resolving the resolved value's own code must be stable.
		again, err := FromCode(got.Code())
		if err != nil {
			t.Fatalf("FromCode(%d) second pass failed: %v", got.Code(), err)
		}
		if again != got {
			t.Errorf("round trip for code %d not stable: %q != %q", code, again, got)
		}
	}
}

func TestFromCode_UnmappedCode(t *testing.T) {
	for _, code := range []int{0, -1, 1, 99999, 13720} {
		ct, err := FromCode(code)
		if err == nil {
			t.Fatalf("FromCode(%d) = %q, want unmapped-code error", code, ct)
		}

		var unmapped *UnmappedCodeError
		if !errors.As(err, &unmapped) {
			t.Fatalf("FromCode(%d) error type %T, want *UnmappedCodeError", code, err)
		}
		if unmapped.Code != code {
			t.Errorf("error carries code %d, want %d", unmapped.Code, code)
		}
		if ct != "" {
			t.Errorf("FromCode(%d) returned non-empty claim type %q on error", code, ct)
		}
	}
}

func TestClaimTypes_CodesUnique(t *testing.T) {
	seen := make(map[int]ClaimType, len(ClaimTypes))
	for _, ct := range ClaimTypes {
		if prev, dup := seen[ct.Code()]; dup {
			t.Errorf("code %d shared by %q and %q", ct.Code(), prev, ct)
		}
		seen[ct.Code()] = ct
	}
}

func TestClaimType_Description(t *testing.T) {
	ct, err := FromCode(13719)
	if err != nil {
		t.Fatalf("FromCode(13719): %v", err)
	}
	if ct.Description() != "FGTS" {
		t.Errorf("Description() = %q, want %q", ct.Description(), "FGTS")
	}
	if ct != "(13719) FGTS" {
		t.Errorf("packed value = %q", ct)
	}
}

func TestCodes_CoversTable(t *testing.T) {
	codes := Codes()
	if len(codes) != len(ClaimTypes) {
		t.Fatalf("Codes() returned %d entries, want %d", len(codes), len(ClaimTypes))
	}
	for _, code := range codes {
		if _, err := FromCode(code); err != nil {
			t.Errorf("Codes() entry %d not resolvable: %v", code, err)
		}
	}
}
