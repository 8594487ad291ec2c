package services

import (
	"strings"
	"testing"
)

func TestGenerateReference(t *testing.T) {
	ref := GenerateReference("GH")
	if !strings.HasPrefix(ref, "GH") {
		t.Errorf("reference %q missing prefix", ref)
	}
	if ref != strings.ToUpper(ref) {
		t.Errorf("reference %q is not upper-cased", ref)
	}

	// Statistical distinctness, not a uniqueness guarantee.
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		r := GenerateReference("GH")
		if seen[r] {
			t.Fatalf("duplicate reference after %d draws: %s", i, r)
		}
		seen[r] = true
	}
}

func TestNewTransactionID(t *testing.T) {
	a, b := NewTransactionID(), NewTransactionID()
	if !strings.HasPrefix(a, "TXN-") {
		t.Errorf("transaction id %q missing TXN- prefix", a)
	}
	if a == b {
		t.Errorf("consecutive transaction ids collided: %s", a)
	}
}
