package services

import "testing"

func TestDeriveIdentifierIsDeterministic(t *testing.T) {
	first := DeriveIdentifier("activity-1", "Juan Dela Cruz", "juan@example.com")
	second := DeriveIdentifier("activity-1", "Juan Dela Cruz", "juan@example.com")
	if first != second {
		t.Fatalf("expected identical identifiers, got %q and %q", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(first))
	}
}

func TestDeriveIdentifierTrimsNameAndEmail(t *testing.T) {
	base := DeriveIdentifier("activity-1", "Juan Dela Cruz", "juan@example.com")
	padded := DeriveIdentifier("activity-1", "  Juan Dela Cruz  ", "\tjuan@example.com\n")
	if base != padded {
		t.Fatalf("expected whitespace-padded inputs to derive the same identifier")
	}
}

func TestDeriveIdentifierDistinguishesInputs(t *testing.T) {
	base := DeriveIdentifier("activity-1", "Juan Dela Cruz", "juan@example.com")
	cases := map[string]string{
		"activity": DeriveIdentifier("activity-2", "Juan Dela Cruz", "juan@example.com"),
		"name":     DeriveIdentifier("activity-1", "Maria Dela Cruz", "juan@example.com"),
		"email":    DeriveIdentifier("activity-1", "Juan Dela Cruz", "maria@example.com"),
	}
	for field, derived := range cases {
		if derived == base {
			t.Fatalf("expected changing %s to change the identifier", field)
		}
	}
}

func TestVerificationURL(t *testing.T) {
	url := VerificationURL("certs.example.org", "abc123")
	if url != "https://certs.example.org/certs/abc123" {
		t.Fatalf("unexpected verification url %q", url)
	}
	trimmed := VerificationURL("  certs.example.org ", "abc123")
	if trimmed != url {
		t.Fatalf("expected host to be trimmed, got %q", trimmed)
	}
}
