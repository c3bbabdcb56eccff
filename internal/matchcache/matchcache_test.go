package matchcache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVerdictRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "matches.json")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if got := c.Verdict("tok1", "KX-A"); got != VerdictUnknown {
		t.Errorf("fresh verdict = %q, want unknown", got)
	}

	if err := c.Confirm("tok1", "KX-A"); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := c.Reject("tok2", "KX-B"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	// Reopen from disk: verdicts survive the process.
	c2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := c2.Verdict("tok1", "KX-A"); got != VerdictConfirmed {
		t.Errorf("verdict = %q, want confirmed", got)
	}
	if got := c2.Verdict("tok2", "KX-B"); got != VerdictRejected {
		t.Errorf("verdict = %q, want rejected", got)
	}
	if got := c2.Verdict("tok1", "KX-B"); got != VerdictUnknown {
		t.Errorf("cross-keyed verdict = %q, want unknown", got)
	}
}

func TestForget(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "matches.json")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Confirm("tok1", "KX-A"); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := c.Forget("tok1", "KX-A"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if got := c.Verdict("tok1", "KX-A"); got != VerdictUnknown {
		t.Errorf("verdict after forget = %q, want unknown", got)
	}
	if c.Len() != 0 {
		t.Errorf("len = %d, want 0", c.Len())
	}
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()

	c, err := Open(filepath.Join(t.TempDir(), "sub", "matches.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("len = %d, want 0 for missing file", c.Len())
	}
}

func TestOpenDiscardsUnknownVersion(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "matches.json")

	if err := os.WriteFile(path, []byte(`{"version":99,"entries":{"a|b":"confirmed"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := c.Verdict("a", "b"); got != VerdictUnknown {
		t.Errorf("verdict from stale format = %q, want unknown", got)
	}
}

func TestOpenCorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "matches.json")

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("Open succeeded on corrupt file")
	}
}
