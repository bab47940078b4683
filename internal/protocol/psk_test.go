package protocol

import (
	"os"
	"path/filepath"
	"testing"
)

func writeKeyFile(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.txt")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	return path
}

func TestLoadKeyFileSkipsCommentsAndBlanks(t *testing.T) {
	path := writeKeyFile(t, "# comment", "", "aabbcc", "ddeeff")
	kf, err := LoadKeyFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kf.Len() != 2 {
		t.Fatalf("got %d keys, want 2", kf.Len())
	}
}

func TestLoadKeyFileRejectsEmptyPool(t *testing.T) {
	path := writeKeyFile(t, "# nothing but comments")
	if _, err := LoadKeyFile(path); err == nil {
		t.Fatalf("expected error for empty key pool")
	}
}

func TestLoadKeyFileRejectsBadHex(t *testing.T) {
	path := writeKeyFile(t, "not-hex")
	if _, err := LoadKeyFile(path); err == nil {
		t.Fatalf("expected error for invalid hex")
	}
}

func TestLookupIsDeterministic(t *testing.T) {
	path := writeKeyFile(t, "aabbcc", "ddeeff", "112233")
	kf, err := LoadKeyFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	identity := "Gateway_Client_1234_1700000000"
	a := kf.Lookup(identity)
	b := kf.Lookup(identity)
	if string(a) != string(b) {
		t.Fatalf("lookup not deterministic for the same identity")
	}
}

func TestPSKHashIndexWithinBounds(t *testing.T) {
	for _, n := range []int{1, 2, 16} {
		idx := PSKHashIndex("Gateway_Client_1_2", n)
		if idx < 0 || idx >= n {
			t.Errorf("n=%d: got index %d out of bounds", n, idx)
		}
	}
}
