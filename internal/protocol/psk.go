package protocol

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// KeyFile is a parsed PSK key pool: a newline-delimited list of
// hex-encoded keys (SPEC_FULL.md §14 records this format decision; blank
// lines and lines starting with '#' are skipped).
type KeyFile struct {
	keys [][]byte
}

// LoadKeyFile reads and decodes path.
func LoadKeyFile(path string) (*KeyFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("protocol: open key file: %w", err)
	}
	defer f.Close()

	var keys [][]byte
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b, err := hex.DecodeString(line)
		if err != nil {
			return nil, fmt.Errorf("protocol: decode key line %q: %w", line, err)
		}
		keys = append(keys, b)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("protocol: scan key file: %w", err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("protocol: key file %s has no entries", path)
	}
	return &KeyFile{keys: keys}, nil
}

// Len returns the number of keys in the pool.
func (k *KeyFile) Len() int { return len(k.keys) }

// Lookup derives the key for identity using the polynomial (×31) hash
// over identity bytes, modulo the number of entries — the deterministic
// mapping spec §6 requires both tiers to reproduce identically.
func (k *KeyFile) Lookup(identity string) []byte {
	idx := PSKHashIndex(identity, len(k.keys))
	return k.keys[idx]
}

// PSKHashIndex computes the polynomial hash (multiplier 31) over identity
// and reduces it modulo n. Exported so both the gateway's session manager
// and the dispatcher's PSK callback derive the identical index from the
// identical identity string.
func PSKHashIndex(identity string, n int) int {
	if n <= 0 {
		return 0
	}
	var h uint64
	for i := 0; i < len(identity); i++ {
		h = h*31 + uint64(identity[i])
	}
	return int(h % uint64(n))
}
