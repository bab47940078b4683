package dspconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "dispatcher.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "key_file_path: /etc/liftmesh/keys.txt\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("got listen_addr %q, want default %q", cfg.ListenAddr, DefaultListenAddr)
	}
}

func TestLoadRejectsMissingKeyFile(t *testing.T) {
	path := writeConfig(t, "listen_addr: 0.0.0.0:5684\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing key_file_path")
	}
}
