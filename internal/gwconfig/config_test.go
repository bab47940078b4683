package gwconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
building_id: E1
dispatcher_ip: 10.0.0.1
key_file_path: /etc/liftmesh/keys.txt
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CarCount != DefaultCarCount {
		t.Errorf("got car_count %d, want default %d", cfg.CarCount, DefaultCarCount)
	}
	if cfg.ListenPort != DefaultListenPort {
		t.Errorf("got listen_port %d, want default %d", cfg.ListenPort, DefaultListenPort)
	}
}

func TestLoadRejectsMissingBuildingID(t *testing.T) {
	path := writeConfig(t, `
dispatcher_ip: 10.0.0.1
key_file_path: /etc/liftmesh/keys.txt
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing building_id")
	}
}

func TestLoadRejectsOutOfRangePort(t *testing.T) {
	path := writeConfig(t, `
building_id: E1
dispatcher_ip: 10.0.0.1
key_file_path: /etc/liftmesh/keys.txt
listen_port: 80
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for listen_port outside [1024, 65535]")
	}
}

func TestStructuralEqual(t *testing.T) {
	a := &Config{BuildingID: "E1", CarCount: 4}
	b := &Config{BuildingID: "E1", CarCount: 4, ListenPort: 9999}
	c := &Config{BuildingID: "E1", CarCount: 5}
	if !a.StructuralEqual(b) {
		t.Errorf("expected structurally equal configs to match")
	}
	if a.StructuralEqual(c) {
		t.Errorf("expected differing car_count to be structurally unequal")
	}
}
