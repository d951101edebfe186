package config

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestUnmarshal(t *testing.T) {
	type target struct {
		Bind    string        `mapstructure:"bind"`
		Timeout time.Duration `mapstructure:"timeout"`
		TrustIP net.IP        `mapstructure:"trustIp"`
	}

	cfg := map[string]any{
		"bind":    ":8080",
		"timeout": "30s",
		"trustIp": "127.0.0.1",
	}

	var v target
	if err := Unmarshal(cfg, &v); err != nil {
		t.Fatal(err)
	}

	if v.Bind != ":8080" {
		t.Errorf("unexpected bind %q", v.Bind)
	}
	if v.Timeout != 30*time.Second {
		t.Errorf("unexpected timeout %s", v.Timeout)
	}
	if !v.TrustIP.Equal(net.IPv4(127, 0, 0, 1)) {
		t.Errorf("unexpected trust ip %s", v.TrustIP)
	}
}

func TestNew_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := []byte("api:\n  bind: \":8080\"\ncache:\n  ttl: 5m\n")
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := New(path, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cfg.Close()

	data, err := cfg.Read()
	if err != nil {
		t.Fatal(err)
	}

	api, ok := data["api"].(map[string]any)
	if !ok {
		t.Fatalf("api section missing in %v", data)
	}
	if api["bind"] != ":8080" {
		t.Errorf("unexpected bind %v", api["bind"])
	}
}
