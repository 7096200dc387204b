package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transport != TransportSerial {
		t.Errorf("transport = %q, want %q", cfg.Transport, TransportSerial)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	want := Config{Transport: TransportBLE, BLEAddress: "AA:BB:CC:DD:EE:FF", DataDir: "/var/lib/meshcored", ListenAddr: ":9090"}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.SerialPort = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing serial_port")
	}
	cfg.SerialPort = "/dev/ttyUSB0"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
