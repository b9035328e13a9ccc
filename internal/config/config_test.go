package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func resetViper() {
	viper.Reset()
	SetDefaults()
}

func TestDefaultsAreRegistered(t *testing.T) {
	resetViper()
	if got := RingSeconds(); got != 5.0 {
		t.Fatalf("RingSeconds() = %v, want 5.0", got)
	}
	if got := DefaultVolume(); got != 100 {
		t.Fatalf("DefaultVolume() = %v, want 100", got)
	}
	if got := DefaultTimeSignature(); got != 4 {
		t.Fatalf("DefaultTimeSignature() = %v, want 4", got)
	}
}

func TestLoadConfigMissingFileFallsBackToDefaults(t *testing.T) {
	resetViper()
	LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if got := DefaultBPM(); got != 120.0 {
		t.Fatalf("DefaultBPM() = %v, want 120.0 after missing config file", got)
	}
}

func TestLoadConfigEmptyPathIsNoop(t *testing.T) {
	resetViper()
	LoadConfig("")
	if got := DefaultMicGain(); got != 1.0 {
		t.Fatalf("DefaultMicGain() = %v, want 1.0", got)
	}
}
