// Package config holds the non-real-time tunables read once at controller
// construction, sourced through viper.
package config

import (
	"log/slog"
	"os"

	"github.com/spf13/viper"
)

// Keys are the viper keys every tunable is registered under.
// KeyWriterIdleSleep has a default but no reader: the file writer polls at
// the fixed filewriter.IdleSleep.
const (
	KeyRingSeconds     = "ring_seconds"
	KeyWriterIdleSleep = "writer_idle_sleep_ms"
	KeyDefaultVolume   = "default_volume"
	KeyDefaultMicGain  = "default_mic_gain"
	KeyDefaultBPM      = "default_bpm"
	KeyTimeSignature   = "time_signature"
	KeyLogLevel        = "log_level"
	KeyLogFile         = "log_file"
)

// SetDefaults registers the default value for every tunable. Called once
// before any config file is read, so every key resolves to something sane
// even with no config present.
func SetDefaults() {
	viper.SetDefault(KeyRingSeconds, 5.0)
	viper.SetDefault(KeyWriterIdleSleep, 1)
	viper.SetDefault(KeyDefaultVolume, 100)
	viper.SetDefault(KeyDefaultMicGain, 1.0)
	viper.SetDefault(KeyDefaultBPM, 120.0)
	viper.SetDefault(KeyTimeSignature, 4)
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyLogFile, "")
}

// LoadConfig reads an optional config file at path. A missing file is
// logged, not treated as fatal: the defaults registered by SetDefaults
// already cover every key.
func LoadConfig(path string) {
	if path == "" {
		return
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		slog.Warn("no config file loaded, using defaults", "path", path, "err", err)
	}
}

// RingSeconds returns the configured ring buffer capacity in seconds of
// stereo audio.
func RingSeconds() float64 { return viper.GetFloat64(KeyRingSeconds) }

// DefaultVolume returns the configured startup volume, 0..100.
func DefaultVolume() int { return viper.GetInt(KeyDefaultVolume) }

// DefaultMicGain returns the configured startup mic gain, 0.0..1.0.
func DefaultMicGain() float64 { return viper.GetFloat64(KeyDefaultMicGain) }

// DefaultBPM returns the configured startup tempo.
func DefaultBPM() float64 { return viper.GetFloat64(KeyDefaultBPM) }

// DefaultTimeSignature returns the configured startup time signature.
func DefaultTimeSignature() int { return viper.GetInt(KeyTimeSignature) }

// ConfigureDefaultLogger installs a slog.Logger on slog.Default() at the
// configured level, writing to the configured log file or stderr if none
// is set.
func ConfigureDefaultLogger() error {
	level := parseLevel(viper.GetString(KeyLogLevel))

	out := os.Stderr
	if path := viper.GetString(KeyLogFile); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		out = f
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
