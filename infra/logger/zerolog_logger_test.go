package logger

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestZerologLoggerMethods(t *testing.T) {
	os.Setenv("APP_ENV", "dev")
	defer os.Unsetenv("APP_ENV")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": "v"})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestResolveLevelFromEnv(t *testing.T) {
	os.Setenv("OVMS_LOG_LEVEL", "warn")
	defer os.Unsetenv("OVMS_LOG_LEVEL")
	if lvl := resolveLevel(""); lvl != zerolog.WarnLevel {
		t.Errorf("level: %s", lvl)
	}
	// Garbage falls back to the environment default.
	os.Setenv("OVMS_LOG_LEVEL", "shouting")
	if lvl := resolveLevel("dev"); lvl != zerolog.DebugLevel {
		t.Errorf("fallback level: %s", lvl)
	}
}

func TestResolveLevelDefaults(t *testing.T) {
	os.Unsetenv("OVMS_LOG_LEVEL")
	if lvl := resolveLevel("dev"); lvl != zerolog.DebugLevel {
		t.Errorf("dev level: %s", lvl)
	}
	if lvl := resolveLevel(""); lvl != zerolog.InfoLevel {
		t.Errorf("default level: %s", lvl)
	}
}
