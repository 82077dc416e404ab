package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLevelByEnvironment(t *testing.T) {
	t.Setenv("ENV", "development")
	if got := New().GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("development level = %s, want debug", got)
	}

	t.Setenv("ENV", "production")
	if got := New().GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("production level = %s, want info", got)
	}
}
