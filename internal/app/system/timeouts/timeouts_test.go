package timeouts

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	Reset()
	if got := Ping(); got != DefaultPing {
		t.Errorf("Ping() = %v, want %v", got, DefaultPing)
	}
	if got := Short(); got != DefaultShort {
		t.Errorf("Short() = %v, want %v", got, DefaultShort)
	}
	if got := Medium(); got != DefaultMedium {
		t.Errorf("Medium() = %v, want %v", got, DefaultMedium)
	}
	if got := Long(); got != DefaultLong {
		t.Errorf("Long() = %v, want %v", got, DefaultLong)
	}
	if got := Batch(); got != DefaultBatch {
		t.Errorf("Batch() = %v, want %v", got, DefaultBatch)
	}
}

func TestConfigurePartialOverride(t *testing.T) {
	defer Reset()

	Configure(Config{Short: 2 * time.Second, Batch: 90 * time.Second})

	if got := Short(); got != 2*time.Second {
		t.Errorf("Short() = %v, want 2s", got)
	}
	if got := Batch(); got != 90*time.Second {
		t.Errorf("Batch() = %v, want 90s", got)
	}
	// Zero fields keep their current values.
	if got := Medium(); got != DefaultMedium {
		t.Errorf("Medium() = %v, want %v", got, DefaultMedium)
	}
	if got := Long(); got != DefaultLong {
		t.Errorf("Long() = %v, want %v", got, DefaultLong)
	}
}
