package timeouts_test

import (
	"testing"
	"time"

	"github.com/d0x2f/retro.tools-backend/internal/app/system/timeouts"
)

func TestConfigureOverridesAndReset(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Short: 42 * time.Second})
	if got := timeouts.Short(); got != 42*time.Second {
		t.Fatalf("Short(): got %v, want %v", got, 42*time.Second)
	}
	// Zero values leave the remaining timeouts untouched.
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Fatalf("Medium(): got %v, want %v", got, timeouts.DefaultMedium)
	}

	timeouts.Reset()
	if got := timeouts.Short(); got != timeouts.DefaultShort {
		t.Fatalf("Short() after reset: got %v, want %v", got, timeouts.DefaultShort)
	}
}
