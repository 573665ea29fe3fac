package cooldown_test

import (
	"testing"
	"time"

	"github.com/benchrace/benchrace/internal/cooldown"
)

func TestBarrierWaitsConfiguredDuration(t *testing.T) {
	start := time.Now()
	cooldown.Barrier{Duration: 50 * time.Millisecond}.Wait()
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("barrier returned early after %s", elapsed)
	}
}

func TestZeroBarrierIsNoOp(t *testing.T) {
	start := time.Now()
	cooldown.Barrier{}.Wait()
	cooldown.Barrier{Duration: -time.Second}.Wait()
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Fatalf("zero barrier slept %s", elapsed)
	}
}
