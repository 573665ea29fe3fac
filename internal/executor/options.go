package executor

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/benchrace/benchrace/internal/outcome"
	"github.com/benchrace/benchrace/internal/reqspec"
)

// Mode selects how the executor resolves a batch against its aggregate
// deadline.
type Mode string

const (
	// SelectAll returns partial results: completed outcomes are kept and
	// stragglers are cancelled and failed individually.
	SelectAll Mode = "select_all"

	// JoinAll waits for the whole batch; if the deadline fires first, every
	// result is discarded and replaced with a failure.
	JoinAll Mode = "join_all"
)

// ParseMode maps a configuration string to a Mode, defaulting to SelectAll.
func ParseMode(s string) Mode {
	if Mode(s) == JoinAll {
		return JoinAll
	}
	return SelectAll
}

// Client is the client-under-test capability: dispatch one spec and report
// its raw outcome. Implementations must honor context cancellation but are
// not required to release underlying resources immediately.
type Client interface {
	Dispatch(ctx context.Context, spec reqspec.Spec) outcome.Raw
}

// Options configure the Executor.
type Options struct {
	Mode           Mode          // exit policy (default SelectAll)
	TotalTimeout   time.Duration // aggregate deadline for the batch (0 means none)
	MaxInFlight    int           // in-flight dispatch cap (0 means batch size)
	RatePerSecond  int           // dispatch pacing (0 means unlimited)
	Client         Client        // client under test (required)
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Mode != JoinAll {
		o.Mode = SelectAll
	}
	if o.MaxInFlight < 0 {
		o.MaxInFlight = 0
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing across workers.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
