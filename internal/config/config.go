package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the fully resolved harness configuration.
type Config struct {
	TargetURL       string        `mapstructure:"target"`
	JSONOutput      bool          `mapstructure:"json_output"`
	OutputDir       string        `mapstructure:"output_dir"`
	Cooldown        time.Duration `mapstructure:"cooldown"`
	PrecheckTimeout time.Duration `mapstructure:"precheck_timeout"`
	SampleMemory    bool          `mapstructure:"sample_memory"`
	MaxInFlight     int           `mapstructure:"max_in_flight"`
	Rate            int           `mapstructure:"rate"`
	ProxyURL        string        `mapstructure:"proxy"`
	ProxyUser       string        `mapstructure:"proxy_user"`
	ProxyPass       string        `mapstructure:"proxy_pass"`
	Phases          []Phase       `mapstructure:"phases"`
	Tracing         TracingConfig `mapstructure:"tracing"`
	ConfigFile      string        `mapstructure:"-"`
}

// Phase describes one entry of the comparison plan.
type Phase struct {
	Implementation string        `mapstructure:"implementation"`
	Strategy       string        `mapstructure:"strategy"`
	Requests       int           `mapstructure:"requests"`
	Delay          time.Duration `mapstructure:"delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	TotalTimeout   time.Duration `mapstructure:"total_timeout"`
}

// TracingConfig configures optional OTLP span export.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Enabled reports whether span export has an endpoint to ship to, either
// from config or the standard OTLP environment variable.
func (t TracingConfig) Enabled() bool {
	return t.Endpoint != "" || os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

// DefaultPhases is the built-in comparison matrix used when no phase plan
// is configured: both client implementations under both exit policies,
// 50 requests of 500ms target delay each.
func DefaultPhases() []Phase {
	plan := make([]Phase, 0, 4)
	for _, impl := range []string{"pooled", "basic"} {
		for _, strategy := range []string{"select_all", "join_all"} {
			plan = append(plan, Phase{
				Implementation: impl,
				Strategy:       strategy,
				Requests:       50,
				Delay:          500 * time.Millisecond,
			})
		}
	}
	return plan
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.TargetURL) == "" {
		return fmt.Errorf("target URL is required (flag --target or %s)", EnvTargetURL)
	}
	if !strings.HasPrefix(c.TargetURL, "http://") && !strings.HasPrefix(c.TargetURL, "https://") {
		return fmt.Errorf("target URL %q must be http or https", c.TargetURL)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown cannot be negative")
	}
	if c.MaxInFlight < 0 {
		return fmt.Errorf("max_in_flight cannot be negative")
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate cannot be negative")
	}
	if len(c.Phases) == 0 {
		return fmt.Errorf("phase plan is empty")
	}
	for i, p := range c.Phases {
		if p.Implementation == "" {
			return fmt.Errorf("phase %d: implementation is required", i)
		}
		if p.Requests <= 0 {
			return fmt.Errorf("phase %d: requests must be positive", i)
		}
		switch p.Strategy {
		case "", "select_all", "join_all":
		default:
			return fmt.Errorf("phase %d: unknown strategy %q", i, p.Strategy)
		}
		if p.Delay < 0 {
			return fmt.Errorf("phase %d: delay cannot be negative", i)
		}
	}
	if s := c.Tracing.SampleRate; s < 0 || s > 1.0 {
		return fmt.Errorf("tracing sample_rate must be between 0.0 and 1.0, got %g", s)
	}
	return nil
}
