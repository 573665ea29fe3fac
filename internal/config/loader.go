package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvTargetURL overrides the target base URL when no flag is given.
// EnvTargetURLLegacy is honored for compatibility with older run scripts.
const (
	EnvTargetURL       = "BENCHRACE_TARGET_URL"
	EnvTargetURLLegacy = "HTTPBIN_URL"
)

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// Loader handles loading configuration from files, environment, and
// command-line arguments. Precedence: flags > config file > environment >
// defaults.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and an optional config file into a
// Config.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	cfg := &Config{
		Cooldown:        10 * time.Second,
		PrecheckTimeout: 5 * time.Second,
		SampleMemory:    true,
		ConfigFile:      flagSet.Lookup("config").Value.String(),
	}

	if env := os.Getenv(EnvTargetURL); env != "" {
		cfg.TargetURL = env
	} else if env := os.Getenv(EnvTargetURLLegacy); env != "" {
		cfg.TargetURL = env
	}

	if cfg.ConfigFile != "" {
		v := viper.New()
		v.SetConfigFile(cfg.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", cfg.ConfigFile, err)
		}
	}

	if len(cfg.Phases) == 0 {
		cfg.Phases = DefaultPhases()
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "benchrace",
		Short:         "Comparative HTTP client load benchmark",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.String("config", "", "Path to config file (yaml or json)")
	flags.String("target", "", "Target service base URL")
	flags.Int("requests", 0, "Override request count for every phase")
	flags.Duration("delay", 0, "Override target-side delay for every phase")
	flags.Duration("cooldown", 0, "Idle interval between phases")
	flags.Bool("json", false, "Emit the report as JSON on stdout")
	flags.String("output-dir", "", "Directory for the report artifact")
	flags.Bool("no-memory", false, "Disable process memory sampling")
	flags.Int("max-in-flight", 0, "Cap concurrent dispatches within a phase")
	flags.Int("rate", 0, "Dispatch pacing in requests per second")
	flags.String("proxy", "", "Proxy URL for client transports")
	flags.BoolP("help", "h", false, "Show help")

	return cmd
}

func applyFlagOverrides(cfg *Config, flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "target":
			cfg.TargetURL, err = flags.GetString("target")
		case "requests":
			var n int
			if n, err = flags.GetInt("requests"); err == nil {
				for i := range cfg.Phases {
					cfg.Phases[i].Requests = n
				}
			}
		case "delay":
			var d time.Duration
			if d, err = flags.GetDuration("delay"); err == nil {
				for i := range cfg.Phases {
					cfg.Phases[i].Delay = d
				}
			}
		case "cooldown":
			cfg.Cooldown, err = flags.GetDuration("cooldown")
		case "json":
			cfg.JSONOutput, err = flags.GetBool("json")
		case "output-dir":
			cfg.OutputDir, err = flags.GetString("output-dir")
		case "no-memory":
			var disabled bool
			if disabled, err = flags.GetBool("no-memory"); err == nil && disabled {
				cfg.SampleMemory = false
			}
		case "max-in-flight":
			cfg.MaxInFlight, err = flags.GetInt("max-in-flight")
		case "rate":
			cfg.Rate, err = flags.GetInt("rate")
		case "proxy":
			cfg.ProxyURL, err = flags.GetString("proxy")
		}
	})
	return err
}

func displayHelp(cmd *cobra.Command) {
	fmt.Fprintf(os.Stdout, "%s\n\n", cmd.Short)
	fmt.Fprintln(os.Stdout, "Flags:")
	fmt.Fprint(os.Stdout, cmd.Flags().FlagUsages())
}
