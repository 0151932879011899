package bench

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tailscale/hujson"

	"github.com/mchalapuk/super-position-benchmark/pkg/ledger"
)

// Config holds all harness options.
type Config struct {
	// From config files (serialized)
	BlockSize      int           `json:"block_size"                toml:"block_size"`
	ChainLength    int           `json:"chain_length"              toml:"chain_length"`
	Keys           int           `json:"keys"                      toml:"keys"`
	Readers        int           `json:"readers"                   toml:"readers"`
	Repeat         int           `json:"repeat"                    toml:"repeat"`
	Mode           Mode          `json:"mode"                      toml:"mode"`
	Scheme         ledger.Scheme `json:"scheme"                    toml:"scheme"`
	PollInterval   Duration      `json:"poll_interval"             toml:"poll_interval"`
	DrainTimeout   Duration      `json:"drain_timeout"             toml:"drain_timeout"`
	StressDuration Duration      `json:"stress_duration"           toml:"stress_duration"`
	StressReaders  int           `json:"stress_readers"            toml:"stress_readers"`
	FinalVerify    bool          `json:"final_verify"              toml:"final_verify"`
	Seed           uint64        `json:"seed"                      toml:"seed"`
	Report         string        `json:"report,omitempty"          toml:"report"`
	MetricsFile    string        `json:"metrics_file,omitempty"    toml:"metrics_file"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd   string `json:"-" toml:"-"` // Absolute working directory (from -C flag or os.Getwd)
	ReportAbs      string `json:"-" toml:"-"` // Absolute report path, empty when no report is written
	MetricsFileAbs string `json:"-" toml:"-"` // Absolute metrics textfile path, empty when disabled

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-" toml:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BlockSize:      10,
		ChainLength:    100,
		Keys:           10,
		Readers:        1,
		Repeat:         1,
		Mode:           ModeAll,
		Scheme:         ledger.SchemeEd25519,
		StressDuration: Duration{2 * time.Second},
		StressReaders:  8,
	}
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".superposition.json"

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/superposition/config.json if set, otherwise
// ~/.config/superposition/config.json. Returns empty string if home directory
// cannot be determined.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "superposition", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "superposition", "config.json")
	}

	return ""
}

// Overrides holds values set on the command line. Nil fields are not set.
type Overrides struct {
	BlockSize      *int
	ChainLength    *int
	Keys           *int
	Readers        *int
	Repeat         *int
	Mode           *Mode
	Scheme         *ledger.Scheme
	PollInterval   *time.Duration
	DrainTimeout   *time.Duration
	StressDuration *time.Duration
	StressReaders  *int
	FinalVerify    *bool
	Seed           *uint64
	Report         *string
	MetricsFile    *string
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Overrides       Overrides         // command flags
	Env             map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/superposition/config.json or $XDG_CONFIG_HOME/superposition/config.json)
// 3. Project config file at default location (.superposition.json, if exists)
// 4. Explicit config file via configPath (if non-empty; .toml files are read as TOML)
// 5. CLI overrides.
//
// All paths in the returned Config are resolved to absolute paths.
func LoadConfig(input LoadConfigInput) (Config, error) {
	// Resolve effective working directory
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	// Global config
	globalPath := getGlobalConfigPath(input.Env)
	if globalPath != "" {
		loaded, err := loadConfigFile(globalPath, false, &cfg)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Sources.Global = globalPath
		}
	}

	// Project config, replaced by the explicit one when given
	projectPath, mustExist := filepath.Join(workDir, ConfigFileName), false
	if input.ConfigPath != "" {
		projectPath, mustExist = input.ConfigPath, true
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}

		// Check existence first to provide a clear "not found" error
		_, statErr := os.Stat(projectPath)
		if statErr != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, input.ConfigPath)
		}
	}

	loaded, err := loadConfigFile(projectPath, mustExist, &cfg)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg.Sources.Project = projectPath
	}

	applyOverrides(&cfg, input.Overrides)

	validateErr := validateConfig(cfg)
	if validateErr != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, validateErr)
	}

	// Resolve all paths to absolute
	cfg.EffectiveCwd = workDir
	cfg.ReportAbs = absPath(workDir, cfg.Report)
	cfg.MetricsFileAbs = absPath(workDir, cfg.MetricsFile)

	return cfg, nil
}

func absPath(workDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}

// loadConfigFile decodes path on top of cfg. If mustExist is false, a missing
// file leaves cfg untouched. Reports whether the file was loaded.
func loadConfigFile(path string, mustExist bool, cfg *Config) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return false, nil
		}

		if mustExist {
			return false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return false, nil
	}

	parsed, parseErr := parseConfig(data, strings.EqualFold(filepath.Ext(path), ".toml"), *cfg)
	if parseErr != nil {
		return false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	*cfg = parsed

	return true, nil
}

// parseConfig decodes data over base. Keys missing from data keep the value
// they have in base.
func parseConfig(data []byte, isTOML bool, base Config) (Config, error) {
	cfg := base

	if isTOML {
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TOML: %w", err)
		}

		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}

			sort.Strings(keys)

			return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}

		return cfg, nil
	}

	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	decodeErr := dec.Decode(&cfg)
	if decodeErr != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", decodeErr)
	}

	return cfg, nil
}

func applyOverrides(cfg *Config, o Overrides) {
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}

	setDuration := func(dst *Duration, src *time.Duration) {
		if src != nil {
			dst.Duration = *src
		}
	}

	setInt(&cfg.BlockSize, o.BlockSize)
	setInt(&cfg.ChainLength, o.ChainLength)
	setInt(&cfg.Keys, o.Keys)
	setInt(&cfg.Readers, o.Readers)
	setInt(&cfg.Repeat, o.Repeat)
	setInt(&cfg.StressReaders, o.StressReaders)
	setDuration(&cfg.PollInterval, o.PollInterval)
	setDuration(&cfg.DrainTimeout, o.DrainTimeout)
	setDuration(&cfg.StressDuration, o.StressDuration)

	if o.Mode != nil {
		cfg.Mode = *o.Mode
	}

	if o.Scheme != nil {
		cfg.Scheme = *o.Scheme
	}

	if o.FinalVerify != nil {
		cfg.FinalVerify = *o.FinalVerify
	}

	if o.Seed != nil {
		cfg.Seed = *o.Seed
	}

	if o.Report != nil {
		cfg.Report = *o.Report
	}

	if o.MetricsFile != nil {
		cfg.MetricsFile = *o.MetricsFile
	}
}

func validateConfig(cfg Config) error {
	positive := []struct {
		name  string
		value int
	}{
		{"block_size", cfg.BlockSize},
		{"chain_length", cfg.ChainLength},
		{"keys", cfg.Keys},
		{"readers", cfg.Readers},
		{"repeat", cfg.Repeat},
		{"stress_readers", cfg.StressReaders},
	}

	for _, f := range positive {
		if f.value <= 0 {
			return fmt.Errorf("%s must be > 0, got %d", f.name, f.value)
		}
	}

	if cfg.PollInterval.Duration < 0 {
		return fmt.Errorf("poll_interval must be >= 0, got %s", cfg.PollInterval)
	}

	if cfg.DrainTimeout.Duration < 0 {
		return fmt.Errorf("drain_timeout must be >= 0, got %s", cfg.DrainTimeout)
	}

	if cfg.StressDuration.Duration <= 0 {
		return fmt.Errorf("stress_duration must be > 0, got %s", cfg.StressDuration)
	}

	_, err := ParseMode(string(cfg.Mode))
	if err != nil {
		return fmt.Errorf("mode: %w", err)
	}

	if cfg.Scheme != ledger.SchemeEd25519 && cfg.Scheme != ledger.SchemeRSA {
		return fmt.Errorf("scheme: %w: %s", ledger.ErrUnknownScheme, cfg.Scheme)
	}

	return nil
}
