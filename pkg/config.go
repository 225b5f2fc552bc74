package finddups

import (
	"fmt"
	"strings"

	"github.com/go-ini/ini"
)

// Config represents the finddups configuration
type Config struct {
	configPath string
	ini        *ini.File
}

// HashConfig represents hash algorithm configuration
type HashConfig struct {
	Default string // Default hash algorithm
}

// OutputConfig represents output format configuration
type OutputConfig struct {
	Format string // human, fdupes, json, yaml
	Color  string // auto, always, never
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // Default verbose level (0=quiet, 1=summary, 2=detailed, 3=trace)
	Debug string // Default debug flags (comma-separated)
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	HashWorkers int    // Number of concurrent hash workers (default: 4)
	HashBuffer  string // Slice size for interruptible hashing (default: "2MiB")
}

// FilterConfig represents path filtering configuration
type FilterConfig struct {
	ExcludeFrom string // File of exclude patterns, one regex per line
}

// AllConfig represents all configuration options
type AllConfig struct {
	Hash        *HashConfig
	Output      *OutputConfig
	Verbose     *VerboseConfig
	Performance *PerformanceConfig
	Filter      *FilterConfig
}

// NewDefaultConfig returns an in-memory configuration holding the defaults
func NewDefaultConfig() *Config {
	cfg := &Config{ini: ini.Empty()}
	if err := cfg.setDefaults(); err != nil {
		// Section and key creation only fails for empty names
		panic(err)
	}
	return cfg
}

// LoadConfig loads configuration from an INI file. Keys missing from the file
// keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	iniFile, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	return &Config{
		configPath: configPath,
		ini:        iniFile,
	}, nil
}

// Path returns the file the configuration was loaded from, if any
func (c *Config) Path() string {
	return c.configPath
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	defaults := []struct {
		section string
		key     string
		value   string
	}{
		{"filehash", "default", DefaultHashAlgorithm},
		{"output", "format", DefaultOutputFormat},
		{"output", "color", DefaultColorMode},
		{"verbose", "level", "0"},
		{"verbose", "debug", ""},
		{"performance", "hash_workers", fmt.Sprintf("%d", DefaultHashWorkers)},
		{"performance", "hash_buffer", DefaultHashBuffer},
		{"filter", "exclude_from", ""},
	}

	for _, d := range defaults {
		section, err := c.ini.NewSection(d.section)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", d.section, err)
		}
		if _, err := section.NewKey(d.key, d.value); err != nil {
			return fmt.Errorf("failed to set default %s.%s: %w", d.section, d.key, err)
		}
	}

	return nil
}

// GetHashConfig returns the hash configuration
func (c *Config) GetHashConfig() *HashConfig {
	hashConfig := &HashConfig{
		Default: DefaultHashAlgorithm,
	}

	if c.ini.HasSection("filehash") {
		section := c.ini.Section("filehash")
		if section.HasKey("default") {
			hashConfig.Default = section.Key("default").String()
		}
	}

	return hashConfig
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	outputConfig := &OutputConfig{
		Format: DefaultOutputFormat,
		Color:  DefaultColorMode,
	}

	if c.ini.HasSection("output") {
		section := c.ini.Section("output")
		if section.HasKey("format") {
			outputConfig.Format = section.Key("format").String()
		}
		if section.HasKey("color") {
			outputConfig.Color = section.Key("color").String()
		}
	}

	return outputConfig
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{}

	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
		if section.HasKey("debug") {
			verboseConfig.Debug = section.Key("debug").String()
		}
	}

	return verboseConfig
}

// GetPerformanceConfig returns the performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	performanceConfig := &PerformanceConfig{
		HashWorkers: DefaultHashWorkers,
		HashBuffer:  DefaultHashBuffer,
	}

	if c.ini.HasSection("performance") {
		section := c.ini.Section("performance")
		if section.HasKey("hash_workers") {
			if workers, err := section.Key("hash_workers").Int(); err == nil {
				performanceConfig.HashWorkers = workers
			}
		}
		if section.HasKey("hash_buffer") {
			if bufferSize := section.Key("hash_buffer").String(); bufferSize != "" {
				performanceConfig.HashBuffer = bufferSize
			}
		}
	}

	return performanceConfig
}

// GetFilterConfig returns the filter configuration
func (c *Config) GetFilterConfig() *FilterConfig {
	filterConfig := &FilterConfig{}

	if c.ini.HasSection("filter") {
		section := c.ini.Section("filter")
		if section.HasKey("exclude_from") {
			filterConfig.ExcludeFrom = section.Key("exclude_from").String()
		}
	}

	return filterConfig
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Hash:        c.GetHashConfig(),
		Output:      c.GetOutputConfig(),
		Verbose:     c.GetVerboseConfig(),
		Performance: c.GetPerformanceConfig(),
		Filter:      c.GetFilterConfig(),
	}
}

// HashBufferSize returns the configured hash buffer size in bytes
func (c *Config) HashBufferSize() (int, error) {
	return ParseHumanSize(c.GetPerformanceConfig().HashBuffer)
}

// ApplyOverrides applies command-line overrides to the configuration
// Accepts strings like "default:sha256", "format:json", "level:2", "debug:hash"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		var sectionName string
		switch key {
		case "default":
			sectionName = "filehash"
		case "format", "color":
			sectionName = "output"
		case "level", "debug":
			sectionName = "verbose"
		case "hash_workers", "hash_buffer":
			sectionName = "performance"
		case "exclude_from":
			sectionName = "filter"
		default:
			return fmt.Errorf("unsupported override key '%s' (supported: default, format, color, level, debug, hash_workers, hash_buffer, exclude_from)", key)
		}

		c.ini.Section(sectionName).Key(key).SetValue(value)
	}

	return nil
}

// Validate checks every configured value
func (c *Config) Validate() error {
	all := c.GetAllConfig()

	if err := ValidateHashAlgorithm(all.Hash.Default); err != nil {
		return err
	}
	if err := ValidateOutputFormat(all.Output.Format); err != nil {
		return err
	}
	if err := ValidateColorMode(all.Output.Color); err != nil {
		return err
	}
	if err := ValidateVerboseLevel(all.Verbose.Level); err != nil {
		return err
	}
	if err := ValidateHashWorkers(all.Performance.HashWorkers); err != nil {
		return err
	}
	if _, err := ParseHumanSize(all.Performance.HashBuffer); err != nil {
		return fmt.Errorf("invalid hash buffer: %w", err)
	}
	return nil
}

// ValidateHashAlgorithm validates that a hash algorithm is supported
func ValidateHashAlgorithm(algorithm string) error {
	_, err := GetHashAlgorithm(algorithm)
	return err
}

// ValidateOutputFormat validates that an output format is supported
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatHuman, FormatFdupes, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, fdupes, json, yaml)", format)
	}
}

// ValidateColorMode validates that a colour mode is supported
func ValidateColorMode(mode string) error {
	switch strings.ToLower(mode) {
	case ColorAuto, ColorAlways, ColorNever:
		return nil
	default:
		return fmt.Errorf("unsupported color mode: %s (supported: auto, always, never)", mode)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("invalid verbose level: %d (supported: 0-3)", level)
	}
	return nil
}

// ValidateHashWorkers validates that the hash worker count is reasonable
func ValidateHashWorkers(workers int) error {
	if workers < MinHashWorkers {
		return fmt.Errorf("hash workers must be at least %d, got: %d", MinHashWorkers, workers)
	}
	if workers > MaxHashWorkers {
		return fmt.Errorf("hash workers should not exceed %d, got: %d", MaxHashWorkers, workers)
	}
	return nil
}
