// ABOUTME: Heap configuration with defaults and TOML file loading
// ABOUTME: Covers initial size, hard limit, and threshold growth tuning

package heap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
)

// KiB returns n kibibytes.
func KiB(n int) int {
	return n << 10
}

// MiB returns n mebibytes.
func MiB(n int) int {
	return n << 20
}

// Config controls heap sizing and collection policy.
type Config struct {
	// InitialBytes is the arena size and first collection threshold
	InitialBytes int `toml:"initial_bytes"`

	// MaxHeapBytes caps arena growth; 0 means unlimited
	MaxHeapBytes int `toml:"max_heap_bytes"`

	// GrowThreshold is the fraction of the threshold that live bytes must
	// exceed after a collection before the threshold is raised
	GrowThreshold float64 `toml:"grow_threshold"`

	// GrowFactor multiplies live bytes to compute the new threshold
	GrowFactor float64 `toml:"grow_factor"`

	// Verify enables extra header checks during collection
	Verify bool `toml:"verify"`

	// Logger receives collection events; nil discards them
	Logger *slog.Logger `toml:"-"`
}

// DefaultConfig returns the configuration used by Default and New(Config{}).
func DefaultConfig() Config {
	return Config{
		InitialBytes:  MiB(1),
		MaxHeapBytes:  0,
		GrowThreshold: 0.75,
		GrowFactor:    2,
	}
}

// Validate checks the configuration for values the collector can't use.
func (c Config) Validate() error {
	var errs []error
	if c.InitialBytes <= 0 {
		errs = append(errs, fmt.Errorf("initial_bytes must be positive, got %d", c.InitialBytes))
	}
	if c.MaxHeapBytes < 0 {
		errs = append(errs, fmt.Errorf("max_heap_bytes must not be negative, got %d", c.MaxHeapBytes))
	}
	if c.MaxHeapBytes > 0 && c.MaxHeapBytes < c.InitialBytes {
		errs = append(errs, fmt.Errorf("max_heap_bytes %d is below initial_bytes %d", c.MaxHeapBytes, c.InitialBytes))
	}
	if c.GrowThreshold <= 0 || c.GrowThreshold > 1 {
		errs = append(errs, fmt.Errorf("grow_threshold must be in (0, 1], got %v", c.GrowThreshold))
	}
	if c.GrowFactor <= 1 {
		errs = append(errs, fmt.Errorf("grow_factor must be greater than 1, got %v", c.GrowFactor))
	}
	return errors.Join(errs...)
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InitialBytes == 0 {
		c.InitialBytes = d.InitialBytes
	}
	if c.GrowThreshold == 0 {
		c.GrowThreshold = d.GrowThreshold
	}
	if c.GrowFactor == 0 {
		c.GrowFactor = d.GrowFactor
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// LoadConfig reads a TOML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// WriteConfig encodes cfg as TOML.
func WriteConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
