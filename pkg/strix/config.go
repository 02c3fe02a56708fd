package strix

import (
	"fmt"
	"math/big"
	"runtime"

	"github.com/cronokirby/strix/internal/strix/batch"
	"github.com/cronokirby/strix/internal/strix/circuit"
	"github.com/cronokirby/strix/internal/strix/core"
)

// Config represents configuration for a VM
type Config struct {
	// Field modulus as a decimal string
	FieldModulus string

	// Circuit mode: "prover" keeps witness values, "setup" only builds constraints
	Mode string

	// Maximum concurrent executions in ExecuteBatch
	Workers int

	// Number of decoded programs to cache
	CacheSize int

	// Maximum program length, 0 for no limit
	StepLimit int

	// Stop ExecuteBatch at the first failing job
	FailFast bool
}

// DefaultConfig returns a prover configuration over the Goldilocks field.
func DefaultConfig() *Config {
	return &Config{
		FieldModulus: core.GoldilocksModulus, // 2^64 - 2^32 + 1
		Mode:         circuit.Prover.String(),
		Workers:      runtime.GOMAXPROCS(0),
		CacheSize:    batch.DefaultCacheSize,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	modulus, ok := new(big.Int).SetString(c.FieldModulus, 10)
	if !ok {
		return fmt.Errorf("field modulus %q is not a decimal integer", c.FieldModulus)
	}
	if modulus.Cmp(big.NewInt(2)) < 0 {
		return fmt.Errorf("field modulus must be at least 2")
	}

	if _, err := circuit.ParseMode(c.Mode); err != nil {
		return err
	}

	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}

	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}

	if c.StepLimit < 0 {
		return fmt.Errorf("step limit must not be negative, got %d", c.StepLimit)
	}

	return nil
}

// WithFieldModulus sets the field modulus
func (c *Config) WithFieldModulus(modulus *big.Int) *Config {
	c.FieldModulus = modulus.String()
	return c
}

// WithMode sets the circuit mode
func (c *Config) WithMode(mode string) *Config {
	c.Mode = mode
	return c
}

// WithWorkers sets the batch concurrency
func (c *Config) WithWorkers(n int) *Config {
	c.Workers = n
	return c
}

// WithCacheSize sets the decode cache size
func (c *Config) WithCacheSize(n int) *Config {
	c.CacheSize = n
	return c
}

// WithStepLimit sets the maximum program length
func (c *Config) WithStepLimit(n int) *Config {
	c.StepLimit = n
	return c
}

// WithFailFast sets whether ExecuteBatch stops at the first failure
func (c *Config) WithFailFast(yes bool) *Config {
	c.FailFast = yes
	return c
}

// Clone returns a copy of the configuration
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
