package xferbuf

import (
	"errors"
	"fmt"

	"github.com/holmberd/go-xferbuf/internal/buffer"
)

type Config struct {
	NumStatic  int // Number of preallocated static buffers.
	StaticSize int // Capacity of each static buffer, in bytes. Must equal MaxBufSize.

	// MaxBufSize is the maximum size of any buffer, in bytes, static or dynamic.
	// A transfer keeps the same cap when its buffer migrates to static storage.
	//
	// A config with no static buffers and a zero MaxBufSize disables the manager:
	// it never hands out a buffer and is always empty.
	MaxBufSize int
}

func DefaultConfig() Config {
	return Config{
		NumStatic:  4,
		StaticSize: 512,
		MaxBufSize: 512,
	}
}

// isDisabled reports whether the config describes a manager that never buffers.
func (c Config) isDisabled() bool {
	return c.NumStatic == 0 && c.MaxBufSize == 0
}

func (c Config) Validate(pool buffer.BlockPooler) error {
	var errs []error
	if c.NumStatic < 0 {
		errs = append(errs, errors.New("invalid config: NumStatic cannot be negative"))
	}
	if c.MaxBufSize < 0 {
		errs = append(errs, errors.New("invalid config: MaxBufSize cannot be negative"))
	}
	if c.NumStatic > 0 && (c.StaticSize <= 0 || c.StaticSize != c.MaxBufSize) {
		errs = append(
			errs,
			fmt.Errorf("invalid config: StaticSize %d must be positive and equal to MaxBufSize %d", c.StaticSize, c.MaxBufSize),
		)
	}
	if c.MaxBufSize > 0 && pool.BlockSize() <= 0 {
		errs = append(errs, fmt.Errorf("invalid config: invalid pool block size %d", pool.BlockSize()))
	}
	return errors.Join(errs...)
}

type BlockPoolConfig struct {
	BlockSize int // Size of every block, in bytes.
	NumBlocks int // Number of blocks; the pool never grows beyond it.
}

func DefaultBlockPoolConfig() BlockPoolConfig {
	return BlockPoolConfig{
		BlockSize: 64,
		NumBlocks: 4 * buffer.KiB, // 256KB
	}
}

func (c BlockPoolConfig) Validate() error {
	var errs []error
	if c.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("invalid config: invalid block size %d", c.BlockSize))
	}
	if c.NumBlocks <= 0 {
		errs = append(errs, fmt.Errorf("invalid config: invalid number of blocks %d", c.NumBlocks))
	}
	return errors.Join(errs...)
}
