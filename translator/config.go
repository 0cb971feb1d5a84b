package translator

import (
	"errors"
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
)

// Fixed geometry of the simulated machine.
const (
	TLBCapacity        = 16
	PhysicalMemorySize = 64 * 1024
	MinVASWidth        = 12
	MaxVASWidth        = 25
	MaxAssociativity   = 16
)

var (
	// ErrInvalidConfig is wrapped by every configuration error.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidAddress is wrapped by every rejected virtual address.
	ErrInvalidAddress = errors.New("invalid address")
)

// Config holds the parameters that a simulated system is generated from.
type Config struct {
	Policy           replacement.Kind
	VASWidth         int
	TLBAssociativity int
}

// Validate checks that the configuration describes a system that can be
// simulated.
func (c Config) Validate() error {
	if c.Policy != replacement.FIFO && c.Policy != replacement.LRU {
		return fmt.Errorf("%w: %w: %s",
			ErrInvalidConfig, replacement.ErrUnknownPolicy, c.Policy)
	}

	if c.VASWidth < MinVASWidth || c.VASWidth > MaxVASWidth {
		return fmt.Errorf(
			"%w: virtual address width must be between %d and %d bits, got %d",
			ErrInvalidConfig, MinVASWidth, MaxVASWidth, c.VASWidth)
	}

	a := c.TLBAssociativity
	if a <= 0 || a > MaxAssociativity || a&(a-1) != 0 {
		return fmt.Errorf(
			"%w: TLB associativity must be a power of 2 no larger than %d, got %d",
			ErrInvalidConfig, MaxAssociativity, a)
	}

	return nil
}

// NumPages returns the number of virtual pages.
func (c Config) NumPages() int {
	return 1 << (c.VASWidth - vm.Log2PageSize)
}

// NumFrames returns the number of frames in physical memory.
func (c Config) NumFrames() int {
	return int(PhysicalMemorySize / vm.PageSize)
}

// NumTLBSets returns the number of sets in the TLB.
func (c Config) NumTLBSets() int {
	return TLBCapacity / c.TLBAssociativity
}

// AddressSpaceSize returns the number of addressable bytes.
func (c Config) AddressSpaceSize() uint64 {
	return 1 << c.VASWidth
}
