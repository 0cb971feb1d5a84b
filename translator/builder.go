package translator

import (
	"math/rand"
	"time"

	"github.com/sarchlab/vmsim/mem/vm/replacement"
	"github.com/sarchlab/vmsim/sim/hooking"
)

// A Builder can build translation engines.
type Builder struct {
	config     Config
	randSource rand.Source
}

// MakeBuilder returns a Builder with a FIFO policy, a 16-bit virtual address
// space, and a 2-way TLB.
func MakeBuilder() Builder {
	return Builder{
		config: Config{
			Policy:           replacement.FIFO,
			VASWidth:         16,
			TLBAssociativity: 2,
		},
	}
}

// WithConfig replaces the whole configuration.
func (b Builder) WithConfig(c Config) Builder {
	b.config = c
	return b
}

// WithPolicy sets the page-replacement policy.
func (b Builder) WithPolicy(kind replacement.Kind) Builder {
	b.config.Policy = kind
	return b
}

// WithVASWidth sets the number of bits in a virtual address.
func (b Builder) WithVASWidth(bits int) Builder {
	b.config.VASWidth = bits
	return b
}

// WithTLBAssociativity sets the number of ways in each TLB set.
func (b Builder) WithTLBAssociativity(ways int) Builder {
	b.config.TLBAssociativity = ways
	return b
}

// WithRandSource sets the source used to generate random addresses. A source
// seeded with the current time is used if not set.
func (b Builder) WithRandSource(src rand.Source) Builder {
	b.randSource = src
	return b
}

// Build creates an engine. It fails if the configuration is invalid.
func (b Builder) Build() (*Engine, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	src := b.randSource
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}

	e := &Engine{
		HookableBase: hooking.NewHookableBase(),
		config:       b.config,
		rng:          rand.New(src),
	}
	e.Reset()

	return e, nil
}
