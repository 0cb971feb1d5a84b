package tlb

import "fmt"

// A Builder can build TLBs
type Builder struct {
	numEntries int
	numWays    int
}

// MakeBuilder returns a Builder
func MakeBuilder() Builder {
	return Builder{
		numEntries: 16,
		numWays:    2,
	}
}

// WithNumEntries sets the total number of entries in the TLB.
func (b Builder) WithNumEntries(n int) Builder {
	b.numEntries = n
	return b
}

// WithNumWays sets the number of ways in a TLB. Set this field to the number
// of entries for fully associative TLBs.
func (b Builder) WithNumWays(n int) Builder {
	b.numWays = n
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.numWays <= 0 || b.numEntries <= 0 {
		panic(fmt.Sprintf("invalid TLB geometry: %d entries, %d ways",
			b.numEntries, b.numWays))
	}

	if b.numEntries%b.numWays != 0 {
		panic(fmt.Sprintf("%d entries cannot be divided into %d ways",
			b.numEntries, b.numWays))
	}
}

// Build creates a new TLB with all entries invalid.
func (b Builder) Build() *TLB {
	b.parametersMustBeValid()

	t := &TLB{
		numSets: b.numEntries / b.numWays,
		numWays: b.numWays,
	}
	t.Reset()

	return t
}
