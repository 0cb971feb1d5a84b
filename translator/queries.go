package translator

import (
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
)

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.config
}

// State returns the state that the next step will run.
func (e *Engine) State() State {
	return e.state
}

// Done tells if every address of the sequence has been translated.
func (e *Engine) Done() bool {
	return e.current >= len(e.addresses)
}

// CurrentAddressIndex returns the index of the address in flight. It equals
// the length of the sequence when the sequence is exhausted.
func (e *Engine) CurrentAddressIndex() int {
	return e.current
}

// AddressSequence returns the addresses with the one in flight marked.
func (e *Engine) AddressSequence() []SequenceEntry {
	entries := make([]SequenceEntry, len(e.addresses))
	for i, addr := range e.addresses {
		entries[i] = SequenceEntry{Address: addr, Current: i == e.current}
	}

	return entries
}

// PageTable returns all the page table entries.
func (e *Engine) PageTable() []vm.Page {
	return e.pageTable.Pages()
}

// TLBSlots returns all the TLB slots ordered by global index.
func (e *Engine) TLBSlots() []tlb.Slot {
	return e.tlb.Slots()
}

// NumTLBWays returns the associativity of the TLB.
func (e *Engine) NumTLBWays() int {
	return e.tlb.NumWays()
}

// FrameOccupancy returns which frames hold a page.
func (e *Engine) FrameOccupancy() []bool {
	return e.frames.Occupancy()
}

// NumFrames returns the number of frames in physical memory.
func (e *Engine) NumFrames() int {
	return e.frames.NumFrames()
}

// ResidentPages returns the pages tracked by the replacement policy, the next
// victim first.
func (e *Engine) ResidentPages() []uint64 {
	return e.policy.Tracked()
}

// Stats returns the hit and miss counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Highlights returns the current color of every highlighted entry.
func (e *Engine) Highlights() map[Table]map[int]Color {
	return e.highlights.Snapshot()
}

// Color returns the current color of one entry.
func (e *Engine) Color(table Table, index int) Color {
	return e.highlights.Color(table, index)
}

// ConsumeHighlightChanges returns the highlight changes since the last call.
func (e *Engine) ConsumeHighlightChanges() []HighlightChange {
	return e.highlights.Consume()
}

// Messages returns the narration of the address in flight, or of the last
// translated address.
func (e *Engine) Messages() []string {
	messages := make([]string, len(e.messages))
	copy(messages, e.messages)

	return messages
}
