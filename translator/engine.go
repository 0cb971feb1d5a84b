package translator

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
	"github.com/sarchlab/vmsim/sim/hooking"
)

// Hook positions triggered by the engine. The item of the hook context is the
// StepReport of the step.
var (
	HookPosStep        = &hooking.HookPos{Name: "Step"}
	HookPosEviction    = &hooking.HookPos{Name: "Eviction"}
	HookPosAddressDone = &hooking.HookPos{Name: "AddressDone"}
)

// A StepReport describes one step of the engine.
type StepReport struct {
	// Complete is true if there was no address left to translate. Nothing
	// else in the report is meaningful in that case.
	Complete bool

	Index   int
	Address uint64
	VPN     uint64
	Offset  uint64
	From    State
	To      State
	Event   Event

	// Frame is the frame that the step resolved, installed, or freed. The
	// last step of an address reports the frame the address translated to.
	Frame vm.FrameID

	// TLBIndex is the global index of the TLB slot that the step hit,
	// filled, or invalidated; -1 if none.
	TLBIndex int

	Evicted    bool
	EvictedVPN uint64
}

// A SequenceEntry is one address of the address sequence.
type SequenceEntry struct {
	Address uint64
	Current bool
}

type pendingLookup struct {
	fault bool
	frame vm.FrameID
}

// Engine translates virtual addresses one step at a time through a TLB and a
// page table. It is not safe for concurrent use.
type Engine struct {
	*hooking.HookableBase

	config Config
	rng    *rand.Rand

	pageTable *vm.PageTable
	frames    *vm.FrameTable
	tlb       *tlb.TLB
	policy    replacement.Policy

	addresses []uint64
	current   int
	state     State
	pending   pendingLookup

	stats      Stats
	highlights *Highlights
	messages   []string
}

// Reset discards all the state of the engine, including the address sequence,
// and rebuilds it from the configuration. Hooks stay registered.
func (e *Engine) Reset() {
	e.pageTable = vm.NewPageTable(e.config.NumPages())
	e.frames = vm.NewFrameTable(e.config.NumFrames())
	e.tlb = tlb.MakeBuilder().
		WithNumEntries(TLBCapacity).
		WithNumWays(e.config.TLBAssociativity).
		Build()
	e.policy = replacement.New(e.config.Policy)

	e.addresses = nil
	e.current = 0
	e.state = StateDecode
	e.pending = pendingLookup{}

	e.stats = Stats{}
	e.highlights = NewHighlights()
	e.messages = nil
}

// AddAddress appends a hexadecimal virtual address to the sequence.
func (e *Engine) AddAddress(hex string) error {
	addr, err := e.parseAddress(hex)
	if err != nil {
		return err
	}

	e.addresses = append(e.addresses, addr)

	return nil
}

// SetAddressSequence replaces the whole sequence and rewinds the cursor. The
// sequence is left unchanged if any of the addresses is invalid.
func (e *Engine) SetAddressSequence(hexes []string) error {
	addresses := make([]uint64, 0, len(hexes))

	for _, h := range hexes {
		addr, err := e.parseAddress(h)
		if err != nil {
			return err
		}

		addresses = append(addresses, addr)
	}

	e.addresses = addresses
	e.current = 0
	e.state = StateDecode

	return nil
}

// GenerateRandomAddress appends a uniformly distributed address to the
// sequence and returns it.
func (e *Engine) GenerateRandomAddress() uint64 {
	addr := uint64(e.rng.Int63n(int64(e.config.AddressSpaceSize())))
	e.addresses = append(e.addresses, addr)

	return addr
}

// GenerateRandomAddresses appends n random addresses.
func (e *Engine) GenerateRandomAddresses(n int) []uint64 {
	addresses := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		addresses = append(addresses, e.GenerateRandomAddress())
	}

	return addresses
}

func (e *Engine) parseAddress(s string) (uint64, error) {
	digits := strings.TrimSpace(s)
	digits = strings.TrimPrefix(digits, "0x")
	digits = strings.TrimPrefix(digits, "0X")

	if digits == "" {
		return 0, fmt.Errorf("%w: %q is empty", ErrInvalidAddress, s)
	}

	addr, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a hexadecimal number",
			ErrInvalidAddress, s)
	}

	if addr >= e.config.AddressSpaceSize() {
		return 0, fmt.Errorf("%w: 0x%X does not fit in %d bits",
			ErrInvalidAddress, addr, e.config.VASWidth)
	}

	return addr, nil
}

// ProcessNextStep moves the address in flight through exactly one state
// transition.
func (e *Engine) ProcessNextStep() StepReport {
	if e.Done() {
		return StepReport{Complete: true, Frame: vm.Unmapped, TLBIndex: -1}
	}

	addr := e.addresses[e.current]
	vpn, offset := vm.Decode(addr)

	e.highlights.Fade()

	if e.state == StateDecode {
		e.messages = nil
	} else {
		e.narrate("-----")
	}

	report := StepReport{
		Index:    e.current,
		Address:  addr,
		VPN:      vpn,
		Offset:   offset,
		From:     e.state,
		Frame:    vm.Unmapped,
		TLBIndex: -1,
	}

	switch e.state {
	case StateDecode:
		e.lookupTLB(&report)
	case StatePageTableCheck:
		e.lookupPageTable(&report)
	case StateInstall:
		e.install(&report)
	case StateFinalize:
		e.finalize(&report)
	}

	e.state = transition(report.From, report.Event)
	report.To = e.state

	e.publish(report)

	return report
}

// ProcessNextAddress steps until the address in flight is settled. It returns
// the report of every step taken.
func (e *Engine) ProcessNextAddress() []StepReport {
	if e.Done() {
		return []StepReport{e.ProcessNextStep()}
	}

	var reports []StepReport

	start := e.current
	for e.current == start {
		reports = append(reports, e.ProcessNextStep())
	}

	return reports
}

func (e *Engine) publish(r StepReport) {
	e.InvokeHook(hooking.HookCtx{Domain: e, Pos: HookPosStep, Item: r})

	switch r.Event {
	case EventPageEvicted:
		e.InvokeHook(hooking.HookCtx{Domain: e, Pos: HookPosEviction, Item: r})
	case EventAddressDone:
		e.InvokeHook(hooking.HookCtx{Domain: e, Pos: HookPosAddressDone, Item: r})
	}
}

func (e *Engine) narrate(format string, args ...any) {
	e.messages = append(e.messages, fmt.Sprintf(format, args...))
}
