// Package tracing provides hooks that record what the translation engine does.
package tracing

import (
	"fmt"
	"sync"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/sim/hooking"
	"github.com/sarchlab/vmsim/translator"
	"github.com/tebeka/atexit"
)

// Table names used by the StepTracer.
const (
	StepTable     = "steps"
	EvictionTable = "evictions"
)

// StepEntry is a row of the steps table.
type StepEntry struct {
	Seq     int
	Index   int
	Address uint64
	VPN     uint64
	Offset  uint64
	From    string
	To      string
	Event   string

	// Frame and TLBIndex are -1 when the step did not touch any.
	Frame    int
	TLBIndex int

	TLBHit  uint64
	TLBMiss uint64
	PTHit   uint64
	PTMiss  uint64
}

// EvictionEntry is a row of the evictions table.
type EvictionEntry struct {
	Seq       int
	Address   uint64
	VictimVPN uint64
	Frame     int
	TLBIndex  int
	NewVPN    uint64
}

type statsReporter interface {
	Stats() translator.Stats
}

// StepTracer is a hook that writes every step reported by an engine into a
// DataRecorder. Attach it with AcceptHook.
type StepTracer struct {
	mu       sync.Mutex
	backend  datarecording.DataRecorder
	seq      int
	finished bool
}

// NewStepTracer creates the tables of the tracer in the recorder.
func NewStepTracer(dataRecorder datarecording.DataRecorder) *StepTracer {
	dataRecorder.CreateTable(StepTable, StepEntry{})
	dataRecorder.CreateTable(EvictionTable, EvictionEntry{})

	t := &StepTracer{
		backend: dataRecorder,
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// NumSteps returns the number of steps recorded so far.
func (t *StepTracer) NumSteps() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.seq
}

// Func records the step carried by the hook context.
func (t *StepTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != translator.HookPosStep {
		return
	}

	report, ok := ctx.Item.(translator.StepReport)
	if !ok {
		panic(fmt.Sprintf("step hook carries %T, not a step report", ctx.Item))
	}

	if report.Complete {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return
	}

	t.seq++

	entry := StepEntry{
		Seq:      t.seq,
		Index:    report.Index,
		Address:  report.Address,
		VPN:      report.VPN,
		Offset:   report.Offset,
		From:     report.From.String(),
		To:       report.To.String(),
		Event:    report.Event.String(),
		Frame:    int(report.Frame),
		TLBIndex: report.TLBIndex,
	}

	if r, ok := ctx.Domain.(statsReporter); ok {
		stats := r.Stats()
		entry.TLBHit = stats.TLBHit
		entry.TLBMiss = stats.TLBMiss
		entry.PTHit = stats.PTHit
		entry.PTMiss = stats.PTMiss
	}

	t.backend.InsertData(StepTable, entry)

	if report.Evicted {
		t.backend.InsertData(EvictionTable, EvictionEntry{
			Seq:       t.seq,
			Address:   report.Address,
			VictimVPN: report.EvictedVPN,
			Frame:     int(report.Frame),
			TLBIndex:  report.TLBIndex,
			NewVPN:    report.VPN,
		})
	}
}

// Terminate flushes the recorder. Steps reported afterwards are dropped.
func (t *StepTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return
	}

	t.finished = true
	t.backend.Flush()
}
