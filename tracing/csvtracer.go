package tracing

import (
	"fmt"
	"io"

	"github.com/sarchlab/vmsim/sim/hooking"
	"github.com/sarchlab/vmsim/translator"
)

// CSVHeader is the first line written by a CSVTracer.
const CSVHeader = "index,address,vpn,offset,from,to,event,frame,tlb_index\n"

// A CSVTracer writes one line per step.
type CSVTracer struct {
	writer        io.Writer
	headerWritten bool
}

// NewCSVTracer produces a new CSVTracer, injecting the dependency of a writer.
func NewCSVTracer(w io.Writer) *CSVTracer {
	return &CSVTracer{writer: w}
}

// Func prints the step carried by the hook context.
func (t *CSVTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != translator.HookPosStep {
		return
	}

	r, ok := ctx.Item.(translator.StepReport)
	if !ok || r.Complete {
		return
	}

	if !t.headerWritten {
		_, err := io.WriteString(t.writer, CSVHeader)
		if err != nil {
			panic(err)
		}

		t.headerWritten = true
	}

	_, err := fmt.Fprintf(t.writer,
		"%d,0x%X,0x%X,0x%X,%s,%s,%s,%d,%d\n",
		r.Index, r.Address, r.VPN, r.Offset,
		r.From, r.To, r.Event, int(r.Frame), r.TLBIndex)
	if err != nil {
		panic(err)
	}
}
