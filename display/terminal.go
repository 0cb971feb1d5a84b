package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/translator"
)

// A Renderer prints engine state on a terminal, painting highlighted entries
// with terminal colors.
type Renderer struct {
	w       io.Writer
	noColor bool
	palette map[translator.Color]*color.Color
}

// NewRenderer creates a renderer that writes to w.
func NewRenderer(w io.Writer, noColor bool) *Renderer {
	r := &Renderer{
		w:       w,
		noColor: noColor,
		palette: map[translator.Color]*color.Color{
			translator.ColorInProgress: color.New(color.FgMagenta),
			translator.ColorConfirmed:  color.New(color.FgGreen, color.Bold),
			translator.ColorMiss:       color.New(color.FgRed, color.Bold),
			translator.ColorEvicted:    color.New(color.FgHiBlack),
			translator.ColorSettled:    color.New(color.FgHiBlue),
		},
	}

	for _, c := range r.palette {
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}

	return r
}

// Paint wraps text in the terminal color of a highlight.
func (r *Renderer) Paint(c translator.Color, text string) string {
	painter, ok := r.palette[c]
	if !ok {
		return text
	}

	return painter.Sprint(text)
}

// RenderStep prints the transition of one step, its narration, and the
// highlight changes it made.
func (r *Renderer) RenderStep(
	report translator.StepReport,
	messages []string,
	changes []translator.HighlightChange,
) {
	if report.Complete {
		fmt.Fprintln(r.w, "All addresses have been translated.")
		return
	}

	fmt.Fprintf(r.w, "[%d] %s  %s -> %s  (%s)\n",
		report.Index, Hex(report.Address, 0),
		report.From, report.To, report.Event)

	for _, m := range messages {
		if m == "-----" {
			continue
		}

		fmt.Fprintf(r.w, "    %s\n", m)
	}

	if len(changes) == 0 {
		return
	}

	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		parts = append(parts,
			r.Paint(c.Color, fmt.Sprintf("%s[%d]=%s", c.Table, c.Index, c.Color)))
	}

	fmt.Fprintf(r.w, "    highlights: %s\n", strings.Join(parts, " "))
}

// RenderAddress prints a one-line summary of a translated address.
func (r *Renderer) RenderAddress(reports []translator.StepReport) {
	if len(reports) == 0 || reports[0].Complete {
		fmt.Fprintln(r.w, "All addresses have been translated.")
		return
	}

	first := reports[0]
	last := reports[len(reports)-1]

	events := make([]string, len(reports))
	for i, rep := range reports {
		events[i] = rep.Event.String()
	}

	physical := uint64(last.Frame)<<vm.Log2PageSize | first.Offset

	fmt.Fprintf(r.w, "%s -> %s  %s\n",
		Hex(first.Address, 0),
		r.Paint(translator.ColorConfirmed, Hex(physical, 0)),
		strings.Join(events, ", "))
}

// RenderPageTable prints the resident entries of the page table.
func (r *Renderer) RenderPageTable(e *translator.Engine) {
	fmt.Fprintln(r.w, "Page table (resident pages):")

	for i, row := range PageTable(e.PageTable()) {
		if !row.Valid {
			continue
		}

		line := fmt.Sprintf("  %-10s valid=1  ppn=%-6s", row.Index, row.PPN)
		fmt.Fprintln(r.w, r.Paint(e.Color(translator.TablePageTable, i), line))
	}
}

// RenderTLB prints every slot of the TLB, grouped by set.
func (r *Renderer) RenderTLB(e *translator.Engine) {
	fmt.Fprintf(r.w, "TLB (%d-way):\n", e.NumTLBWays())

	for i, row := range TLBTable(e) {
		valid := 0
		if row.Valid {
			valid = 1
		}

		line := fmt.Sprintf("  #%-3d set=%-3d valid=%d  tag=%-8s ppn=%-6s",
			i, row.Set, valid, row.Tag, row.PPN)
		fmt.Fprintln(r.w, r.Paint(e.Color(translator.TableTLB, i), line))
	}
}

// RenderSequence prints the address sequence with the address in flight
// marked.
func (r *Renderer) RenderSequence(e *translator.Engine) {
	fmt.Fprintln(r.w, "Address sequence:")

	for _, line := range Sequence(e.AddressSequence(), e.Config().VASWidth) {
		fmt.Fprintf(r.w, "  %s\n", line)
	}
}

// RenderStats prints the hit and miss counters and the hit rates.
func (r *Renderer) RenderStats(s translator.Stats) {
	fmt.Fprintf(r.w, "TLB hits: %d  misses: %d  hit rate: %.2f%%\n",
		s.TLBHit, s.TLBMiss, s.TLBHitRate()*100)
	fmt.Fprintf(r.w, "PT  hits: %d  misses: %d  hit rate: %.2f%%\n",
		s.PTHit, s.PTMiss, s.PTHitRate()*100)
}
