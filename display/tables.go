// Package display turns the state of a translation engine into rows of
// hexadecimal strings and renders them on a terminal.
package display

import (
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/translator"
)

// NoValue fills the cells of entries that do not map anything.
const NoValue = "--"

// CurrentMarker prefixes the address in flight in the sequence.
const CurrentMarker = "> "

// A VASRow is one page of the virtual address space.
type VASRow struct {
	VirtualAddress string `json:"virtual_address"`
}

// A PageTableRow is one entry of the page table.
type PageTableRow struct {
	Index string `json:"index"`
	Valid bool   `json:"valid"`
	PPN   string `json:"ppn"`
}

// A RAMRow is one frame of physical memory.
type RAMRow struct {
	PhysicalAddress string `json:"physical_address"`
}

// A TLBRow is one slot of the TLB.
type TLBRow struct {
	Set   int    `json:"set"`
	Valid bool   `json:"valid"`
	Tag   string `json:"tag"`
	PPN   string `json:"ppn"`
}

// Tables groups every table of an engine.
type Tables struct {
	VAS       []VASRow       `json:"vas"`
	PageTable []PageTableRow `json:"page_table"`
	RAM       []RAMRow       `json:"ram"`
	TLB       []TLBRow       `json:"tlb"`
}

// MakeTables formats all the tables of the engine.
func MakeTables(e *translator.Engine) Tables {
	return Tables{
		VAS:       VASTable(e.Config()),
		PageTable: PageTable(e.PageTable()),
		RAM:       RAMTable(e.NumFrames()),
		TLB:       TLBTable(e),
	}
}

// VASTable lists the virtual pages. Page numbers are zero padded to one digit
// per four bits of page number when that is more than one digit.
func VASTable(c translator.Config) []VASRow {
	digits := (c.VASWidth - vm.Log2PageSize) / 4

	rows := make([]VASRow, c.NumPages())
	for i := range rows {
		rows[i] = VASRow{VirtualAddress: Hex(uint64(i), digits)}
	}

	return rows
}

// PageTable formats page table entries.
func PageTable(pages []vm.Page) []PageTableRow {
	rows := make([]PageTableRow, len(pages))
	for i, p := range pages {
		rows[i] = PageTableRow{
			Index: Hex(p.VPN, 0),
			Valid: p.Valid,
			PPN:   frame(p.Frame),
		}
	}

	return rows
}

// RAMTable lists the frames of physical memory.
func RAMTable(numFrames int) []RAMRow {
	rows := make([]RAMRow, numFrames)
	for i := range rows {
		rows[i] = RAMRow{PhysicalAddress: Hex(uint64(i), 0)}
	}

	return rows
}

// TLBTable formats every slot of the TLB of the engine. Slots that were never
// filled show NoValue. Invalidated slots keep their stale tag.
func TLBTable(e *translator.Engine) []TLBRow {
	slots := e.TLBSlots()

	rows := make([]TLBRow, len(slots))
	for i, s := range slots {
		rows[i] = TLBRow{Set: s.SetID, Tag: NoValue, PPN: NoValue}

		if s.Occupied {
			rows[i].Valid = s.Entry.Valid
			rows[i].Tag = Hex(s.Entry.Tag, 0)
			rows[i].PPN = frame(s.Entry.Frame)
		}
	}

	return rows
}

// Sequence formats the address sequence, padded to one digit per four bits of
// address, with the address in flight marked.
func Sequence(entries []translator.SequenceEntry, vasWidth int) []string {
	digits := vasWidth / 4

	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = Hex(entry.Address, digits)
		if entry.Current {
			lines[i] = CurrentMarker + lines[i]
		}
	}

	return lines
}

// Hex formats a value as upper-case hexadecimal with a 0x prefix, zero padded
// to at least digits digits.
func Hex(value uint64, digits int) string {
	if digits > 1 {
		return fmt.Sprintf("0x%0*X", digits, value)
	}

	return fmt.Sprintf("0x%X", value)
}

func frame(f vm.FrameID) string {
	if f < 0 {
		return NoValue
	}

	return Hex(uint64(f), 0)
}
