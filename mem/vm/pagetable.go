package vm

import "fmt"

// Log2PageSize is the page size as a power of 2.
const Log2PageSize = 12

// PageSize is the number of bytes in a page and in a frame.
const PageSize uint64 = 1 << Log2PageSize

// A FrameID identifies a frame in physical memory.
type FrameID int

// Unmapped is the frame held by a page that is not resident.
const Unmapped FrameID = -1

// Decode splits a virtual address into its virtual page number and its page
// offset.
func Decode(addr uint64) (vpn, offset uint64) {
	return addr >> Log2PageSize, addr & (PageSize - 1)
}

// A Page is an entry in the page table, maintaining the information about how
// to translate a virtual page to a frame.
type Page struct {
	VPN   uint64
	Valid bool
	Frame FrameID
}

// A PageTable holds one entry for every virtual page in the address space.
type PageTable struct {
	pages []Page
}

// NewPageTable creates a PageTable with numPages invalid entries.
func NewPageTable(numPages int) *PageTable {
	pt := &PageTable{
		pages: make([]Page, numPages),
	}

	for i := range pt.pages {
		pt.pages[i] = Page{VPN: uint64(i), Frame: Unmapped}
	}

	return pt
}

// NumPages returns the number of entries in the page table.
func (pt *PageTable) NumPages() int {
	return len(pt.pages)
}

// Lookup returns the entry of the given virtual page.
func (pt *PageTable) Lookup(vpn uint64) Page {
	pt.vpnMustBeInRange(vpn)

	return pt.pages[vpn]
}

// Install maps the virtual page to the frame and marks the entry valid.
func (pt *PageTable) Install(vpn uint64, frame FrameID) {
	pt.vpnMustBeInRange(vpn)

	if frame < 0 {
		panic(fmt.Sprintf("cannot install page 0x%X to frame %d", vpn, frame))
	}

	pt.pages[vpn].Valid = true
	pt.pages[vpn].Frame = frame
}

// Evict invalidates the entry of the given virtual page and returns the frame
// that the page used to occupy.
func (pt *PageTable) Evict(vpn uint64) FrameID {
	pt.vpnMustBeInRange(vpn)

	page := &pt.pages[vpn]
	if !page.Valid {
		panic(fmt.Sprintf("page 0x%X is not resident, cannot evict", vpn))
	}

	frame := page.Frame
	page.Valid = false
	page.Frame = Unmapped

	return frame
}

// FirstFreeFrame returns the unoccupied frame with the lowest index. The bool
// return value is false if all the frames are occupied.
func (pt *PageTable) FirstFreeFrame(ft *FrameTable) (FrameID, bool) {
	for i := 0; i < ft.NumFrames(); i++ {
		if !ft.IsOccupied(FrameID(i)) {
			return FrameID(i), true
		}
	}

	return Unmapped, false
}

// Pages returns a copy of all the entries, ordered by virtual page number.
func (pt *PageTable) Pages() []Page {
	pages := make([]Page, len(pt.pages))
	copy(pages, pt.pages)

	return pages
}

func (pt *PageTable) vpnMustBeInRange(vpn uint64) {
	if vpn >= uint64(len(pt.pages)) {
		panic(fmt.Sprintf("page 0x%X is out of range, the page table "+
			"has %d entries", vpn, len(pt.pages)))
	}
}
